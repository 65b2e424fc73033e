// Package state provides the in-memory session state stores: the reactive
// variable store, the pending edit ledger, and the session registry.
package state

import (
	"sync"
	"time"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
)

// Subscriber is invoked after a variable's stored value changes.
type Subscriber func(value variables.Value)

// Subscription is a handle to one active observer registration.
type Subscription struct {
	cancel func()
}

// Cancel detaches the observer. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s != nil && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// VariableStore holds one session's variable values keyed by name, with
// change notification. All methods are safe for concurrent use.
type VariableStore struct {
	mu     sync.RWMutex
	values map[string]variables.Value
	subs   map[string]map[int]Subscriber
	nextID int
	logger *logging.ChanneledLogger
}

// NewVariableStore creates an empty variable store.
func NewVariableStore(logger *logging.ChanneledLogger) *VariableStore {
	return &VariableStore{
		values: make(map[string]variables.Value),
		subs:   make(map[string]map[int]Subscriber),
		logger: logger,
	}
}

// Initialize merges default values into the store, adding only names not
// already present. Existing values survive, so re-initializing with an
// updated definition set never clobbers live session state.
func (vs *VariableStore) Initialize(defaults map[string]variables.Value) {
	start := time.Now()

	vs.mu.Lock()
	added := 0
	for name, value := range defaults {
		if _, exists := vs.values[name]; !exists {
			vs.values[name] = value
			added++
		}
	}
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.State().Debug("Initialized variable store",
			"added", added, "offered", len(defaults), "duration", time.Since(start).String())
	}
}

// Get returns the current value for name. Missing names read as the zero
// Value with ok false.
func (vs *VariableStore) Get(name string) (variables.Value, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	value, ok := vs.values[name]
	return value, ok
}

// Snapshot returns a copy of all current values.
func (vs *VariableStore) Snapshot() map[string]variables.Value {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	out := make(map[string]variables.Value, len(vs.values))
	for name, value := range vs.values {
		out[name] = value
	}
	return out
}

// Names returns the names of all stored variables.
func (vs *VariableStore) Names() []string {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	names := make([]string, 0, len(vs.values))
	for name := range vs.values {
		names = append(names, name)
	}
	return names
}

// Observe registers fn for change notifications on name and returns the
// current value. If name has no value yet, def is stored first, so a widget
// can bind to a variable no definition declared. fn fires only on later
// changes, never for the initial read.
func (vs *VariableStore) Observe(name string, def variables.Value, fn Subscriber) (variables.Value, *Subscription) {
	vs.mu.Lock()
	current, exists := vs.values[name]
	if !exists {
		vs.values[name] = def
		current = def
	}
	id := vs.nextID
	vs.nextID++
	if vs.subs[name] == nil {
		vs.subs[name] = make(map[int]Subscriber)
	}
	vs.subs[name][id] = fn
	vs.mu.Unlock()

	sub := &Subscription{cancel: func() {
		vs.mu.Lock()
		if set, ok := vs.subs[name]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(vs.subs, name)
			}
		}
		vs.mu.Unlock()
	}}
	return current, sub
}

// Set stores value under name and notifies subscribers. Writing a value
// equal to the current one is a no-op: nothing is stored and nobody is
// notified. Returns whether the value changed.
func (vs *VariableStore) Set(name string, value variables.Value) bool {
	vs.mu.Lock()
	current, exists := vs.values[name]
	if exists && current.Equal(value) {
		vs.mu.Unlock()
		return false
	}
	vs.values[name] = value

	var notify []Subscriber
	if set, ok := vs.subs[name]; ok {
		notify = make([]Subscriber, 0, len(set))
		for _, fn := range set {
			notify = append(notify, fn)
		}
	}
	vs.mu.Unlock()

	// Callbacks run outside the lock so an observer may read or write the
	// store without deadlocking.
	for _, fn := range notify {
		fn(value)
	}

	if vs.logger != nil {
		vs.logger.State().Debug("Variable updated",
			"name", name, "value", value.String(), "subscribers", len(notify))
	}
	return true
}

// SubscriberCount reports how many observers are registered for name.
func (vs *VariableStore) SubscriberCount(name string) int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.subs[name])
}
