// Package computed evaluates formula-driven variables. A definition with a
// formula becomes a derived value recomputed whenever any stored variable
// changes.
package computed

import (
	"fmt"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

// maxDepth bounds chained recomputation. Equal-value writes already stop
// propagation; the bound catches formulas that oscillate.
const maxDepth = 16

type formula struct {
	name    string
	source  string
	program *vm.Program
}

// Engine binds compiled formulas to one session's variable store.
type Engine struct {
	store    *state.VariableStore
	formulas []formula
	logger   *logging.ChanneledLogger

	mu    sync.Mutex
	depth int
	subs  []*state.Subscription
}

// NewEngine creates an engine over the given store.
func NewEngine(store *state.VariableStore, logger *logging.ChanneledLogger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Bind compiles every formula-bearing definition in the registry and
// subscribes the engine to all registry variables, recomputing derived
// values on any change. Bind evaluates each formula once so derived values
// are populated before the first write arrives.
func (e *Engine) Bind(reg *variables.Registry) error {
	for _, name := range reg.Names() {
		def := reg.Definition(name)
		if def == nil || def.Formula == "" {
			continue
		}
		program, err := expr.Compile(def.Formula, expr.AllowUndefinedVariables())
		if err != nil {
			return fmt.Errorf("compile formula for %q: %w", name, err)
		}
		e.formulas = append(e.formulas, formula{name: name, source: def.Formula, program: program})
	}
	if len(e.formulas) == 0 {
		return nil
	}

	for _, name := range reg.Names() {
		def := reg.Definition(name)
		var defValue variables.Value
		if def != nil {
			defValue = def.DefaultValue
		}
		_, sub := e.store.Observe(name, defValue, func(variables.Value) {
			e.Recompute()
		})
		e.subs = append(e.subs, sub)
	}

	e.Recompute()
	return nil
}

// Recompute evaluates all formulas against the current store snapshot and
// writes back any values that changed.
func (e *Engine) Recompute() {
	e.mu.Lock()
	if e.depth >= maxDepth {
		e.mu.Unlock()
		if e.logger != nil {
			e.logger.State().Warn("Formula recomputation depth limit reached")
		}
		return
	}
	e.depth++
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.depth--
		e.mu.Unlock()
	}()

	env := make(map[string]any)
	for name, value := range e.store.Snapshot() {
		env[name] = value.Native()
	}

	for _, f := range e.formulas {
		out, err := vm.Run(f.program, env)
		if err != nil {
			if e.logger != nil {
				e.logger.State().Warn("Formula evaluation failed",
					"variable", f.name, "formula", f.source, "error", err.Error())
			}
			continue
		}
		value, err := variables.FromNative(normalize(out))
		if err != nil {
			if e.logger != nil {
				e.logger.State().Warn("Formula produced unsupported value",
					"variable", f.name, "error", err.Error())
			}
			continue
		}
		e.store.Set(f.name, value)
	}
}

// Close cancels the engine's store subscriptions.
func (e *Engine) Close() {
	for _, sub := range e.subs {
		sub.Cancel()
	}
	e.subs = nil
}

// normalize coerces expr's numeric output types to float64.
func normalize(out any) any {
	switch v := out.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return float64(0)
		}
		return v
	}
	return out
}
