package services

import (
	"fmt"
	"sync"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/domain/events"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/computed"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

// StateService orchestrates session variable state: session creation with
// store seeding, reads, writes, and the re-render broadcast that follows a
// write.
type StateService struct {
	sessions    *state.SessionsStore
	documents   *DocumentService
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	mu      sync.Mutex
	engines map[string]*computed.Engine
}

// NewStateService creates a new state service.
func NewStateService(sessions *state.SessionsStore, documents *DocumentService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateService {
	return &StateService{
		sessions:    sessions,
		documents:   documents,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
		engines:     make(map[string]*computed.Engine),
	}
}

// EnsureSession returns the session for the given id, creating and seeding
// it against the document when new. Formula-bearing definitions get a
// computed engine bound to the session's store.
func (s *StateService) EnsureSession(sessionID, documentID string) (*state.Session, error) {
	doc, ok := s.documents.GetDocument(documentID)
	if !ok {
		return nil, fmt.Errorf("unknown document %q", documentID)
	}

	session := s.sessions.Ensure(sessionID, documentID)
	registry := doc.Registry()
	session.Vars.Initialize(registry.DefaultValues())

	s.mu.Lock()
	_, bound := s.engines[session.ID]
	s.mu.Unlock()
	if !bound {
		engine := computed.NewEngine(session.Vars, s.logger)
		if err := engine.Bind(registry); err != nil {
			s.logger.State().Error("Failed to bind computed variables",
				"sessionId", session.ID, "documentId", documentID, "error", err.Error())
		} else {
			s.mu.Lock()
			s.engines[session.ID] = engine
			s.mu.Unlock()
		}
	}

	return session, nil
}

// GetState snapshots a session's variable values.
func (s *StateService) GetState(sessionID string) (map[string]variables.Value, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return session.Vars.Snapshot(), nil
}

// SetRequest is one variable write from a widget or API client.
type SetRequest struct {
	Name        string          `json:"name"`
	Value       variables.Value `json:"value"`
	BlockID     string          `json:"blockId,omitempty"`
	GotoBlockID string          `json:"gotoBlockId,omitempty"`
	Source      string          `json:"source,omitempty"`
}

// SetResult reports what a write changed.
type SetResult struct {
	Changed        bool                  `json:"changed"`
	AffectedBlocks []string              `json:"affectedBlocks"`
	Event          *events.VariableEvent `json:"event,omitempty"`
}

// SetVariable writes a value into the session store and broadcasts which
// blocks need re-rendering. Formula cascades are captured by diffing the
// store around the write, so a single scrubber drag re-renders every block
// a derived value touches.
func (s *StateService) SetVariable(sessionID string, req SetRequest) (*SetResult, error) {
	marker := s.perfTracker.StartOperation("state:set_variable", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	if req.Name == "" {
		return nil, fmt.Errorf("variable name is required")
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	s.sessions.Touch(sessionID)

	before := session.Vars.Snapshot()
	changed := session.Vars.Set(req.Name, req.Value)
	if !changed {
		return &SetResult{Changed: false, AffectedBlocks: []string{}}, nil
	}
	after := session.Vars.Snapshot()

	changedNames := diffValues(before, after)
	affected := s.affectedBlocks(session.DocumentID, changedNames)

	source := req.Source
	if source == "" {
		source = "widget"
	}
	event := &events.VariableEvent{
		Name:    req.Name,
		Value:   req.Value,
		BlockID: req.BlockID,
		Source:  source,
	}

	var gotoBlock *string
	if req.GotoBlockID != "" {
		gotoBlock = &req.GotoBlockID
	}
	s.broadcaster.BroadcastBlocksUpdated(sessionID, session.DocumentID, affected, gotoBlock)

	s.logger.State().Info("Variable set",
		"sessionId", sessionID, "name", req.Name, "source", source,
		"cascaded", len(changedNames)-1, "affectedBlocks", len(affected))

	return &SetResult{Changed: true, AffectedBlocks: affected, Event: event}, nil
}

// diffValues returns the names whose values differ between two snapshots.
func diffValues(before, after map[string]variables.Value) map[string]bool {
	changed := make(map[string]bool)
	for name, now := range after {
		prev, existed := before[name]
		if !existed || !prev.Equal(now) {
			changed[name] = true
		}
	}
	return changed
}

// affectedBlocks scans the document for blocks containing widgets bound to
// any changed variable.
func (s *StateService) affectedBlocks(documentID string, changed map[string]bool) []string {
	doc, ok := s.documents.GetDocument(documentID)
	if !ok {
		return []string{}
	}

	affected := make([]string, 0)
	for _, block := range doc.Blocks {
		for _, node := range block.Nodes {
			if node.Widget != nil && node.Widget.VarName != "" && changed[node.Widget.VarName] {
				affected = append(affected, block.ID)
				break
			}
		}
	}
	return affected
}

// CloseSession tears down a session's computed engine. Sessions themselves
// expire via the store's TTL loop.
func (s *StateService) CloseSession(sessionID string) {
	s.mu.Lock()
	engine, ok := s.engines[sessionID]
	if ok {
		delete(s.engines, sessionID)
	}
	s.mu.Unlock()
	if ok {
		engine.Close()
	}
}

// ReleaseSessions drops the computed engines of expired sessions. Wired as
// the expiry hook of the session cleanup loop.
func (s *StateService) ReleaseSessions(sessionIDs []string) {
	for _, id := range sessionIDs {
		s.CloseSession(id)
	}
}
