package state

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
)

// OpenEditor records which widget, if any, a session is currently editing.
// CurrentProps holds the widget's codec-encoded effective configuration as
// supplied by the open request, so modal reads can render the current state
// without re-resolving it.
type OpenEditor struct {
	Kind         editing.WidgetKind `json:"kind"`
	Identity     editing.Identity   `json:"identity"`
	CurrentProps string             `json:"currentProps,omitempty"`
	OpenedAt     time.Time          `json:"openedAt"`
}

// Session is one learner or author session: an isolated variable store, a
// pending edit ledger, and at most one open editor.
type Session struct {
	ID           string
	DocumentID   string
	CreatedAt    time.Time
	LastActivity time.Time

	Vars  *VariableStore
	Edits *PendingEditLedger

	mu     sync.Mutex
	editor *OpenEditor
}

// OpenEditorFor points the session's editor at the given widget. Opening
// while another editor is open replaces it; the previous target's unsaved
// state is simply abandoned.
func (s *Session) OpenEditorFor(kind editing.WidgetKind, id editing.Identity, currentProps string) OpenEditor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = &OpenEditor{Kind: kind, Identity: id, CurrentProps: currentProps, OpenedAt: time.Now().UTC()}
	return *s.editor
}

// CurrentEditor returns the open editor, or nil when none is open.
func (s *Session) CurrentEditor() *OpenEditor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil
	}
	editor := *s.editor
	return &editor
}

// CloseEditor clears the open editor. Closing an already-closed editor is
// a no-op.
func (s *Session) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = nil
}

// SessionsStore provides thread-safe session management with TTL cleanup.
type SessionsStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *logging.ChanneledLogger
}

// NewSessionsStore creates a session store with the given idle TTL.
func NewSessionsStore(ttl time.Duration, logger *logging.ChanneledLogger) *SessionsStore {
	return &SessionsStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Ensure returns the session with the given id, creating it if missing or
// unknown. An empty id always creates a fresh session with a generated id.
func (s *SessionsStore) Ensure(id, documentID string) *Session {
	if id != "" {
		s.mu.RLock()
		session, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			s.Touch(id)
			return session
		}
	}

	now := time.Now().UTC()
	if id == "" {
		id = ulid.Make().String()
	}
	session := &Session{
		ID:           id,
		DocumentID:   documentID,
		CreatedAt:    now,
		LastActivity: now,
		Vars:         NewVariableStore(s.logger),
		Edits:        NewPendingEditLedger(s.logger),
	}

	s.mu.Lock()
	// Re-check under the write lock; another request may have won the race.
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return existing
	}
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.State().Info("Session created",
			"sessionId", id, "documentId", documentID, "activeSessions", count)
	}
	return session
}

// Get retrieves a session by id without creating one.
func (s *SessionsStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Touch updates a session's last-activity timestamp.
func (s *SessionsStore) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		session.LastActivity = time.Now().UTC()
	}
}

// All returns every active session.
func (s *SessionsStore) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of active sessions.
func (s *SessionsStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired removes sessions idle longer than the TTL and returns the
// ids that were dropped, so callers can release per-session resources.
func (s *SessionsStore) CleanupExpired() []string {
	cutoff := time.Now().UTC().Add(-s.ttl)

	s.mu.Lock()
	var removed []string
	for id, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if len(removed) > 0 && s.logger != nil {
		s.logger.State().Info("Expired sessions cleaned up",
			"removed", len(removed), "remaining", remaining)
	}
	return removed
}

// StartCleanupLoop runs CleanupExpired on the given interval until stop is
// closed. onExpired, if non-nil, receives the removed session ids.
func (s *SessionsStore) StartCleanupLoop(interval time.Duration, stop <-chan struct{}, onExpired func(ids []string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			removed := s.CleanupExpired()
			if len(removed) > 0 && onExpired != nil {
				onExpired(removed)
			}
		}
	}
}
