package services

import (
	"fmt"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/templates/fragments"
)

// FragmentService renders per-session block fragments: the session's
// current values and pending edits resolved into one block's HTML.
type FragmentService struct {
	sessions    *state.SessionsStore
	documents   *DocumentService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewFragmentService creates a new fragment service.
func NewFragmentService(sessions *state.SessionsStore, documents *DocumentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FragmentService {
	return &FragmentService{
		sessions:    sessions,
		documents:   documents,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// RenderBlock renders one block for a session. Editor mode marks widgets
// editable so the client surfaces edit affordances.
func (s *FragmentService) RenderBlock(sessionID, blockID string, editorMode bool) (string, error) {
	marker := s.perfTracker.StartOperation("render:fragment", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", fmt.Errorf("unknown session %q", sessionID)
	}
	doc, ok := s.documents.GetDocument(session.DocumentID)
	if !ok {
		return "", fmt.Errorf("unknown document %q", session.DocumentID)
	}
	block := doc.Block(blockID)
	if block == nil {
		return "", fmt.Errorf("unknown block %q in document %q", blockID, doc.ID)
	}

	ctx := &rendering.RenderContext{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		EditorMode: editorMode,
		Values:     session.Vars.Snapshot(),
		Defs:       doc.Registry(),
		Edits:      session.Edits,
	}

	html := fragments.RenderBlock(ctx, block)
	marker.AddMetadata("blockId", blockID)
	s.logger.Render().Debug("Block fragment rendered",
		"sessionId", sessionID, "blockId", blockID, "bytes", len(html))
	return html, nil
}

// RenderDocument renders every block of a session's document in order.
func (s *FragmentService) RenderDocument(sessionID string, editorMode bool) (string, error) {
	marker := s.perfTracker.StartOperation("render:document", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", fmt.Errorf("unknown session %q", sessionID)
	}
	doc, ok := s.documents.GetDocument(session.DocumentID)
	if !ok {
		return "", fmt.Errorf("unknown document %q", session.DocumentID)
	}

	ctx := &rendering.RenderContext{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		EditorMode: editorMode,
		Values:     session.Vars.Snapshot(),
		Defs:       doc.Registry(),
		Edits:      session.Edits,
	}

	out := `<article class="lodestar-lesson" data-document-id="` + doc.ID + `">`
	for _, block := range doc.Blocks {
		out += fragments.RenderBlock(ctx, block)
	}
	out += `</article>`
	return out, nil
}
