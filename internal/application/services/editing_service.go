package services

import (
	"encoding/json"
	"fmt"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

// EditingService drives the author editing lifecycle: open an editor on a
// widget, validate and commit the edit into the session's pending ledger,
// close the editor. A session has at most one editor open at a time.
type EditingService struct {
	sessions    *state.SessionsStore
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
}

// NewEditingService creates a new editing service.
func NewEditingService(sessions *state.SessionsStore, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *EditingService {
	return &EditingService{
		sessions:    sessions,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// OpenEditor opens the editor on the given widget, recording the widget's
// current effective configuration for the modal to render against. An
// already-open editor for another widget is replaced without committing
// anything. An empty block id is accepted: it is the degraded identity of a
// widget with no ancestor block, not an error.
func (s *EditingService) OpenEditor(sessionID string, kind editing.WidgetKind, id editing.Identity, currentProps string) (*state.OpenEditor, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	if id.ElementPath == "" {
		return nil, fmt.Errorf("widget element path is required")
	}

	editor := session.OpenEditorFor(kind, id, currentProps)
	s.logger.Editing().Info("Editor opened",
		"sessionId", sessionID, "kind", string(kind), "widgetId", id.ElementPath)
	return &editor, nil
}

// CurrentEditor reports the session's open editor, or nil.
func (s *EditingService) CurrentEditor(sessionID string) (*state.OpenEditor, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return session.CurrentEditor(), nil
}

// SaveEdit validates the patch and, on success, appends it to the pending
// ledger and closes the editor. A validation failure leaves the editor open
// and the ledger untouched; the error wraps editing.ErrValidation so
// callers can tell it from a hard failure. Saving with no open editor, or
// against a different widget than the open one, is a no-op.
func (s *EditingService) SaveEdit(sessionID string, kind editing.WidgetKind, id editing.Identity, patch editing.Patch) (bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return false, fmt.Errorf("unknown session %q", sessionID)
	}

	editor := session.CurrentEditor()
	if editor == nil || editor.Kind != kind || editor.Identity != id {
		s.logger.Editing().Warn("Save ignored, no matching open editor",
			"sessionId", sessionID, "kind", string(kind), "widgetId", id.ElementPath)
		return false, nil
	}

	if err := editing.Validate(patch); err != nil {
		s.logger.Editing().Info("Edit rejected by validation",
			"sessionId", sessionID, "kind", string(kind), "widgetId", id.ElementPath, "reason", err.Error())
		return false, err
	}

	session.Edits.Append(editing.PendingEdit{
		EditKind:    kind,
		BlockID:     id.BlockID,
		ElementPath: id.ElementPath,
		NewProps:    patch,
	})
	session.CloseEditor()

	s.broadcaster.BroadcastBlocksUpdated(sessionID, session.DocumentID, []string{id.BlockID}, nil)
	s.logger.Editing().Info("Edit committed",
		"sessionId", sessionID, "kind", string(kind), "widgetId", id.ElementPath,
		"ledgerSize", session.Edits.Len())
	return true, nil
}

// CloseEditor abandons the open editor without committing. Closing when
// nothing is open is a no-op.
func (s *EditingService) CloseEditor(sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("unknown session %q", sessionID)
	}
	session.CloseEditor()
	return nil
}

// PendingEdits returns the session's full edit ledger in arrival order.
func (s *EditingService) PendingEdits(sessionID string) ([]editing.PendingEdit, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return session.Edits.All(), nil
}

// DecodePatch unmarshals a kind-tagged raw patch payload into the concrete
// patch type for that widget kind.
func DecodePatch(kind editing.WidgetKind, raw json.RawMessage) (editing.Patch, error) {
	switch kind {
	case editing.KindClozeInput:
		var p editing.ClozeInputPatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	case editing.KindClozeChoice:
		var p editing.ClozeChoicePatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	case editing.KindToggle:
		var p editing.TogglePatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	case editing.KindTooltip:
		var p editing.TooltipPatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	case editing.KindTrigger:
		var p editing.TriggerPatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	case editing.KindHyperlink:
		var p editing.HyperlinkPatch
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", kind, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown widget kind %q", kind)
}
