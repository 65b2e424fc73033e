package state

import (
	"sync"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
)

type editKey struct {
	kind        editing.WidgetKind
	blockID     string
	elementPath string
}

// PendingEditLedger accumulates confirmed author edits for one session.
// Records are append-only and kept in arrival order; resolution is
// last-write-wins per (kind, identity) target. All methods are safe for
// concurrent use.
type PendingEditLedger struct {
	mu     sync.RWMutex
	edits  []editing.PendingEdit
	latest map[editKey]int
	logger *logging.ChanneledLogger
}

// NewPendingEditLedger creates an empty ledger.
func NewPendingEditLedger(logger *logging.ChanneledLogger) *PendingEditLedger {
	return &PendingEditLedger{
		latest: make(map[editKey]int),
		logger: logger,
	}
}

// Append records one confirmed edit. Earlier records for the same target are
// retained but shadowed.
func (l *PendingEditLedger) Append(edit editing.PendingEdit) {
	key := editKey{kind: edit.EditKind, blockID: edit.BlockID, elementPath: edit.ElementPath}

	l.mu.Lock()
	l.edits = append(l.edits, edit)
	l.latest[key] = len(l.edits) - 1
	total := len(l.edits)
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Editing().Debug("Pending edit recorded",
			"kind", string(edit.EditKind), "blockId", edit.BlockID,
			"elementPath", edit.ElementPath, "ledgerSize", total)
	}
}

// Resolve returns the most recent edit matching kind and identity, or nil.
func (l *PendingEditLedger) Resolve(kind editing.WidgetKind, id editing.Identity) *editing.PendingEdit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.latest[editKey{kind: kind, blockID: id.BlockID, elementPath: id.ElementPath}]
	if !ok {
		return nil
	}
	edit := l.edits[idx]
	return &edit
}

// All returns a copy of the full ledger in arrival order.
func (l *PendingEditLedger) All() []editing.PendingEdit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]editing.PendingEdit(nil), l.edits...)
}

// Len reports how many edits have been recorded.
func (l *PendingEditLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.edits)
}
