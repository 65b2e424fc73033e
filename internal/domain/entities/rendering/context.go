// Package rendering provides domain entities for HTML rendering operations
package rendering

import (
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
)

// EditResolver answers "what is the last pending edit for this identity",
// letting templates overlay author edits without reaching into the ledger
// implementation.
type EditResolver interface {
	Resolve(kind editing.WidgetKind, id editing.Identity) *editing.PendingEdit
}

// RenderContext provides the context for rendering one block to HTML.
// Values are pre-resolved per session so templates never touch the live
// store during rendering.
type RenderContext struct {
	DocumentID        string
	SessionID         string
	ContainingBlockID string
	EditorMode        bool

	Values map[string]variables.Value
	Defs   *variables.Registry
	Edits  EditResolver
}

// BlockScope exposes the ambient block identity widgets resolve against.
func (ctx *RenderContext) BlockScope() editing.BlockScope {
	return editing.BlockScope{ID: ctx.ContainingBlockID}
}

// Value returns the session's current value for a variable; the zero Value
// when the name is unset or the context carries no snapshot.
func (ctx *RenderContext) Value(name string) variables.Value {
	if ctx.Values == nil || name == "" {
		return variables.Value{}
	}
	return ctx.Values[name]
}

// PendingEdit returns the most recent matching edit for an identity, or nil.
func (ctx *RenderContext) PendingEdit(kind editing.WidgetKind, id editing.Identity) *editing.PendingEdit {
	if ctx.Edits == nil {
		return nil
	}
	return ctx.Edits.Resolve(kind, id)
}
