package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
)

func strptr(s string) *string { return &s }

func TestLedgerResolveEmpty(t *testing.T) {
	l := NewPendingEditLedger(nil)
	id := editing.Identity{BlockID: "b1", ElementPath: "choice-b1-answer"}
	assert.Nil(t, l.Resolve(editing.KindClozeChoice, id))
	assert.Equal(t, 0, l.Len())
}

func TestLedgerLastWriteWins(t *testing.T) {
	l := NewPendingEditLedger(nil)
	id := editing.Identity{BlockID: "b1", ElementPath: "choice-b1-answer"}

	l.Append(editing.PendingEdit{
		EditKind:    editing.KindClozeChoice,
		BlockID:     id.BlockID,
		ElementPath: id.ElementPath,
		NewProps:    editing.ClozeChoicePatch{CorrectAnswer: strptr("first")},
	})
	l.Append(editing.PendingEdit{
		EditKind:    editing.KindClozeChoice,
		BlockID:     id.BlockID,
		ElementPath: id.ElementPath,
		NewProps:    editing.ClozeChoicePatch{CorrectAnswer: strptr("second")},
	})

	// Both records are retained, the later one shadows.
	assert.Equal(t, 2, l.Len())
	resolved := l.Resolve(editing.KindClozeChoice, id)
	require.NotNil(t, resolved)
	patch, ok := resolved.NewProps.(editing.ClozeChoicePatch)
	require.True(t, ok)
	assert.Equal(t, "second", *patch.CorrectAnswer)
}

func TestLedgerKindScoping(t *testing.T) {
	l := NewPendingEditLedger(nil)
	id := editing.Identity{BlockID: "b1", ElementPath: "toggle-b1-on"}

	l.Append(editing.PendingEdit{
		EditKind:    editing.KindToggle,
		BlockID:     id.BlockID,
		ElementPath: id.ElementPath,
		NewProps:    editing.TogglePatch{Options: []string{"on", "off"}},
	})

	// Same identity string under a different kind resolves to nothing.
	assert.Nil(t, l.Resolve(editing.KindClozeChoice, id))
	assert.NotNil(t, l.Resolve(editing.KindToggle, id))
}

func TestLedgerIdentityScoping(t *testing.T) {
	l := NewPendingEditLedger(nil)

	l.Append(editing.PendingEdit{
		EditKind:    editing.KindClozeInput,
		BlockID:     "b1",
		ElementPath: "cloze-b1-answer",
		NewProps:    editing.ClozeInputPatch{CorrectAnswer: strptr("yes")},
	})

	other := editing.Identity{BlockID: "b2", ElementPath: "cloze-b2-answer"}
	assert.Nil(t, l.Resolve(editing.KindClozeInput, other))
}

func TestLedgerAllReturnsArrivalOrder(t *testing.T) {
	l := NewPendingEditLedger(nil)
	for _, answer := range []string{"a", "b", "c"} {
		l.Append(editing.PendingEdit{
			EditKind:    editing.KindClozeInput,
			BlockID:     "b1",
			ElementPath: "cloze-b1-" + answer,
			NewProps:    editing.ClozeInputPatch{CorrectAnswer: strptr(answer)},
		})
	}

	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, "cloze-b1-a", all[0].ElementPath)
	assert.Equal(t, "cloze-b1-c", all[2].ElementPath)

	// The returned slice is a copy.
	all[0].BlockID = "tampered"
	assert.Equal(t, "b1", l.All()[0].BlockID)
}
