package services

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

// fakeBroadcaster records broadcast calls for assertions.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	SessionID  string
	DocumentID string
	BlockIDs   []string
	GotoBlock  string
}

func (f *fakeBroadcaster) AddClient(string) chan string            { return make(chan string, 1) }
func (f *fakeBroadcaster) RemoveClient(chan string, string)        {}
func (f *fakeBroadcaster) ConnectionCount(string) int              { return 0 }
func (f *fakeBroadcaster) HasListeners(string) bool                { return false }
func (f *fakeBroadcaster) BroadcastBlocksUpdated(sessionID, documentID string, blockIDs []string, gotoBlockID *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := broadcastEvent{SessionID: sessionID, DocumentID: documentID, BlockIDs: blockIDs}
	if gotoBlockID != nil {
		ev.GotoBlock = *gotoBlockID
	}
	f.events = append(f.events, ev)
}

func (f *fakeBroadcaster) last() *broadcastEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	ev := f.events[len(f.events)-1]
	return &ev
}

const sampleLessonYAML = `
id: pythagoras
title: The Pythagorean Theorem
variables:
  a:
    type: number
    defaultValue: 3
    min: 1
    max: 20
    color: "#FF0000"
  b:
    type: number
    defaultValue: 4
  c:
    type: number
    formula: "(a^2 + b^2) ^ 0.5"
  shape:
    type: select
    defaultValue: triangle
blocks:
  - id: intro
    kind: heading
    nodes:
      - type: text
        text: Right triangles
  - id: body
    nodes:
      - type: text
        text: "Side a is "
      - type: widget
        widget:
          kind: scrubber
          varName: a
      - type: text
        text: " and the hypotenuse c is "
      - type: widget
        widget:
          kind: spotColor
          varName: c
          text: computed
  - id: quiz
    nodes:
      - type: text
        text: "A shape with three sides is a "
      - type: widget
        widget:
          kind: clozeChoice
          varName: shape
          correctAnswer: triangle
          options: [triangle, square, circle]
`

func newTestHarness(t *testing.T) (*DocumentService, *StateService, *EditingService, *FragmentService, *ExportService, *fakeBroadcaster) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pythagoras.yaml"), []byte(sampleLessonYAML), 0644))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{OutputToConsole: false, JSONFormat: true})
	require.NoError(t, err)
	tracker := performance.NewTracker(nil)

	docs := NewDocumentService(dir, logger, tracker)
	require.NoError(t, docs.LoadAll())

	sessions := state.NewSessionsStore(0, logger)
	broadcaster := &fakeBroadcaster{}

	stateSvc := NewStateService(sessions, docs, broadcaster, logger, tracker)
	editingSvc := NewEditingService(sessions, broadcaster, logger)
	fragmentSvc := NewFragmentService(sessions, docs, logger, tracker)
	exportSvc := NewExportService(fragmentSvc, logger, tracker)
	return docs, stateSvc, editingSvc, fragmentSvc, exportSvc, broadcaster
}

func TestDocumentServiceLoadsLessons(t *testing.T) {
	docs, _, _, _, _, _ := newTestHarness(t)

	doc, ok := docs.GetDocument("pythagoras")
	require.True(t, ok)
	assert.Equal(t, "The Pythagorean Theorem", doc.Title)
	assert.Len(t, doc.Blocks, 3)

	summaries := docs.ListDocuments()
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].Variables)

	_, ok = docs.GetDocument("missing")
	assert.False(t, ok)
}

func TestEnsureSessionSeedsDefaultsAndFormulas(t *testing.T) {
	_, stateSvc, _, _, _, _ := newTestHarness(t)

	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	a, _ := session.Vars.Get("a")
	assert.Equal(t, variables.Number(3), a)

	// The computed hypotenuse is evaluated at bind time.
	c, ok := session.Vars.Get("c")
	require.True(t, ok)
	assert.InDelta(t, 5, c.Num, 1e-9)

	_, err = stateSvc.EnsureSession("", "missing")
	assert.Error(t, err)
}

func TestSetVariableBroadcastsAffectedBlocks(t *testing.T) {
	_, stateSvc, _, _, _, broadcaster := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	result, err := stateSvc.SetVariable(session.ID, SetRequest{
		Name:  "a",
		Value: variables.Number(5),
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)

	// The write cascades into c, so the body block (bound to both a and c)
	// is affected exactly once.
	assert.Equal(t, []string{"body"}, result.AffectedBlocks)

	c, _ := session.Vars.Get("c")
	assert.InDelta(t, 6.4031242374, c.Num, 1e-6)

	ev := broadcaster.last()
	require.NotNil(t, ev)
	assert.Equal(t, session.ID, ev.SessionID)
	assert.Equal(t, "pythagoras", ev.DocumentID)
}

func TestSetVariableEqualValueDoesNotBroadcast(t *testing.T) {
	_, stateSvc, _, _, _, broadcaster := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	before := len(broadcaster.events)
	result, err := stateSvc.SetVariable(session.ID, SetRequest{
		Name:  "a",
		Value: variables.Number(3),
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Len(t, broadcaster.events, before)
}

func TestEditingLifecycleValidationGate(t *testing.T) {
	_, stateSvc, editingSvc, _, _, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	props := editing.ClozeChoiceProps{VarName: "shape", CorrectAnswer: "triangle", Options: []string{"triangle", "square", "circle"}}
	id := props.Identity(editing.BlockScope{ID: "quiz"})

	// Saving before opening is a no-op: nothing lands in the ledger.
	answer := "square"
	saved, err := editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
		CorrectAnswer: &answer,
		Options:       []string{"triangle", "square"},
	})
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, session.Edits.Len())

	_, err = editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, id, "")
	require.NoError(t, err)

	// An invalid patch (answer not among options) is rejected, the editor
	// stays open, and the ledger is untouched.
	badAnswer := "pentagon"
	saved, err = editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
		CorrectAnswer: &badAnswer,
		Options:       []string{"triangle", "square"},
	})
	assert.False(t, saved)
	require.ErrorIs(t, err, editing.ErrValidation)
	assert.Equal(t, 0, session.Edits.Len())
	current, err := editingSvc.CurrentEditor(session.ID)
	require.NoError(t, err)
	require.NotNil(t, current)

	// A corrected patch commits and closes the editor.
	saved, err = editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
		CorrectAnswer: &answer,
		Options:       []string{"triangle", "square"},
	})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, session.Edits.Len())
	current, err = editingSvc.CurrentEditor(session.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestEditingOpenAcceptsDegradedIdentity(t *testing.T) {
	_, stateSvc, editingSvc, _, _, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	// A widget with no ancestor block resolves to an empty block id. That is
	// a degraded identity, not an invalid one: opening and committing against
	// it must work.
	props := editing.ClozeChoiceProps{VarName: "shape", CorrectAnswer: "triangle", Options: []string{"triangle", "square"}}
	id := props.Identity(editing.BlockScope{})
	require.Equal(t, editing.Identity{BlockID: "", ElementPath: "choice--shape"}, id)

	editor, err := editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, id, "")
	require.NoError(t, err)
	assert.Equal(t, "", editor.Identity.BlockID)

	answer := "square"
	saved, err := editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
		CorrectAnswer: &answer,
		Options:       []string{"triangle", "square"},
	})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, session.Edits.Len())

	// A missing element path is still rejected.
	_, err = editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, editing.Identity{BlockID: "quiz"}, "")
	assert.Error(t, err)
}

func TestEditingOpenCarriesCurrentProps(t *testing.T) {
	_, stateSvc, editingSvc, _, _, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	props := editing.ClozeChoiceProps{VarName: "shape", CorrectAnswer: "triangle", Options: []string{"triangle", "square", "circle"}}
	id := props.Identity(editing.BlockScope{ID: "quiz"})
	encoded := codec.Encode(props)

	editor, err := editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, id, encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, editor.CurrentProps)

	// A modal reading the session state gets the configuration back.
	current, err := editingSvc.CurrentEditor(session.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	var recovered editing.ClozeChoiceProps
	require.NoError(t, codec.Decode(current.CurrentProps, &recovered))
	assert.Equal(t, props, recovered)
}

func TestEditingOpenReplacesOpenEditor(t *testing.T) {
	_, stateSvc, editingSvc, _, _, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	idA := editing.Identity{BlockID: "quiz", ElementPath: "choice-quiz-shape"}
	idB := editing.Identity{BlockID: "body", ElementPath: "tooltip-body-term"}

	_, err = editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, idA, "")
	require.NoError(t, err)
	_, err = editingSvc.OpenEditor(session.ID, editing.KindTooltip, idB, "")
	require.NoError(t, err)

	current, err := editingSvc.CurrentEditor(session.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, editing.KindTooltip, current.Kind)

	// A save against the replaced editor target is a no-op.
	answer := "square"
	saved, err := editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, idA, editing.ClozeChoicePatch{
		CorrectAnswer: &answer,
		Options:       []string{"triangle", "square"},
	})
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestLastWriteWinsAcrossCommits(t *testing.T) {
	_, stateSvc, editingSvc, fragmentSvc, _, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	props := editing.ClozeChoiceProps{VarName: "shape", CorrectAnswer: "triangle", Options: []string{"triangle", "square", "circle"}}
	id := props.Identity(editing.BlockScope{ID: "quiz"})

	commit := func(answer string, options []string) {
		_, err := editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, id, "")
		require.NoError(t, err)
		saved, err := editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
			CorrectAnswer: &answer,
			Options:       options,
		})
		require.NoError(t, err)
		require.True(t, saved)
	}

	commit("square", []string{"triangle", "square"})
	commit("circle", []string{"triangle", "circle"})

	// Both edits are retained; rendering resolves the later one.
	assert.Equal(t, 2, session.Edits.Len())
	html, err := fragmentSvc.RenderBlock(session.ID, "quiz", true)
	require.NoError(t, err)
	assert.Contains(t, html, `data-correct-answer="circle"`)
	assert.NotContains(t, html, `<option value="square"`)
}

func TestExportRoundTripRecoversEditedProps(t *testing.T) {
	_, stateSvc, editingSvc, _, exportSvc, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	props := editing.ClozeChoiceProps{VarName: "shape", CorrectAnswer: "triangle", Options: []string{"triangle", "square", "circle"}}
	id := props.Identity(editing.BlockScope{ID: "quiz"})
	_, err = editingSvc.OpenEditor(session.ID, editing.KindClozeChoice, id, "")
	require.NoError(t, err)
	answer := "square"
	saved, err := editingSvc.SaveEdit(session.ID, editing.KindClozeChoice, id, editing.ClozeChoicePatch{
		CorrectAnswer: &answer,
		Options:       []string{"triangle", "square"},
	})
	require.NoError(t, err)
	require.True(t, saved)

	widgets, err := exportSvc.ExportWidgets(session.ID)
	require.NoError(t, err)
	require.Len(t, widgets, 1)

	w := widgets[0]
	assert.Equal(t, editing.KindClozeChoice, w.Kind)
	assert.Equal(t, "choice-quiz-shape", w.WidgetID)
	assert.Empty(t, w.Error)

	recovered, ok := w.Props.(editing.ClozeChoiceProps)
	require.True(t, ok)
	assert.Equal(t, "square", recovered.CorrectAnswer)
	assert.Equal(t, []string{"triangle", "square"}, recovered.Options)
	// Untouched fields survive the overlay and the round trip.
	assert.Equal(t, "shape", recovered.VarName)
}

func TestExportDocumentIsStatic(t *testing.T) {
	_, stateSvc, _, _, exportSvc, _ := newTestHarness(t)
	session, err := stateSvc.EnsureSession("", "pythagoras")
	require.NoError(t, err)

	markup, err := exportSvc.ExportDocument(session.ID)
	require.NoError(t, err)
	assert.Contains(t, markup, `data-document-id="pythagoras"`)
	assert.NotContains(t, markup, "data-editable")
}
