package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

func testCtx(blockID string) *rendering.RenderContext {
	return &rendering.RenderContext{
		DocumentID:        "lesson-1",
		SessionID:         "session-1",
		ContainingBlockID: blockID,
		Values:            map[string]variables.Value{},
	}
}

func extractProps(t *testing.T, html string) string {
	t.Helper()
	marker := `data-widget-props="`
	idx := strings.Index(html, marker)
	require.GreaterOrEqual(t, idx, 0, "markup should carry encoded props")
	rest := html[idx+len(marker):]
	end := strings.Index(rest, `"`)
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}

func TestRenderToggleWrapperAttributes(t *testing.T) {
	ctx := testCtx("b1")
	props := editing.ToggleProps{VarName: "mode", Options: []string{"on", "off"}}

	html := RenderToggle(ctx, props)

	assert.Contains(t, html, `data-widget="toggle"`)
	assert.Contains(t, html, `data-widget-id="toggle-b1-mode"`)
	assert.Contains(t, html, `data-options="on|off"`)
	assert.NotContains(t, html, `data-editable`)

	// Encoded props round-trip back to the effective configuration.
	var decoded editing.ToggleProps
	require.NoError(t, codec.Decode(extractProps(t, html), &decoded))
	assert.Equal(t, props, decoded)
}

func TestRenderToggleShowsCurrentValue(t *testing.T) {
	ctx := testCtx("b1")
	ctx.Values["mode"] = variables.Text("off")

	html := RenderToggle(ctx, editing.ToggleProps{VarName: "mode", Options: []string{"on", "off"}})
	assert.Contains(t, html, ">off</button>")
}

func TestRenderClozeInputPendingEditOverlay(t *testing.T) {
	ledger := state.NewPendingEditLedger(nil)
	ctx := testCtx("b1")
	ctx.EditorMode = true
	ctx.Edits = ledger

	props := editing.ClozeInputProps{CorrectAnswer: "square", Placeholder: "shape?"}
	id := props.Identity(editing.BlockScope{ID: "b1"})

	newAnswer := "rectangle"
	ledger.Append(editing.PendingEdit{
		EditKind:    editing.KindClozeInput,
		BlockID:     id.BlockID,
		ElementPath: id.ElementPath,
		NewProps:    editing.ClozeInputPatch{CorrectAnswer: &newAnswer},
	})

	html := RenderClozeInput(ctx, props)

	// Identity stays derived from the authored props, the edit overlays the
	// answer, and the placeholder survives untouched.
	assert.Contains(t, html, `data-widget-id="cloze-b1-square"`)
	assert.Contains(t, html, `data-correct-answer="rectangle"`)
	assert.Contains(t, html, `placeholder="shape?"`)
	assert.Contains(t, html, `data-editable="true"`)
}

func TestRenderClozeChoiceOptionsAndSelection(t *testing.T) {
	ctx := testCtx("b2")
	ctx.Values["answer"] = variables.Text("4")

	html := RenderClozeChoice(ctx, editing.ClozeChoiceProps{
		VarName:       "answer",
		CorrectAnswer: "4",
		Options:       []string{"3", "4", "5"},
	})

	assert.Contains(t, html, `data-widget-id="choice-b2-answer"`)
	assert.Contains(t, html, `<option value="4" selected>`)
	assert.Contains(t, html, `<option value="3">`)
}

func TestRenderTooltip(t *testing.T) {
	ctx := testCtx("b1")
	html := RenderTooltip(ctx, editing.TooltipProps{
		Text:    "hypotenuse",
		Tooltip: "the side opposite the right angle",
	})

	assert.Contains(t, html, `data-widget-id="tooltip-b1-hypotenuse"`)
	assert.Contains(t, html, `role="tooltip"`)
	assert.Contains(t, html, "the side opposite the right angle")
	assert.Contains(t, html, "lodestar-tooltip-top")
}

func TestRenderTriggerEncodesValue(t *testing.T) {
	ctx := testCtx("b3")
	v := variables.Number(42)
	html := RenderTrigger(ctx, editing.TriggerProps{
		Text:    "Reset",
		VarName: "count",
		Value:   &v,
	})

	assert.Contains(t, html, `data-widget-id="trigger-b3-count"`)
	assert.Contains(t, html, ">Reset</button>")

	marker := `data-value="`
	idx := strings.Index(html, marker)
	require.GreaterOrEqual(t, idx, 0)
	rest := html[idx+len(marker):]
	encoded := rest[:strings.Index(rest, `"`)]

	var decoded variables.Value
	require.NoError(t, codec.Decode(encoded, &decoded))
	assert.Equal(t, v, decoded)
}

func TestRenderHyperlinkTargets(t *testing.T) {
	ctx := testCtx("b1")

	external := RenderHyperlink(ctx, editing.HyperlinkProps{Text: "docs", Href: "https://example.com"})
	assert.Contains(t, external, `href="https://example.com"`)
	assert.Contains(t, external, `rel="noopener noreferrer"`)

	internal := RenderHyperlink(ctx, editing.HyperlinkProps{Text: "see proof", TargetBlockID: "b9", Href: "https://ignored.example"})
	assert.Contains(t, internal, `href="#b9"`)
	assert.Contains(t, internal, `data-target-block-id="b9"`)
}

func TestRenderScrubberUsesRegistryDefaults(t *testing.T) {
	ctx := testCtx("b1")
	ctx.Defs = variables.NewRegistry(map[string]*variables.Definition{
		"sides": {
			Type:         variables.TypeNumber,
			DefaultValue: variables.Number(3),
			Min:          f64(3),
			Max:          f64(12),
			Step:         f64(1),
			Unit:         " sides",
		},
	})
	ctx.Values["sides"] = variables.Number(5)

	html := RenderScrubber(ctx, ScrubberProps{VarName: "sides"})
	assert.Contains(t, html, `data-min="3"`)
	assert.Contains(t, html, `data-max="12"`)
	assert.Contains(t, html, `aria-valuenow="5"`)
	assert.Contains(t, html, "5 sides")
}

func TestRenderSpotColor(t *testing.T) {
	ctx := testCtx("b1")
	ctx.Defs = variables.NewRegistry(map[string]*variables.Definition{
		"a": {Type: variables.TypeNumber, Color: "#FF0000"},
	})

	html := RenderSpotColor(ctx, "a", "side a")
	assert.Contains(t, html, "color:#FF0000")
	assert.Contains(t, html, ">side a</span>")

	// Unknown variables fall back to the shared accent.
	fallback := RenderSpotColor(ctx, "missing", "x")
	assert.Contains(t, fallback, "#8B5CF6")
}

func TestTextEscaping(t *testing.T) {
	ctx := testCtx("b1")
	html := RenderTooltip(ctx, editing.TooltipProps{
		Text:    "<script>alert(1)</script>",
		Tooltip: "safe",
	})
	assert.NotContains(t, html, "<script>")
}

func f64(v float64) *float64 { return &v }
