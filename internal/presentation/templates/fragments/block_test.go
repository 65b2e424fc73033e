package fragments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/lesson"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
)

func sampleBlock() *lesson.Block {
	return &lesson.Block{
		ID:   "b1",
		Kind: "paragraph",
		Nodes: []*lesson.Node{
			{Type: lesson.NodeText, Text: "A triangle has "},
			{Type: lesson.NodeWidget, Widget: &lesson.WidgetSpec{
				Kind:          "clozeInput",
				CorrectAnswer: "3",
				VarName:       "sides",
			}},
			{Type: lesson.NodeText, Text: " sides."},
		},
	}
}

func TestRenderBlockWrapsNodes(t *testing.T) {
	ctx := &rendering.RenderContext{
		DocumentID: "lesson-1",
		Values:     map[string]variables.Value{"sides": variables.Number(3)},
	}

	html := RenderBlock(ctx, sampleBlock())

	assert.Contains(t, html, `<p id="b1"`)
	assert.Contains(t, html, `data-block-id="b1"`)
	assert.Contains(t, html, "A triangle has ")
	assert.Contains(t, html, `data-widget="clozeInput"`)
	assert.Contains(t, html, `data-widget-id="cloze-b1-sides"`)
	assert.Contains(t, html, "</p>")

	// The containing block id is restored afterwards.
	assert.Empty(t, ctx.ContainingBlockID)
}

func TestRenderBlockHeading(t *testing.T) {
	ctx := &rendering.RenderContext{}
	html := RenderBlock(ctx, &lesson.Block{
		ID:    "h1",
		Kind:  "heading",
		Nodes: []*lesson.Node{{Type: lesson.NodeText, Text: "Pythagoras"}},
	})
	assert.Contains(t, html, `<h2 id="h1"`)
	assert.Contains(t, html, "</h2>")
}

func TestRenderNodeEscapesText(t *testing.T) {
	ctx := &rendering.RenderContext{}
	html := RenderNode(ctx, &lesson.Node{Type: lesson.NodeText, Text: "<b>bold</b>"})
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;b&gt;")
}

func TestRenderNodeUnknownWidgetIsSkipped(t *testing.T) {
	ctx := &rendering.RenderContext{}
	html := RenderNode(ctx, &lesson.Node{
		Type:   lesson.NodeWidget,
		Widget: &lesson.WidgetSpec{Kind: "hologram"},
	})
	assert.Empty(t, html)
}
