// Package fragments renders lesson blocks to HTML fragments. A fragment is
// one block's markup, re-requested by the client whenever a blocks_updated
// event names the block.
package fragments

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/lesson"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
	widgets "github.com/LodestarLearning/lodestar-go/internal/presentation/templates/elements/widgets"
)

var blockTmpl = template.Must(template.New("block").Parse(
	`{{define "openParagraph"}}<p id="{{.BlockID}}" class="lodestar-block lodestar-block-{{.Kind}}" data-block-id="{{.BlockID}}">{{end}}` +
		`{{define "openHeading"}}<h2 id="{{.BlockID}}" class="lodestar-block lodestar-block-{{.Kind}}" data-block-id="{{.BlockID}}">{{end}}` +
		`{{define "openCallout"}}<aside id="{{.BlockID}}" class="lodestar-block lodestar-block-{{.Kind}}" data-block-id="{{.BlockID}}">{{end}}` +
		`{{define "text"}}{{.}}{{end}}`,
))

type blockOpenData struct {
	Kind string
	// BlockID doubles as the anchor for internal hyperlinks.
	BlockID string
}

// RenderBlock renders one block and its inline nodes. The containing block
// id is set on the context for the duration so widget identities resolve
// against this block.
func RenderBlock(ctx *rendering.RenderContext, block *lesson.Block) string {
	prev := ctx.ContainingBlockID
	ctx.ContainingBlockID = block.ID
	defer func() { ctx.ContainingBlockID = prev }()

	kind := block.Kind
	if kind == "" {
		kind = "paragraph"
	}

	openName, closeTag := blockShell(kind)

	var buf bytes.Buffer
	executeBlockTemplate(&buf, openName, blockOpenData{
		Kind:    kind,
		BlockID: block.ID,
	})
	for _, node := range block.Nodes {
		buf.WriteString(RenderNode(ctx, node))
	}
	buf.WriteString(closeTag)
	return buf.String()
}

// RenderNode renders one inline node: escaped text or a widget dispatch.
func RenderNode(ctx *rendering.RenderContext, node *lesson.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == lesson.NodeText {
		var buf bytes.Buffer
		executeBlockTemplate(&buf, "text", node.Text)
		return buf.String()
	}
	if node.Widget == nil {
		return ""
	}
	return renderWidget(ctx, node.Widget)
}

func renderWidget(ctx *rendering.RenderContext, spec *lesson.WidgetSpec) string {
	switch spec.Kind {
	case string(editing.KindClozeInput):
		return widgets.RenderClozeInput(ctx, spec.ClozeInputProps())
	case string(editing.KindClozeChoice):
		return widgets.RenderClozeChoice(ctx, spec.ClozeChoiceProps())
	case string(editing.KindToggle):
		return widgets.RenderToggle(ctx, spec.ToggleProps())
	case string(editing.KindTooltip):
		return widgets.RenderTooltip(ctx, spec.TooltipProps())
	case string(editing.KindTrigger):
		return widgets.RenderTrigger(ctx, spec.TriggerProps())
	case string(editing.KindHyperlink):
		return widgets.RenderHyperlink(ctx, spec.HyperlinkProps())
	case lesson.WidgetScrubber:
		return widgets.RenderScrubber(ctx, widgets.ScrubberProps{
			VarName: spec.VarName,
			Min:     spec.Min,
			Max:     spec.Max,
			Step:    spec.Step,
			Color:   spec.Color,
		})
	case lesson.WidgetSpotColor:
		return widgets.RenderSpotColor(ctx, spec.VarName, spec.Text)
	}
	log.Printf("WARN: Unknown widget kind %q, skipping node", spec.Kind)
	return ""
}

func blockShell(kind string) (openName, closeTag string) {
	switch kind {
	case "heading":
		return "openHeading", "</h2>"
	case "callout":
		return "openCallout", "</aside>"
	default:
		return "openParagraph", "</p>"
	}
}

func executeBlockTemplate(buf *bytes.Buffer, name string, data any) {
	if err := blockTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute block template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
