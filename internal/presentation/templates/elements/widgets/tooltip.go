// Package templates provides the tooltip widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var tooltipWidgetTmpl = template.Must(template.New("tooltipWidget").Parse(
	`{{define "anchor"}}
    <span class="lodestar-tooltip-anchor"
          {{if .Style}}style="{{.Style}}"{{end}}
          tabindex="0"
          aria-describedby="{{.TipID}}">{{.Text}}</span>{{end}}` +

		`{{define "tip"}}
    <span id="{{.TipID}}"
          class="lodestar-tooltip lodestar-tooltip-{{.Position}}"
          role="tooltip"
          {{if .MaxWidth}}style="max-width:{{.MaxWidth}}px"{{end}}>{{.Tooltip}}</span>{{end}}`,
))

type (
	tooltipAnchorData struct {
		TipID, Text string
		Style       template.CSS
	}
	tooltipTipData struct {
		TipID, Position, Tooltip string
		MaxWidth                 int
	}
)

// RenderTooltip renders an inline term with hover or focus help text.
func RenderTooltip(ctx *rendering.RenderContext, props editing.TooltipProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindTooltip, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.TooltipPatch); ok {
			effective = editing.MergeTooltip(props, patch)
		}
	}

	position := effective.Position
	if position == "" {
		position = "top"
	}

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindTooltip, id, effective)

	tipID := "tooltip-" + id.ElementPath
	executeTooltipTemplate(&buf, "anchor", tooltipAnchorData{
		TipID: tipID,
		Text:  effective.Text,
		Style: template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	})
	executeTooltipTemplate(&buf, "tip", tooltipTipData{
		TipID:    tipID,
		Position: position,
		Tooltip:  effective.Tooltip,
		MaxWidth: effective.MaxWidth,
	})

	closeWrapper(&buf)
	return buf.String()
}

func executeTooltipTemplate(buf *bytes.Buffer, name string, data any) {
	if err := tooltipWidgetTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute tooltip widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
