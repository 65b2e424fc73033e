// Package templates provides the hyperlink widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var hyperlinkWidgetTmpl = template.Must(template.New("hyperlinkWidget").Parse(
	`{{define "external"}}
    <a href="{{.Href}}"
       class="lodestar-hyperlink"
       {{if .Style}}style="{{.Style}}"{{end}}
       target="_blank"
       rel="noopener noreferrer">{{.Text}}</a>{{end}}` +

		`{{define "internal"}}
    <a href="#{{.TargetBlockID}}"
       class="lodestar-hyperlink"
       {{if .Style}}style="{{.Style}}"{{end}}
       data-target-block-id="{{.TargetBlockID}}">{{.Text}}</a>{{end}}`,
))

type hyperlinkData struct {
	Href, TargetBlockID, Text string
	Style                     template.CSS
}

// RenderHyperlink renders an inline link. A target block id takes priority
// over an external href so in-lesson navigation wins when both are set.
func RenderHyperlink(ctx *rendering.RenderContext, props editing.HyperlinkProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindHyperlink, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.HyperlinkPatch); ok {
			effective = editing.MergeHyperlink(props, patch)
		}
	}

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindHyperlink, id, effective)

	data := hyperlinkData{
		Href:          effective.Href,
		TargetBlockID: effective.TargetBlockID,
		Text:          effective.Text,
		Style:         template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	}
	if effective.TargetBlockID != "" {
		executeHyperlinkTemplate(&buf, "internal", data)
	} else {
		executeHyperlinkTemplate(&buf, "external", data)
	}

	closeWrapper(&buf)
	return buf.String()
}

func executeHyperlinkTemplate(buf *bytes.Buffer, name string, data any) {
	if err := hyperlinkWidgetTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute hyperlink widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
