// Package templates provides shared widget types and utilities
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

// wrapperData is the common data for widget wrapper spans. Props carries the
// codec-encoded effective configuration so the widget survives a round trip
// through static markup.
type wrapperData struct {
	Kind     string
	WidgetID string
	Props    string
	Editable bool
}

var wrapperTmpl = template.Must(template.New("widgetWrapper").Parse(
	`{{define "open"}}<span data-widget="{{.Kind}}" data-widget-id="{{.WidgetID}}" data-widget-props="{{.Props}}"{{if .Editable}} data-editable="true"{{end}}>{{end}}`,
))

// openWrapper writes the widget's wrapper span opening tag.
func openWrapper(buf *bytes.Buffer, ctx *rendering.RenderContext, kind editing.WidgetKind, id editing.Identity, props any) {
	data := wrapperData{
		Kind:     string(kind),
		WidgetID: id.ElementPath,
		Props:    codec.Encode(props),
		Editable: ctx.EditorMode,
	}
	if err := wrapperTmpl.ExecuteTemplate(buf, "open", data); err != nil {
		log.Printf("ERROR: Failed to execute widget wrapper template: %v", err)
		buf.WriteString("<!-- template error -->")
	}
}

// closeWrapper writes the wrapper span closing tag.
func closeWrapper(buf *bytes.Buffer) {
	buf.WriteString(`</span>`)
}

// inlineStyle builds the optional style attribute value for a widget's
// color configuration. Empty when neither color is set.
func inlineStyle(color, bgColor string) string {
	style := ""
	if color != "" {
		style += "color:" + color + ";"
	}
	if bgColor != "" {
		style += "background-color:" + bgColor + ";"
	}
	return style
}

// displayValue reads a bound variable's current value as display text. An
// unbound or unset variable reads as empty.
func displayValue(ctx *rendering.RenderContext, varName string) string {
	if varName == "" {
		return ""
	}
	return ctx.Value(varName).String()
}
