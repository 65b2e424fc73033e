// Package templates provides the toggle widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var toggleWidgetTmpl = template.Must(template.New("toggleWidget").Parse(
	`{{define "toggle"}}
    <button type="button"
            id="{{.ButtonID}}"
            class="lodestar-toggle"
            {{if .Style}}style="{{.Style}}"{{end}}
            data-var-name="{{.VarName}}"
            data-options="{{.OptionsAttr}}"
            data-block-id="{{.BlockID}}"
            role="switch"
            aria-checked="{{.AriaChecked}}"
            aria-label="Cycle through options">{{.Current}}</button>{{end}}`,
))

type toggleData struct {
	ButtonID, VarName, OptionsAttr, BlockID, Current, AriaChecked string
	Style                                                         template.CSS
}

// RenderToggle renders a click-to-cycle toggle. The displayed label is the
// bound variable's current value, falling back to the first option.
func RenderToggle(ctx *rendering.RenderContext, props editing.ToggleProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindToggle, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.TogglePatch); ok {
			effective = editing.MergeToggle(props, patch)
		}
	}

	current := displayValue(ctx, effective.VarName)
	if current == "" && len(effective.Options) > 0 {
		current = effective.Options[0]
	}

	ariaChecked := "false"
	if len(effective.Options) > 0 && current != effective.Options[0] {
		ariaChecked = "true"
	}

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindToggle, id, effective)

	executeToggleTemplate(&buf, "toggle", toggleData{
		ButtonID:    "toggle-" + id.ElementPath,
		VarName:     effective.VarName,
		OptionsAttr: optionsAttr(effective.Options),
		BlockID:     id.BlockID,
		Current:     current,
		AriaChecked: ariaChecked,
		Style:       template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	})

	closeWrapper(&buf)
	return buf.String()
}

// optionsAttr joins options for the data attribute the client cycles over.
func optionsAttr(options []string) string {
	out := ""
	for i, option := range options {
		if i > 0 {
			out += "|"
		}
		out += option
	}
	return out
}

func executeToggleTemplate(buf *bytes.Buffer, name string, data any) {
	if err := toggleWidgetTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute toggle widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
