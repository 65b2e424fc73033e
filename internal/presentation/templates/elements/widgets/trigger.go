// Package templates provides the trigger widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var triggerWidgetTmpl = template.Must(template.New("triggerWidget").Parse(
	`{{define "trigger"}}
    <button type="button"
            id="{{.ButtonID}}"
            class="lodestar-trigger"
            {{if .Style}}style="{{.Style}}"{{end}}
            data-var-name="{{.VarName}}"
            data-value="{{.ValueAttr}}"
            data-block-id="{{.BlockID}}">{{.Text}}</button>{{end}}`,
))

type triggerData struct {
	ButtonID, VarName, ValueAttr, BlockID, Text string
	Style                                       template.CSS
}

// RenderTrigger renders a click trigger that writes its configured value to
// the bound variable. The value rides along codec-encoded so the client can
// post it back verbatim.
func RenderTrigger(ctx *rendering.RenderContext, props editing.TriggerProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindTrigger, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.TriggerPatch); ok {
			effective = editing.MergeTrigger(props, patch)
		}
	}

	valueAttr := ""
	if effective.Value != nil {
		valueAttr = codec.Encode(effective.Value)
	}

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindTrigger, id, effective)

	executeTriggerTemplate(&buf, "trigger", triggerData{
		ButtonID:  "trigger-" + id.ElementPath,
		VarName:   effective.VarName,
		ValueAttr: valueAttr,
		BlockID:   id.BlockID,
		Text:      effective.Text,
		Style:     template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	})

	closeWrapper(&buf)
	return buf.String()
}

func executeTriggerTemplate(buf *bytes.Buffer, name string, data any) {
	if err := triggerWidgetTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute trigger widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
