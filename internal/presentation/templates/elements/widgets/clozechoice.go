// Package templates provides the cloze choice widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var clozeChoiceTmpl = template.Must(template.New("clozeChoiceWidget").Parse(
	`{{define "select"}}
    <select id="{{.SelectID}}"
            class="lodestar-cloze-choice"
            {{if .Style}}style="{{.Style}}"{{end}}
            data-var-name="{{.VarName}}"
            data-correct-answer="{{.CorrectAnswer}}"
            data-block-id="{{.BlockID}}"
            aria-label="Choose an answer">
        <option value=""{{if not .Current}} selected{{end}} disabled>{{.Placeholder}}</option>{{end}}` +

		`{{define "option"}}
        <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}` +

		`{{define "close"}}
    </select>{{end}}`,
))

type (
	clozeChoiceData struct {
		SelectID, VarName, CorrectAnswer, BlockID, Placeholder, Current string
		Style                                                           template.CSS
	}
	clozeChoiceOptionData struct {
		Value    string
		Selected bool
	}
)

// RenderClozeChoice renders a dropdown-choice cloze.
func RenderClozeChoice(ctx *rendering.RenderContext, props editing.ClozeChoiceProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindClozeChoice, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.ClozeChoicePatch); ok {
			effective = editing.MergeClozeChoice(props, patch)
		}
	}

	placeholder := effective.Placeholder
	if placeholder == "" {
		placeholder = "Select..."
	}
	current := displayValue(ctx, effective.VarName)

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindClozeChoice, id, effective)

	executeClozeChoiceTemplate(&buf, "select", clozeChoiceData{
		SelectID:      "cloze-choice-" + id.ElementPath,
		VarName:       effective.VarName,
		CorrectAnswer: effective.CorrectAnswer,
		BlockID:       id.BlockID,
		Placeholder:   placeholder,
		Current:       current,
		Style:         template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	})
	for _, option := range effective.Options {
		executeClozeChoiceTemplate(&buf, "option", clozeChoiceOptionData{
			Value:    option,
			Selected: current != "" && option == current,
		})
	}
	executeClozeChoiceTemplate(&buf, "close", nil)

	closeWrapper(&buf)
	return buf.String()
}

func executeClozeChoiceTemplate(buf *bytes.Buffer, name string, data any) {
	if err := clozeChoiceTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute cloze choice widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
