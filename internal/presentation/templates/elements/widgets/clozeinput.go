// Package templates provides the cloze input widget implementation
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

var clozeInputTmpl = template.Must(template.New("clozeInputWidget").Parse(
	`{{define "input"}}
    <input type="text"
           id="{{.InputID}}"
           class="lodestar-cloze-input"
           value="{{.Current}}"
           placeholder="{{.Placeholder}}"
           {{if .Style}}style="{{.Style}}"{{end}}
           data-var-name="{{.VarName}}"
           data-correct-answer="{{.CorrectAnswer}}"
           data-case-sensitive="{{.CaseSensitive}}"
           data-block-id="{{.BlockID}}"
           aria-label="Fill in the blank">{{end}}`,
))

type clozeInputData struct {
	InputID, Current, Placeholder, VarName, CorrectAnswer, BlockID string
	CaseSensitive                                                  bool
	Style                                                          template.CSS
}

// RenderClozeInput renders a fill-in-the-blank text input. The identity is
// resolved from the authored props so pending edits keep matching after a
// correct-answer change.
func RenderClozeInput(ctx *rendering.RenderContext, props editing.ClozeInputProps) string {
	id := props.Identity(ctx.BlockScope())

	effective := props
	if edit := ctx.PendingEdit(editing.KindClozeInput, id); edit != nil {
		if patch, ok := edit.NewProps.(editing.ClozeInputPatch); ok {
			effective = editing.MergeClozeInput(props, patch)
		}
	}

	var buf bytes.Buffer
	openWrapper(&buf, ctx, editing.KindClozeInput, id, effective)

	executeClozeInputTemplate(&buf, "input", clozeInputData{
		InputID:       "cloze-input-" + id.ElementPath,
		Current:       displayValue(ctx, effective.VarName),
		Placeholder:   effective.Placeholder,
		VarName:       effective.VarName,
		CorrectAnswer: effective.CorrectAnswer,
		CaseSensitive: effective.CaseSensitive,
		BlockID:       id.BlockID,
		Style:         template.CSS(inlineStyle(effective.Color, effective.BgColor)),
	})

	closeWrapper(&buf)
	return buf.String()
}

func executeClozeInputTemplate(buf *bytes.Buffer, name string, data any) {
	if err := clozeInputTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute cloze input widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
