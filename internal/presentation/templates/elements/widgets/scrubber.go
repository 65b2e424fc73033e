// Package templates provides the scrubber and spot color widget implementations
package templates

import (
	"bytes"
	"html/template"
	"log"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/rendering"
)

// ScrubberProps configures a drag-to-adjust number widget. Unset bounds fall
// back to the variable definition's.
type ScrubberProps struct {
	VarName string   `json:"varName"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    *float64 `json:"step,omitempty"`
	Color   string   `json:"color,omitempty"`
	Unit    string   `json:"unit,omitempty"`
}

var scrubberWidgetTmpl = template.Must(template.New("scrubberWidget").Parse(
	`{{define "scrubber"}}<span class="lodestar-scrubber"
          {{if .Style}}style="{{.Style}}"{{end}}
          data-widget="scrubber"
          data-var-name="{{.VarName}}"
          {{if .HasMin}}data-min="{{.Min}}"{{end}}
          {{if .HasMax}}data-max="{{.Max}}"{{end}}
          {{if .HasStep}}data-step="{{.Step}}"{{end}}
          role="slider"
          aria-valuenow="{{.Current}}"
          tabindex="0">{{.Current}}{{.Unit}}</span>{{end}}` +

		`{{define "spotColor"}}<span class="lodestar-spot" style="{{.Style}}" data-widget="spotColor" data-var-name="{{.VarName}}">{{.Text}}</span>{{end}}`,
))

type scrubberData struct {
	VarName, Current, Unit  string
	Min, Max, Step          float64
	HasMin, HasMax, HasStep bool
	Style                   template.CSS
}

type spotColorData struct {
	VarName, Text string
	Style         template.CSS
}

// RenderScrubber renders a drag-to-adjust number bound to a variable.
// Scrubbers are render-only: they never participate in the edit overlay.
func RenderScrubber(ctx *rendering.RenderContext, props ScrubberProps) string {
	defaults := ctx.Defs.NumberProps(props.VarName)
	if props.Min == nil {
		props.Min = defaults.Min
	}
	if props.Max == nil {
		props.Max = defaults.Max
	}
	if props.Step == nil {
		props.Step = defaults.Step
	}
	if props.Color == "" {
		props.Color = defaults.Color
	}
	if props.Unit == "" {
		props.Unit = defaults.Unit
	}

	data := scrubberData{
		VarName: props.VarName,
		Current: displayValue(ctx, props.VarName),
		Unit:    props.Unit,
		Style:   template.CSS(inlineStyle(props.Color, "")),
	}
	if props.Min != nil {
		data.Min, data.HasMin = *props.Min, true
	}
	if props.Max != nil {
		data.Max, data.HasMax = *props.Max, true
	}
	if props.Step != nil {
		data.Step, data.HasStep = *props.Step, true
	}

	var buf bytes.Buffer
	executeScrubberTemplate(&buf, "scrubber", data)
	return buf.String()
}

// RenderSpotColor renders inline text tinted with a variable's accent color.
func RenderSpotColor(ctx *rendering.RenderContext, varName, text string) string {
	var buf bytes.Buffer
	executeScrubberTemplate(&buf, "spotColor", spotColorData{
		VarName: varName,
		Text:    text,
		Style:   template.CSS(inlineStyle(ctx.Defs.SpotColor(varName), "")),
	})
	return buf.String()
}

func executeScrubberTemplate(buf *bytes.Buffer, name string, data any) {
	if err := scrubberWidgetTmpl.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute scrubber widget template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
