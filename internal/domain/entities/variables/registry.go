package variables

// Type classifies a variable definition for widget wiring.
type Type string

const (
	TypeNumber    Type = "number"
	TypeText      Type = "text"
	TypeBoolean   Type = "boolean"
	TypeSelect    Type = "select"
	TypeArray     Type = "array"
	TypeObject    Type = "object"
	TypeSpotColor Type = "spotColor"
)

// Definition is the author-supplied metadata for one shared variable.
// Definitions are read-only at runtime; the store is seeded from their
// default values once per document load.
type Definition struct {
	DefaultValue  Value    `json:"defaultValue" yaml:"defaultValue"`
	Label         string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type          Type     `json:"type,omitempty" yaml:"type,omitempty"`
	Unit          string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step          *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Color         string   `json:"color,omitempty" yaml:"color,omitempty"`
	BgColor       string   `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	Options       []string `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder   string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	CaseSensitive *bool    `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
	Schema        string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Formula       string   `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// Registry is the static lookup of variable definitions for one document.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

// NewRegistry builds a registry from a definition map.
func NewRegistry(defs map[string]*Definition) *Registry {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for name, def := range defs {
		if def == nil {
			continue
		}
		r.defs[name] = def
		r.order = append(r.order, name)
	}
	return r
}

// Definition retrieves metadata for a variable, or nil when unregistered.
func (r *Registry) Definition(name string) *Definition {
	if r == nil {
		return nil
	}
	return r.defs[name]
}

// Names returns every registered variable name.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// DefaultValues snapshots every definition's default, for store seeding.
func (r *Registry) DefaultValues() map[string]Value {
	defaults := make(map[string]Value, len(r.defs))
	for name, def := range r.defs {
		defaults[name] = def.DefaultValue
	}
	return defaults
}

// NumberProps is the definition subset a scrubber widget consumes.
type NumberProps struct {
	DefaultValue float64
	Min          *float64
	Max          *float64
	Step         *float64
	Color        string
	Unit         string
}

// ChoiceProps is the definition subset a cloze-choice widget consumes.
type ChoiceProps struct {
	Placeholder string
	Color       string
	BgColor     string
}

// ToggleProps is the definition subset a toggle widget consumes.
type ToggleProps struct {
	Color   string
	BgColor string
}

// ClozeProps is the definition subset a cloze-input widget consumes.
type ClozeProps struct {
	Placeholder   string
	Color         string
	BgColor       string
	CaseSensitive *bool
}

// Projections tolerate missing or mismatched definitions by returning zero
// values: the widget's own prop defaults fill any gap.

// NumberProps projects a definition onto scrubber props.
func (r *Registry) NumberProps(name string) NumberProps {
	def := r.Definition(name)
	if def == nil || def.Type != TypeNumber {
		return NumberProps{}
	}
	p := NumberProps{Min: def.Min, Max: def.Max, Step: def.Step, Color: def.Color, Unit: def.Unit}
	if def.DefaultValue.Kind == KindNumber {
		p.DefaultValue = def.DefaultValue.Num
	}
	return p
}

// ChoiceProps projects a definition onto cloze-choice props.
func (r *Registry) ChoiceProps(name string) ChoiceProps {
	def := r.Definition(name)
	if def == nil || def.Type != TypeSelect {
		return ChoiceProps{}
	}
	return ChoiceProps{Placeholder: def.Placeholder, Color: def.Color, BgColor: def.BgColor}
}

// ToggleProps projects a definition onto toggle props.
func (r *Registry) ToggleProps(name string) ToggleProps {
	def := r.Definition(name)
	if def == nil || def.Type != TypeSelect {
		return ToggleProps{}
	}
	return ToggleProps{Color: def.Color, BgColor: def.BgColor}
}

// ClozeProps projects a definition onto cloze-input props.
func (r *Registry) ClozeProps(name string) ClozeProps {
	def := r.Definition(name)
	if def == nil || def.Type != TypeText {
		return ClozeProps{}
	}
	return ClozeProps{
		Placeholder:   def.Placeholder,
		Color:         def.Color,
		BgColor:       def.BgColor,
		CaseSensitive: def.CaseSensitive,
	}
}

// SpotColor projects a definition onto the single color a spot-color label
// consumes, falling back to the shared default accent.
func (r *Registry) SpotColor(name string) string {
	if def := r.Definition(name); def != nil && def.Color != "" {
		return def.Color
	}
	return "#8B5CF6"
}
