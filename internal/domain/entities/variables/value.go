// Package variables provides domain entities for the shared lesson variable
// system. It defines the typed value union carried by the variable store and
// the author-supplied definition registry that seeds it.
package variables

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Kind tags the payload carried by a Value.
type Kind string

const (
	KindNumber Kind = "number"
	KindText   Kind = "text"
	KindBool   Kind = "boolean"
	KindList   Kind = "list"
	KindRecord Kind = "record"
)

// Value is the tagged union of everything a lesson variable can hold.
// The zero Value has an empty Kind and means "unset".
type Value struct {
	Kind   Kind
	Num    float64
	Text   string
	Bool   bool
	List   []float64
	Record map[string]any
}

// Number wraps a float as a Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text wraps a string as a Value. Select-typed variables also use text values.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// List wraps an ordered list of numbers as a Value.
func List(ns ...float64) Value { return Value{Kind: KindList, List: ns} }

// Record wraps a structured record as a Value.
func Record(m map[string]any) Value { return Value{Kind: KindRecord, Record: m} }

// IsZero reports whether the value is unset.
func (v Value) IsZero() bool { return v.Kind == "" }

// Equal reports value equality. Change notification in the store fires only
// when Equal is false between the old and new value.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Text == o.Text
	case KindBool:
		return v.Bool == o.Bool
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	case KindRecord:
		a, errA := json.Marshal(v.Record)
		b, errB := json.Marshal(o.Record)
		if errA != nil || errB != nil {
			return false
		}
		return string(a) == string(b)
	}
	return true
}

// String renders the value for display and for form round-trips.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if v.Num == math.Trunc(v.Num) && !math.IsInf(v.Num, 0) {
			return fmt.Sprintf("%d", int64(v.Num))
		}
		return fmt.Sprintf("%g", v.Num)
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindList, KindRecord:
		b, err := json.Marshal(v.native())
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

// native returns the payload as a plain Go value, for JSON/YAML encoding and
// for handing to expression environments.
func (v Value) native() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	case KindList:
		return v.List
	case KindRecord:
		return v.Record
	}
	return nil
}

// Native exposes the payload as a plain Go value.
func (v Value) Native() any { return v.native() }

// MarshalJSON encodes the value as its natural JSON form: a bare number,
// string, boolean, array, or object.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(v.native())
}

// UnmarshalJSON infers the kind from the JSON shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML infers the kind from the YAML shape, so lesson files can
// write defaults as plain scalars, sequences, and mappings.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the natural scalar/sequence/mapping form.
func (v Value) MarshalYAML() (any, error) {
	if v.IsZero() {
		return nil, nil
	}
	return v.native(), nil
}

// FromNative converts a dynamically typed value (as produced by JSON/YAML
// decoding or an expression engine) into a tagged Value.
func FromNative(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case []any:
		list := make([]float64, 0, len(t))
		for _, item := range t {
			switch n := item.(type) {
			case float64:
				list = append(list, n)
			case int:
				list = append(list, float64(n))
			case int64:
				list = append(list, float64(n))
			default:
				return Value{}, fmt.Errorf("list values must be numeric, got %T", item)
			}
		}
		return List(list...), nil
	case []float64:
		return List(t...), nil
	case map[string]any:
		return Record(t), nil
	case map[any]any:
		record := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("record keys must be strings, got %T", k)
			}
			record[key] = val
		}
		return Record(record), nil
	}
	return Value{}, fmt.Errorf("unsupported variable value type %T", raw)
}
