// Package codec makes a widget's effective configuration recoverable from
// static rendered markup. Configurations are serialized to JSON and then
// base64-encoded so the result is safe inside an HTML attribute; decoding
// inverts both steps.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode serializes props to an attribute-safe string. Encoding fails soft:
// a non-serializable configuration yields an empty string so a broken
// encoding never blocks rendering the widget itself. Callers treat "" as
// "no recoverable identity", not as an error.
func Encode(props any) string {
	raw, err := json.Marshal(props)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode inverts Encode into the given props pointer. For any representable
// configuration p, Decode(Encode(p)) reproduces p.
func Decode(encoded string, props any) error {
	if encoded == "" {
		return fmt.Errorf("empty encoded configuration")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	if err := json.Unmarshal(raw, props); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}
