// flex_bool.go
//
// The moderation flag is stored as a 0/1 column upstream but is written by
// clients as a JSON boolean. Reads may therefore return true/false, 0/1, or
// the string forms of either. FlexBool absorbs all of them.

package types

import (
	"encoding/json"
	"fmt"
)

// FlexBool is a bool that can be unmarshaled from a JSON boolean, a JSON
// number (0 is false, anything else is true), or the string forms of both.
type FlexBool bool

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "0", "false", "":
			*f = false
		case "1", "true":
			*f = true
		default:
			return fmt.Errorf("FlexBool: invalid bool string %q", s)
		}
		return nil
	}

	return fmt.Errorf("FlexBool: unexpected type, expected bool, number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Bool converts FlexBool back to bool.
func (f FlexBool) Bool() bool {
	return bool(f)
}
