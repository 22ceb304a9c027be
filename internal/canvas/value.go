package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber indicates that a numeric style input could not be parsed.
var ErrInvalidNumber = errors.New("canvas: invalid numeric value")

type valueKind uint8

const (
	kindUnset valueKind = iota
	kindNumber
	kindText
)

// Value holds a style value that is either a number (logical pixels for geometry) or a string.
type Value struct {
	kind   valueKind
	number float64
	text   string
}

// Number wraps a numeric style value.
func Number(value float64) Value {
	return Value{kind: kindNumber, number: value}
}

// Text wraps a string style value.
func Text(value string) Value {
	return Value{kind: kindText, text: value}
}

// IsSet reports whether the value carries anything.
func (v Value) IsSet() bool {
	return v.kind != kindUnset
}

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool {
	return v.kind == kindNumber
}

// IsEmpty reports whether the value is unset or an empty string. Zero is not empty.
func (v Value) IsEmpty() bool {
	return v.kind == kindUnset || (v.kind == kindText && v.text == "")
}

// Float returns the numeric value. Strings holding a number are coerced.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.number, true
	case kindText:
		parsed, err := ParseNumber(v.text)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// FloatOr returns the numeric value or fallback.
func (v Value) FloatOr(fallback float64) float64 {
	if number, ok := v.Float(); ok {
		return number
	}
	return fallback
}

// String renders the raw value without units.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return []byte(strconv.FormatFloat(v.number, 'f', -1, 64)), nil
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number, string or null. Anything else decodes as unset.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*v = Text(text)
		return nil
	}
	var number float64
	if err := json.Unmarshal(trimmed, &number); err != nil {
		// booleans, arrays and objects are outside the vocabulary
		*v = Value{}
		return nil
	}
	*v = Number(number)
	return nil
}

// ParseNumber parses user-entered numeric input such as "24" or "24px".
func ParseNumber(rawInput string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(rawInput), "px")
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, rawInput)
	}
	return number, nil
}
