package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ScalarKind tags the variant held by a Scalar
type ScalarKind string

const (
	ScalarNull  ScalarKind = "null"
	ScalarText  ScalarKind = "text"
	ScalarInt   ScalarKind = "int"
	ScalarFloat ScalarKind = "float"
	ScalarBool  ScalarKind = "bool"
)

// Scalar is a tagged value used by open key/value bags (custom fields, characteristic values).
// It is encoded as the matching native JSON scalar.
type Scalar struct {
	Kind  ScalarKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// Null returns the empty scalar
func Null() Scalar { return Scalar{Kind: ScalarNull} }

// Text wraps a string
func Text(s string) Scalar { return Scalar{Kind: ScalarText, Text: s} }

// Int wraps an integer
func Int(n int64) Scalar { return Scalar{Kind: ScalarInt, Int: n} }

// Float wraps a float; whole values collapse to Int
func Float(f float64) Scalar {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Scalar{Kind: ScalarFloat, Float: f}
}

// Bool wraps a boolean
func Bool(b bool) Scalar { return Scalar{Kind: ScalarBool, Bool: b} }

// IsNull reports whether the scalar holds no value
func (s Scalar) IsNull() bool {
	return s.Kind == "" || s.Kind == ScalarNull
}

// Number returns the numeric value and whether the scalar is numeric
func (s Scalar) Number() (float64, bool) {
	switch s.Kind {
	case ScalarInt:
		return float64(s.Int), true
	case ScalarFloat:
		return s.Float, true
	}
	return 0, false
}

// String renders the scalar the way it is shown in spreadsheets
func (s Scalar) String() string {
	switch s.Kind {
	case ScalarText:
		return s.Text
	case ScalarInt:
		return strconv.FormatInt(s.Int, 10)
	case ScalarFloat:
		return strconv.FormatFloat(s.Float, 'f', -1, 64)
	case ScalarBool:
		return strconv.FormatBool(s.Bool)
	}
	return ""
}

// Value returns the scalar as a plain Go value (nil, string, int64, float64 or bool)
func (s Scalar) Value() interface{} {
	switch s.Kind {
	case ScalarText:
		return s.Text
	case ScalarInt:
		return s.Int
	case ScalarFloat:
		return s.Float
	case ScalarBool:
		return s.Bool
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value())
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = Null()
	case string:
		*s = Text(v)
	case bool:
		*s = Bool(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			*s = Int(n)
			return nil
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		*s = Scalar{Kind: ScalarFloat, Float: f}
	default:
		return fmt.Errorf("unsupported scalar value %s", string(data))
	}
	return nil
}
