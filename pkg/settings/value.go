package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	Bool Kind = iota
	Int
	Float
	String
	Vector
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "str"
	case Vector:
		return "vector"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a resolved setting value.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	vec  []float64
}

func BoolValue(b bool) Value        { return Value{kind: Bool, b: b} }
func IntValue(i int64) Value        { return Value{kind: Int, i: i} }
func FloatValue(f float64) Value    { return Value{kind: Float, f: f} }
func StringValue(s string) Value    { return Value{kind: String, s: s} }
func VectorValue(v []float64) Value { return Value{kind: Vector, vec: append([]float64(nil), v...)} }

func (v Value) Kind() Kind { return v.kind }

// ParseValue infers the type of a textual value: True/False, an integer, a
// float, a bracketed vector of numbers, or else a string. Surrounding quotes
// are stripped from strings.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	switch s {
	case "True", "true":
		return BoolValue(true)
	case "False", "false":
		return BoolValue(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if vec, ok := parseVector(s[1 : len(s)-1]); ok {
			return VectorValue(vec)
		}
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return StringValue(s)
}

func parseVector(body string) ([]float64, bool) {
	vec := []float64{}
	if strings.TrimSpace(body) == "" {
		return vec, true
	}
	for _, part := range strings.Split(body, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false
		}
		vec = append(vec, f)
	}
	return vec, true
}

// valueOf converts a decoded profile value.
func valueOf(x interface{}) (Value, error) {
	switch x := x.(type) {
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return FloatValue(x), nil
	case string:
		return ParseValue(x), nil
	case []interface{}:
		vec := make([]float64, 0, len(x))
		for _, e := range x {
			switch e := e.(type) {
			case int:
				vec = append(vec, float64(e))
			case float64:
				vec = append(vec, e)
			default:
				return Value{}, fmt.Errorf("vector element %v is not a number", e)
			}
		}
		return VectorValue(vec), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %v (%T)", x, x)
	}
}

// AsBool returns the value as a bool. Only bools convert.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == Bool
}

// AsFloat returns the value as a float. Ints convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case Float:
		return v.f, true
	case Int:
		return float64(v.i), true
	}
	return 0, false
}

// AsInt returns the value as an int. Integral floats convert.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsString returns the value of a string setting.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == String
}

// String renders the value the way the slicing engine reads it.
func (v Value) String() string {
	switch v.kind {
	case Bool:
		if v.b {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Vector:
		parts := make([]string, len(v.vec))
		for i, f := range v.vec {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.s
	}
}

// Equal compares numbers by value and everything else by kind and rendered form.
func (v Value) Equal(o Value) bool {
	if a, ok := v.AsFloat(); ok {
		b, ok := o.AsFloat()
		return ok && a == b
	}
	return v.kind == o.kind && v.String() == o.String()
}
