package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct {
	nonEmpty bool
}

func (t *StringType) Name() string {
	if t.nonEmpty {
		return "text"
	}
	return "string"
}

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if t.nonEmpty && strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// IntType validates integer values, optionally within an inclusive range.
type IntType struct {
	bounded  bool
	min, max int
}

func (t *IntType) Name() string {
	if t.bounded {
		return fmt.Sprintf("int[%d..%d]", t.min, t.max)
	}
	return "int"
}

func (t *IntType) Validate(value any) error {
	n, err := toInt(value, t.bounded)
	if err != nil {
		return err
	}
	if t.bounded && (n < int64(t.min) || n > int64(t.max)) {
		return fmt.Errorf("must be between %d and %d, got %d", t.min, t.max, n)
	}
	return nil
}

// toInt accepts Go integers and whole floats (from JSON unmarshaling).
// Numeric strings are accepted only when lenient is set.
func toInt(value any, lenient bool) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return 0, fmt.Errorf("expected int, got float (not a whole number)")
	case string:
		if lenient {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err == nil {
				return n, nil
			}
		}
		return 0, fmt.Errorf("expected int, got %T", value)
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// EnumType accepts one of a fixed set of strings, ignoring case and
// surrounding whitespace.
type EnumType struct {
	values []string
}

func (t *EnumType) Name() string {
	return "enum(" + strings.Join(t.values, "|") + ")"
}

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	s = strings.TrimSpace(s)
	for _, v := range t.values {
		if strings.EqualFold(s, v) {
			return nil
		}
	}
	return fmt.Errorf("must be one of %s, got %q", strings.Join(t.values, ", "), s)
}

// OptionalType lets a field be absent or null.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// NonEmpty creates a validator for strings with at least one
// non-whitespace character.
func NonEmpty() Type { return &StringType{nonEmpty: true} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// IntRange creates an integer validator for [min, max]. Numeric strings
// such as "7" are accepted.
func IntRange(min, max int) Type {
	return &IntType{bounded: true, min: min, max: max}
}

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Enum creates a validator for a closed set of string values.
func Enum(values ...string) Type {
	return &EnumType{values: values}
}

// Optional marks a field as not required.
func Optional(t Type) Type {
	if IsOptional(t) {
		return t
	}
	return &OptionalType{inner: t}
}

// IsOptional reports whether t was wrapped with Optional.
func IsOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}

// ParseType converts a string type name to a Type.
// Supports "string", "text", "int", "float", "bool", slices such as
// "[string]" and a trailing "?" for optional fields.
func ParseType(typeStr string) (Type, error) {
	if inner, ok := strings.CutSuffix(typeStr, "?"); ok {
		t, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}

	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "text":
		return NonEmpty(), nil
	case "int":
		return Int(), nil
	case "float":
		return &FloatType{}, nil
	case "bool":
		return &BoolType{}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// MustParseTypeMap is like ParseTypeMap but panics on error. It is meant
// for package-level schema declarations.
func MustParseTypeMap(typeMap map[string]string) Schema {
	s, err := ParseTypeMap(typeMap)
	if err != nil {
		panic("schema: " + err.Error())
	}
	return s
}
