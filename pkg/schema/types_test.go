package schema

import (
	"testing"
)

func TestStringTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), "", false},
		{String(), 42, true},
		{String(), nil, true},
		{NonEmpty(), "chest pain", false},
		{NonEmpty(), "   ", true},
		{NonEmpty(), "", true},
		{NonEmpty(), true, true},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestIntType(t *testing.T) {
	typ := Int()

	if typ.Name() != "int" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "int")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int8(42), false},
		{int64(42), false},
		{float64(42), false},
		{float64(42.5), true},
		{"42", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestIntRange(t *testing.T) {
	typ := IntRange(1, 10)

	if typ.Name() != "int[1..10]" {
		t.Errorf("Name() = %q", typ.Name())
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{1, false},
		{10, false},
		{float64(7), false},
		{"7", false},
		{" 3 ", false},
		{0, true},
		{11, true},
		{float64(7.5), true},
		{"seven", true},
		{"12", true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestFloatAndBool(t *testing.T) {
	f, b := &FloatType{}, &BoolType{}
	if err := f.Validate(3.14); err != nil {
		t.Errorf("Float 3.14: %v", err)
	}
	if err := f.Validate(3); err != nil {
		t.Errorf("Float 3: %v", err)
	}
	if err := f.Validate("3.14"); err == nil {
		t.Error("Float should reject strings")
	}
	if err := b.Validate(false); err != nil {
		t.Errorf("Bool false: %v", err)
	}
	if err := b.Validate("true"); err == nil {
		t.Error("Bool should reject strings")
	}
}

func TestSliceType(t *testing.T) {
	stringSlice := Slice(String())
	intSlice := Slice(Int())

	tests := []struct {
		typ     Type
		value   any
		wantErr bool
		desc    string
	}{
		{stringSlice, []string{"a", "b"}, false, "string slice"},
		{stringSlice, []any{}, false, "empty decoded slice"},
		{stringSlice, []any{"fever", "cough"}, false, "decoded slice with strings"},
		{stringSlice, []any{"fever", 3}, true, "mixed slice"},
		{stringSlice, "fever", true, "string instead of slice"},
		{intSlice, []any{1.0, 2.0}, false, "decoded whole floats"},
		{Slice(Slice(String())), [][]string{{"a"}, {"b", "c"}}, false, "nested"},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.desc, tt.value, err, tt.wantErr)
		}
	}
}

func TestEnumType(t *testing.T) {
	typ := Enum("RED", "YELLOW", "GREEN", "BLUE")

	if typ.Name() != "enum(RED|YELLOW|GREEN|BLUE)" {
		t.Errorf("Name() = %q", typ.Name())
	}

	for _, ok := range []any{"RED", "red", " Green "} {
		if err := typ.Validate(ok); err != nil {
			t.Errorf("Validate(%q) error = %v", ok, err)
		}
	}
	for _, bad := range []any{"ORANGE", "", 1, []any{"RED"}} {
		if err := typ.Validate(bad); err == nil {
			t.Errorf("Validate(%v) should fail", bad)
		}
	}
}

func TestOptionalType(t *testing.T) {
	typ := Optional(IntRange(1, 10))

	if !IsOptional(typ) {
		t.Fatal("Optional should be detectable")
	}
	if IsOptional(Int()) {
		t.Fatal("Int is not optional")
	}
	if Optional(typ) != typ {
		t.Error("Optional should not double wrap")
	}
	if typ.Name() != "int[1..10]?" {
		t.Errorf("Name() = %q", typ.Name())
	}
	if err := typ.Validate(nil); err != nil {
		t.Errorf("nil should pass: %v", err)
	}
	if err := typ.Validate(20); err == nil {
		t.Error("out of range value should still fail")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
		optional bool
	}{
		{"string", false, "string", false},
		{"text", false, "text", false},
		{"int", false, "int", false},
		{"float", false, "float", false},
		{"bool", false, "bool", false},
		{"[string]", false, "[string]", false},
		{"[string]?", false, "[string]?", true},
		{"string?", false, "string?", true},
		{"[[string]]", false, "[[string]]", false},
		{"invalid", true, "", false},
		{"[invalid]", true, "", false},
		{"invalid?", true, "", false},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
		if IsOptional(typ) != tt.optional {
			t.Errorf("ParseType(%q) optional = %v, want %v", tt.input, IsOptional(typ), tt.optional)
		}
	}
}

func TestParseTypeMap(t *testing.T) {
	s, err := ParseTypeMap(map[string]string{
		"department": "text",
		"room_type":  "string?",
		"orders":     "[string]?",
	})
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("len = %d, want 3", len(s))
	}
	if s["orders"].Name() != "[string]?" {
		t.Errorf("orders type = %q", s["orders"].Name())
	}

	if _, err := ParseTypeMap(map[string]string{"x": "uuid"}); err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}

func TestMustParseTypeMapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParseTypeMap(map[string]string{"x": "nope"})
}
