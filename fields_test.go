package hc05

import (
	"errors"
	"testing"
)

func TestFieldByName(t *testing.T) {
	tests := []struct {
		input string
		want  Field
		ok    bool
	}{
		{"name", FieldName, true},
		{"PIN", FieldPin, true},
		{" uart ", FieldUART, true},
		{"role", FieldRole, true},
		{"cmode", FieldCMode, true},
		{"bogus", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := FieldByName(tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("FieldByName(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{FieldName, "HC-05"},
		{FieldPin, "1234"},
		{FieldUART, "9600,0,0"},
		{FieldRole, "0"},
		{FieldCMode, "0"},
	}

	for _, tt := range tests {
		if got := Default(tt.field); got != tt.want {
			t.Errorf("Default(%s) = %q, want %q", tt.field, got, tt.want)
		}
	}

	// Every default must lie inside its own field's domain.
	for _, f := range Fields() {
		if err := Validate(f, Default(f)); err != nil {
			t.Errorf("default for %s fails its own validator: %v", f, err)
		}
	}
}

func TestValidateDomains(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value string
		valid bool
	}{
		{"plain name", FieldName, "workshop-07", true},
		{"empty name", FieldName, "", false},
		{"overlong name", FieldName, "0123456789012345678901234567890123", false},
		{"name with CR", FieldName, "bad\rname", false},

		{"four digit pin", FieldPin, "0000", true},
		{"short pin", FieldPin, "123", false},
		{"long pin", FieldPin, "12345", false},
		{"alpha pin", FieldPin, "12a4", false},

		{"default uart", FieldUART, "9600,0,0", true},
		{"fast uart", FieldUART, "115200,1,2", true},
		{"odd baud", FieldUART, "9601,0,0", false},
		{"unsupported baud", FieldUART, "300,0,0", false},
		{"bad stop bits", FieldUART, "9600,2,0", false},
		{"bad parity", FieldUART, "9600,0,3", false},
		{"missing part", FieldUART, "9600,0", false},

		{"slave role", FieldRole, "0", true},
		{"master role", FieldRole, "1", true},
		{"slave-loop role", FieldRole, "2", true},
		{"out of range role", FieldRole, "3", false},

		{"cmode any", FieldCMode, "1", true},
		{"cmode out of range", FieldCMode, "9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.field, tt.value)
			if tt.valid && err != nil {
				t.Errorf("Validate(%s, %q) = %v, want nil", tt.field, tt.value, err)
			}
			if !tt.valid {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("Validate(%s, %q) = %v, want *ValidationError", tt.field, tt.value, err)
				} else if verr.Field != tt.field || verr.Value != tt.value {
					t.Errorf("ValidationError carries %s/%q, want %s/%q", verr.Field, verr.Value, tt.field, tt.value)
				}
			}
		})
	}
}

func TestModuleConfigAbsentFields(t *testing.T) {
	config := NewModuleConfig()

	if _, ok := config.Value(FieldPin); ok {
		t.Error("fresh config should have no pin value")
	}

	config.Set(FieldName, "bench-unit")
	config.Set(FieldRole, "1")

	if got, ok := config.Value(FieldName); !ok || got != "bench-unit" {
		t.Errorf("Value(name) = %q, %v; want bench-unit, true", got, ok)
	}
	if config.Len() != 2 {
		t.Errorf("Len = %d, want 2", config.Len())
	}

	present := config.Present()
	if len(present) != 2 || present[0] != FieldName || present[1] != FieldRole {
		t.Errorf("Present = %v, want [name role]", present)
	}
}
