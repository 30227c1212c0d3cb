package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "nodeA", false},
		{"valid object label", "list_head@0x4010", false},
		{"valid member label", "next  0x0000000000004010", false},
		{"valid with dot", "a.b", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidateTypeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "list_head", false},
		{"struct prefix", "struct list_head", false},
		{"pointer", "node_t *", false},
		{"double pointer", "node_t **", false},
		{"surrounding spaces", "  node_t  ", false},
		{"cpp scoped", "ns::node", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"leading digit", "1node", true},
		{"semicolon", "node;rm", true},
		{"space inside", "node t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTypeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTypeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
