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
		{"simple", "menu", false},
		{"with dash", "file-menu", false},
		{"with underscore", "_inner", false},
		{"with dot and colon", "menu.item:1", false},

		{"empty", "", true},
		{"too long", "a" + strings.Repeat("b", 200), true},
		{"leading digit", "1menu", true},
		{"space", "file menu", true},
		{"slash", "file/menu", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("trigger", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}
