package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidAction, "unknown action: %s", "drag")

	if err.Code != ErrCodeInvalidAction {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidAction)
	}

	if err.Message != "unknown action: drag" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown action: drag")
	}

	expected := "INVALID_ACTION: unknown action: drag"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("toml: line 3: expected '='")
	err := Wrap(ErrCodeInvalidScenario, cause, "decode scenario")

	if err.Code != ErrCodeInvalidScenario {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidScenario)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidPlacement, "test"),
			code:     ErrCodeInvalidPlacement,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidPlacement, "test"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInvalidScenario, New(ErrCodeInvalidAction, "inner"), "outer"),
			code:     ErrCodeInvalidScenario,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidStretch, "test"), ErrCodeInvalidStretch},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	t.Run("all nil", func(t *testing.T) {
		if err := Join(ErrCodeInvalidScenario, nil, nil); err != nil {
			t.Errorf("Join() = %v, want nil", err)
		}
	})

	t.Run("single with same code is returned as-is", func(t *testing.T) {
		inner := New(ErrCodeInvalidScenario, "bad step")
		if err := Join(ErrCodeInvalidScenario, nil, inner); err != inner {
			t.Errorf("Join() = %v, want %v", err, inner)
		}
	})

	t.Run("several are wrapped", func(t *testing.T) {
		a := New(ErrCodeInvalidAction, "a")
		b := New(ErrCodeInvalidName, "b")
		err := Join(ErrCodeInvalidScenario, a, b)
		if !Is(err, ErrCodeInvalidScenario) {
			t.Errorf("Join() code = %v, want %v", GetCode(err), ErrCodeInvalidScenario)
		}
		if !errors.Is(err, a) || !errors.Is(err, b) {
			t.Error("Join() should keep both causes in the chain")
		}
	})
}
