package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	in := []interface{}{"provider", "anthropic", "api_key", "sk-123", "Authorization", "Bearer x", "dangling"}
	out := sanitizeKVs(in)

	if len(out) != len(in) {
		t.Fatalf("length changed: got=%d want=%d", len(out), len(in))
	}
	if out[1] != "anthropic" {
		t.Fatalf("provider should pass through: got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: got=%v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("authorization not redacted: got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing value dropped: got=%v", out[6])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Info("hello", "mode", mode)
	}
}
