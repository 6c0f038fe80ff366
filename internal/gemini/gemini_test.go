package gemini

import "testing"

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error without an API key")
	}
	if _, err := New("key"); err != nil {
		t.Errorf("New: %v", err)
	}
}
