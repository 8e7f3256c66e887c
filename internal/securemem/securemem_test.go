package securemem

import "testing"

func TestNewAndReveal(t *testing.T) {
	s := New("gsk-test-key-123")
	defer s.Destroy()

	if s.Reveal() != "gsk-test-key-123" {
		t.Errorf("expected plaintext back, got %q", s.Reveal())
	}
	if s.IsEmpty() {
		t.Error("secret with a value should not be empty")
	}
}

func TestEmptySecret(t *testing.T) {
	s := New("")

	if !s.IsEmpty() {
		t.Error("empty plaintext should yield an empty secret")
	}
	if s.Reveal() != "" {
		t.Errorf("empty secret revealed %q", s.Reveal())
	}
	if !s.Equal("") {
		t.Error("empty secret should equal the empty string")
	}
}

func TestEqual(t *testing.T) {
	s := New("secret-value")
	defer s.Destroy()

	if !s.Equal("secret-value") {
		t.Error("Equal should match the stored plaintext")
	}
	if s.Equal("other-value") {
		t.Error("Equal should reject a different plaintext")
	}
}

func TestDestroyedSecretIsEmpty(t *testing.T) {
	s := New("ephemeral")
	s.Destroy()

	if !s.IsEmpty() {
		t.Error("destroyed secret should be empty")
	}
	if s.Reveal() != "" {
		t.Error("destroyed secret should reveal nothing")
	}

	// Destroy is idempotent.
	s.Destroy()
}

func TestNilSecret(t *testing.T) {
	var s *Secret

	if !s.IsEmpty() {
		t.Error("nil secret should be empty")
	}
	if s.Reveal() != "" {
		t.Error("nil secret should reveal nothing")
	}
	s.Destroy()
}
