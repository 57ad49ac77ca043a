package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("expected hash to differ from plain text")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatalf("expected password to match its hash")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("expected wrong password to be rejected")
	}
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	if CheckPassword("", "anything") {
		t.Fatalf("expected empty hash to never match")
	}
}
