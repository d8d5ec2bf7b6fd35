package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("Hash equals plaintext")
	}

	if err := VerifyPassword(hash, "correct-horse-battery"); err != nil {
		t.Errorf("VerifyPassword rejected correct password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Wrong password: got %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("Expected short password to be rejected")
	}
}
