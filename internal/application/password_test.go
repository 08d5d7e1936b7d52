package application

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		hash, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !strings.HasPrefix(hash, "$argon2id$") {
			t.Fatalf("unexpected hash format %q", hash)
		}
		if err := VerifyPassword(hash, "correct horse"); err != nil {
			t.Fatalf("expected match, got %v", err)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if err := VerifyPassword(hash, "battery staple"); err == nil {
			t.Fatalf("expected mismatch")
		}
	})

	t.Run("salts each hash", func(t *testing.T) {
		first, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		second, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if first == second {
			t.Fatalf("expected distinct salted hashes")
		}
	})

	t.Run("rejects a malformed hash", func(t *testing.T) {
		if err := VerifyPassword("not-a-hash", "whatever"); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Fatalf("expected ErrInvalidPasswordHash, got %v", err)
		}
	})
}
