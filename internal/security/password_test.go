package security

import (
	"bytes"
	"testing"
)

func TestPasswordHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	ok, err := VerifyPassword("secret1", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatalf("correct password rejected")
	}

	ok, err = VerifyPassword("secret2", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if ok {
		t.Fatalf("wrong password accepted")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	second, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPassword("secret1", []byte("not-a-hash")); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}
