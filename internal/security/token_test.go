package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	token, err := svc.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	accountID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if accountID != "acct-123" {
		t.Fatalf("account id mismatch: got %q want %q", accountID, "acct-123")
	}
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", -time.Second)

	token, err := svc.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenTamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService("right-secret", time.Hour)
	verifier := NewTokenService("wrong-secret", time.Hour)

	token, err := issuer.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	for _, token := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}
