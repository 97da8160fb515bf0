package security

import (
	"strconv"
	"testing"
	"time"
)

func TestGenerateOTPRange(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		code, _, err := GenerateOTP(10 * time.Minute)
		if err != nil {
			t.Fatalf("GenerateOTP error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", n)
		}
	}
}

func TestGenerateOTPExpiry(t *testing.T) {
	t.Parallel()

	before := time.Now()
	_, expiresAt, err := GenerateOTP(10 * time.Minute)
	if err != nil {
		t.Fatalf("GenerateOTP error: %v", err)
	}
	after := time.Now()

	if expiresAt.Before(before.Add(10 * time.Minute)) {
		t.Fatalf("expiry %v earlier than issuance + 10m", expiresAt)
	}
	if expiresAt.After(after.Add(10 * time.Minute)) {
		t.Fatalf("expiry %v later than issuance + 10m", expiresAt)
	}
}
