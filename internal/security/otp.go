package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a 6-digit numeric one-time code sampled uniformly over
// [100000, 999999] together with its expiry.
func GenerateOTP(ttl time.Duration) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+otpMin)
	return code, time.Now().Add(ttl), nil
}
