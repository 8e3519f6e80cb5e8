package utils

import (
	"crypto/rand"
	"math/big"
)

// otpSpan covers the 6-digit range [100000, 999999].
const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP returns a uniformly random 6-digit pickup code. The code is
// the shared secret between volunteer and donor proving physical handoff,
// so it comes from crypto/rand rather than math/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return big.NewInt(otpMin + n.Int64()).String(), nil
}
