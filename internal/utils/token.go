package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const resetTokenBytes = 20

// GenerateVerificationCode returns a uniformly distributed 6-digit numeric
// code. The code is short-lived and rate-limited at the transport layer, but
// a CSPRNG is used anyway since crypto/rand costs nothing here.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateResetToken returns a 160-bit hex-encoded token, unguessable by
// construction.
func GenerateResetToken() (string, error) {
	buffer := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
