package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultOTPLength = 6

	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== OTP ====================

// GenerateOTP returns a numeric code of exactly length digits, each drawn
// uniformly from crypto/rand. A non-positive length falls back to six digits.
func GenerateOTP(length int) (string, error) {
	return generateOTPFrom(rand.Reader, length)
}

func generateOTPFrom(r io.Reader, length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}

	ten := big.NewInt(10)

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(r, ten)
		if err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// ==================== PASSWORD ====================

// GeneratePassword returns a random password drawn from an unambiguous alphabet.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = 8
	}

	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}

	return string(out), nil
}
