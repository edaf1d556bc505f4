package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const VerificationCodeDigits = 6

var verificationCodeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode returns a zero-padded 6-digit numeric code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, verificationCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func IsWellFormedCode(code string) bool {
	if len(code) != VerificationCodeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
