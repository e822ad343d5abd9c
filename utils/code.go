package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// serviceStartCodeSpan covers the 7-digit range 1000000..9999999.
var serviceStartCodeSpan = big.NewInt(9000000)

// NewServiceStartCode generates the random 7-digit verification code written
// at settler-selection time. Customer and settler both confirm it before the
// service goes active.
func NewServiceStartCode() (string, error) {
	n, err := rand.Int(rand.Reader, serviceStartCodeSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate service start code: %w", err)
	}
	return fmt.Sprintf("%07d", n.Int64()+1000000), nil
}
