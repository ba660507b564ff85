package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	shareCodeLength   = 6
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewShareCode returns a 6-character upper-case alphanumeric join code.
// Codes are not checked for collisions.
func NewShareCode() (string, error) {
	buf := make([]byte, shareCodeLength)
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate share code: %w", err)
		}
		buf[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
