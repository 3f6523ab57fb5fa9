package utils

import (
	"crypto/rand"
	"math/big"
)

// Ambiguous characters (0/O, 1/I) are left out so the token survives
// being read off a phone screen at the counter.
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateToken returns a short random pickup token for order tracking.
func GenerateToken(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
