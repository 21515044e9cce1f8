package session

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLength   = 24
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)

// generatePassword returns a cryptographically random VNC password. The
// alphabet excludes quotes and backslashes so the value can pass through
// the in-container shell command unescaped.
func generatePassword() string {
	buf := make([]byte, passwordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform RNG is broken.
			panic(err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf)
}
