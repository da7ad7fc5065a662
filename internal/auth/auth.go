// Package auth produces and checks account credentials. A credential is a
// one-way salted SHA-256 verifier stored on the account record; the
// plaintext password is hashed at the boundary and never retained.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const saltBytes = 16

// NewCredential derives a verifier from a plaintext password. The format is
// "<salt-hex>$<digest-hex>" with digest = SHA-256(salt || password).
func NewCredential(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest(salt, password)), nil
}

// Verify reports whether the password matches the stored credential. The
// digest comparison is constant time.
func Verify(credential, password string) bool {
	saltHex, want, ok := strings.Cut(credential, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	got := hex.EncodeToString(digest(salt, password))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func digest(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}
