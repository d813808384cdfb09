package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes        = 16
	pbkdf2Iterations = 10_000
	digestBytes      = 32
)

// GenerateSalt returns a fresh per-user salt.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives the stored digest from the plaintext password, the
// per-user salt and the server-wide pepper. The derivation is deterministic:
// login recomputes it with the stored salt and compares digests directly,
// matching the externally observable behavior of the service. Switching to a
// constant-time compare would be a hardening opportunity, not a behavior
// change.
func HashPassword(password, salt, pepper string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	if salt == "" {
		return "", errors.New("salt is empty")
	}
	key := pbkdf2.Key([]byte(password+pepper), []byte(salt), pbkdf2Iterations, digestBytes, sha256.New)
	return hex.EncodeToString(key), nil
}
