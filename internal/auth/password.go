package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 120_000
	saltLength       = 16
	keyLength        = 32
)

// PasswordHash is the stored credential: PBKDF2-SHA256 over a random
// per-user salt.
type PasswordHash struct {
	Salt       string `json:"salt"`
	Hash       string `json:"hash"`
	Iterations int    `json:"iterations"`
}

func HashPassword(password string) (PasswordHash, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return PasswordHash{}, fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha256.New)

	return PasswordHash{
		Salt:       hex.EncodeToString(salt),
		Hash:       hex.EncodeToString(key),
		Iterations: pbkdf2Iterations,
	}, nil
}

// VerifyPassword recomputes the hash with the stored salt and iteration
// count and compares in constant time.
func VerifyPassword(password string, stored PasswordHash) bool {
	salt, err := hex.DecodeString(stored.Salt)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(stored.Hash)
	if err != nil {
		return false
	}

	iterations := stored.Iterations
	if iterations <= 0 {
		iterations = pbkdf2Iterations
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
