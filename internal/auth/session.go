package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionTTL bounds how long a login stays valid.
const SessionTTL = 24 * time.Hour

// CookieName is the session cookie the middleware reads.
const CookieName = "session"

// NewSessionToken returns the raw token handed to the client and the
// hash stored server side. The raw token never touches the database.
func NewSessionToken() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
