package auth

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	t.Run("verifies original password", func(t *testing.T) {
		if !VerifyPassword("correct horse battery staple", hash) {
			t.Error("expected password to verify")
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		if VerifyPassword("correct horse battery stapler", hash) {
			t.Error("expected wrong password to fail")
		}
	})

	t.Run("rejects tampered hash", func(t *testing.T) {
		tampered := hash
		tampered.Hash = tampered.Hash[:len(tampered.Hash)-2] + "00"
		if tampered.Hash != hash.Hash && VerifyPassword("correct horse battery staple", tampered) {
			t.Error("expected tampered hash to fail")
		}
	})

	t.Run("salts are unique per hash", func(t *testing.T) {
		other, err := HashPassword("correct horse battery staple")
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		if other.Salt == hash.Salt {
			t.Error("expected distinct salts")
		}
		if other.Hash == hash.Hash {
			t.Error("expected distinct hashes")
		}
	})
}

func TestNewSessionToken(t *testing.T) {
	token, tokenHash, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token))
	}
	if HashToken(token) != tokenHash {
		t.Error("expected token hash to match")
	}

	other, _, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if other == token {
		t.Error("expected distinct tokens")
	}
}
