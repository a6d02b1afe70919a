package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionExpired     = errors.New("auth: session expired")
)

// userDocument is the stored shape of a user: the public fields plus
// the password hash, which never leaves this package.
type userDocument struct {
	domain.User
	Password PasswordHash `json:"password"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User, password string) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	data, err := json.Marshal(userDocument{User: *user, Password: hash})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, created_at, data) VALUES ($1, $2, $3, $4)
	`, user.ID, user.Email, user.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) getUserByEmail(ctx context.Context, email string) (*userDocument, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM users WHERE email = $1
	`, email).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	doc := &userDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return doc, nil
}

// Login checks the credentials, sweeps expired sessions and creates a
// fresh one. The returned token goes into the session cookie.
func (r *Repository) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	doc, err := r.getUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if doc == nil || !VerifyPassword(password, doc.Password) {
		return nil, "", ErrInvalidCredentials
	}

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE expires_at < NOW()
	`); err != nil {
		return nil, "", fmt.Errorf("sweep expired sessions: %w", err)
	}

	token, tokenHash, err := NewSessionToken()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, tokenHash, doc.ID, now.Add(SessionTTL), now); err != nil {
		return nil, "", fmt.Errorf("insert session: %w", err)
	}

	user := doc.User
	return &user, token, nil
}

func (r *Repository) Logout(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE token_hash = $1
	`, HashToken(token))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserForToken resolves a session token to its user, rejecting expired
// sessions.
func (r *Repository) UserForToken(ctx context.Context, token string) (*domain.User, error) {
	var userID string
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, expires_at FROM sessions WHERE token_hash = $1
	`, HashToken(token)).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(expiresAt) {
		return nil, ErrSessionExpired
	}

	var data []byte
	err = r.db.QueryRowContext(ctx, `
		SELECT data FROM users WHERE id = $1
	`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	doc := &userDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	user := doc.User
	return &user, nil
}
