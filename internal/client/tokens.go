package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quickDeliver/internal/storefront"
)

// storedToken is the on-disk form of a session.
type storedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
}

// TokenFile persists the bearer token between CLI invocations.
type TokenFile struct {
	Path string
}

// Load returns the saved session, or nil when there is none or it has expired.
func (f TokenFile) Load() (*storefront.Session, error) {
	if f.Path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var st storedToken
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	if st.AccessToken == "" || (!st.ExpiresAt.IsZero() && time.Now().After(st.ExpiresAt)) {
		return nil, nil
	}
	return &storefront.Session{UserID: st.UserID, Email: st.Email, Token: st.AccessToken}, nil
}

// Save writes the session with owner-only permissions.
func (f TokenFile) Save(s *storefront.Session, expiresAt time.Time) error {
	if f.Path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	b, err := json.Marshal(storedToken{AccessToken: s.Token, ExpiresAt: expiresAt, UserID: s.UserID, Email: s.Email})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

// Clear removes the saved session.
func (f TokenFile) Clear() error {
	if f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
