// Package session persists the signed-in account state between runs, the way
// a browser keeps its local storage. The default store is a single bbolt file
// under the user's data directory.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session has been saved yet.
var ErrNotFound = errors.New("session: not found")

// Session is the persisted slice of an authenticated account.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session's ID token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions plus a stable per-install identifier.
type Store interface {
	// Load returns the saved session or ErrNotFound.
	Load(ctx context.Context) (*Session, error)
	// Save overwrites the stored session.
	Save(ctx context.Context, session *Session) error
	// Clear removes the stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
	// InstallID returns the stable identifier for this install, generating
	// and persisting one on first use.
	InstallID(ctx context.Context) (string, error)
}
