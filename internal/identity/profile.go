package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-gameportal/pkg/fetch"
	"github.com/goliatone/go-gameportal/pkg/session"
)

// ErrNoSession is returned by profile calls made without a signed-in session.
var ErrNoSession = errors.New("identity: a signed-in session is required")

// Profile is the per-account document stored alongside the credentials:
// portal-level data the auth endpoints do not carry.
type Profile struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveProfile writes the profile document for the session's account. The
// backend authorises the write against the bearer token.
func (c *Client) SaveProfile(ctx context.Context, s *session.Session, profile Profile) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	if s == nil || s.UserID == "" || s.IDToken == "" {
		return ErrNoSession
	}

	req := c.postJSON(c.endpoint("profiles/"+s.UserID), profile)
	req.Header.Set("Authorization", "Bearer "+s.IDToken)
	if err := c.fetcher.DoJSON(ctx, req, nil); err != nil {
		return fmt.Errorf("identity: save profile: %w", err)
	}
	return nil
}

// Profile reads the profile document for the session's account.
func (c *Client) Profile(ctx context.Context, s *session.Session) (Profile, error) {
	if c.baseURL == "" {
		return Profile{}, ErrNotConfigured
	}
	if s == nil || s.UserID == "" || s.IDToken == "" {
		return Profile{}, ErrNoSession
	}

	req := fetch.Request{
		Method: http.MethodGet,
		URL:    c.endpoint("profiles/" + s.UserID),
		Header: http.Header{"Authorization": []string{"Bearer " + s.IDToken}},
	}
	var profile Profile
	if err := c.fetcher.DoJSON(ctx, req, &profile); err != nil {
		return Profile{}, fmt.Errorf("identity: load profile: %w", err)
	}
	return profile, nil
}
