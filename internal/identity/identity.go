// Package identity talks to the account backend: sign-up, sign-in, token
// refresh, and sign-out. Sessions it produces are persisted by the caller via
// pkg/session.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt"

	"github.com/goliatone/go-gameportal/pkg/fetch"
	"github.com/goliatone/go-gameportal/pkg/session"
)

// ErrNotConfigured is returned when the client has no backend URL.
var ErrNotConfigured = errors.New("identity: backend url is not configured")

// Listener receives the session after every auth state change. A nil session
// means signed out.
type Listener func(*session.Session)

// Option configures the Client.
type Option func(*Client)

// WithFetcher injects the network client used for backend calls.
func WithFetcher(client *fetch.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.fetcher = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now for expiry calculations in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client is the account backend client.
type Client struct {
	baseURL string
	apiKey  string
	fetcher *fetch.Client
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	listeners []Listener
}

// New constructs a Client for the given backend base URL.
func New(baseURL, apiKey string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		fetcher: fetch.New(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// OnAuthStateChanged registers a listener invoked after sign-in, refresh, and
// sign-out.
func (c *Client) OnAuthStateChanged(fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Client) notify(s *session.Session) {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignUp creates an account and returns the authenticated session.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*session.Session, error) {
	payload := map[string]string{
		"email":             email,
		"password":          password,
		"returnSecureToken": "true",
	}
	if displayName != "" {
		payload["displayName"] = displayName
	}

	out, err := c.call(ctx, "accounts:signUp", payload)
	if err != nil {
		return nil, err
	}
	s := c.sessionFrom(out)
	c.notify(s)
	return s, nil
}

// SignIn authenticates an existing account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	out, err := c.call(ctx, "accounts:signInWithPassword", map[string]string{
		"email":             email,
		"password":          password,
		"returnSecureToken": "true",
	})
	if err != nil {
		return nil, err
	}
	s := c.sessionFrom(out)
	c.notify(s)
	return s, nil
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh exchanges a refresh token for fresh credentials. The previous
// session supplies profile fields the token endpoint does not return.
func (c *Client) Refresh(ctx context.Context, previous *session.Session) (*session.Session, error) {
	if previous == nil || previous.RefreshToken == "" {
		return nil, errors.New("identity: no refresh token")
	}
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var out refreshResponse
	err := c.fetcher.DoJSON(ctx, c.postJSON(c.endpoint("token"), map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": previous.RefreshToken,
	}), &out)
	if err != nil {
		return nil, fmt.Errorf("identity: refresh: %w", err)
	}

	s := &session.Session{
		UserID:       firstNonEmpty(out.UserID, previous.UserID),
		Email:        previous.Email,
		DisplayName:  previous.DisplayName,
		IDToken:      out.IDToken,
		RefreshToken: firstNonEmpty(out.RefreshToken, previous.RefreshToken),
		ExpiresAt:    c.expiry(out.IDToken, out.ExpiresIn),
	}
	c.notify(s)
	return s, nil
}

// SignOut drops server-side state if the backend supports it and always
// reports signed-out to listeners. Network failures are logged, not
// propagated, so a dead backend cannot trap the user in a session.
func (c *Client) SignOut(ctx context.Context, current *session.Session) {
	if current != nil && current.IDToken != "" && c.baseURL != "" {
		err := c.fetcher.DoJSON(ctx, c.postJSON(c.endpoint("accounts:signOut"), map[string]string{
			"idToken": current.IDToken,
		}), nil)
		if err != nil {
			c.logger.WarnContext(ctx, "identity sign-out call failed", "error", err)
		}
	}
	c.notify(nil)
}

func (c *Client) call(ctx context.Context, action string, payload map[string]string) (*credentialsResponse, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var out credentialsResponse
	err := c.fetcher.DoJSON(ctx, c.postJSON(c.endpoint(action), payload), &out)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", action, err)
	}
	return &out, nil
}

// postJSON builds a POST request with a JSON-encoded body.
func (c *Client) postJSON(url string, payload any) fetch.Request {
	body, err := json.Marshal(payload)
	if err != nil {
		// Payloads are string maps or plain structs; this cannot fail at
		// runtime.
		panic(fmt.Sprintf("identity: encode payload: %v", err))
	}
	return fetch.Request{
		Method: http.MethodPost,
		URL:    url,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}

func (c *Client) endpoint(action string) string {
	url := c.baseURL + "/v1/" + action
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	return url
}

func (c *Client) sessionFrom(out *credentialsResponse) *session.Session {
	s := &session.Session{
		UserID:       out.LocalID,
		Email:        out.Email,
		DisplayName:  out.DisplayName,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    c.expiry(out.IDToken, out.ExpiresIn),
	}
	fillFromClaims(s)
	return s
}

// expiry prefers the explicit expiresIn hint and falls back to the token's
// exp claim.
func (c *Client) expiry(idToken, expiresIn string) time.Time {
	if expiresIn != "" {
		if seconds, err := strconv.Atoi(expiresIn); err == nil && seconds > 0 {
			return c.now().Add(time.Duration(seconds) * time.Second)
		}
	}
	if exp, ok := tokenClaim(idToken, "exp"); ok {
		if unix, ok := exp.(float64); ok {
			return time.Unix(int64(unix), 0)
		}
	}
	return time.Time{}
}

// fillFromClaims backfills profile fields from the ID token when the backend
// response omits them. The token is not verified here: trust comes from the
// TLS channel to the backend that issued it.
func fillFromClaims(s *session.Session) {
	if s.IDToken == "" {
		return
	}
	if s.UserID == "" {
		if sub, ok := tokenClaim(s.IDToken, "sub"); ok {
			s.UserID, _ = sub.(string)
		}
	}
	if s.Email == "" {
		if email, ok := tokenClaim(s.IDToken, "email"); ok {
			s.Email, _ = email.(string)
		}
	}
	if s.DisplayName == "" {
		if name, ok := tokenClaim(s.IDToken, "name"); ok {
			s.DisplayName, _ = name.(string)
		}
	}
}

func tokenClaim(token, name string) (any, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	value, ok := claims[name]
	return value, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
