package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-gameportal/pkg/fetch"
	"github.com/goliatone/go-gameportal/pkg/session"
)

func fakeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	if err != nil {
		t.Fatalf("encode header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("encode claims: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func newBackend(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(server.URL, "test-key",
		WithFetcher(fetch.New(fetch.WithPolicy(fetch.Policy{MaxAttempts: 1}))),
		WithClock(func() time.Time { return time.Unix(1_000_000, 0) }),
	)
	return client, server
}

func TestSignInBuildsSession(t *testing.T) {
	var gotPath, gotKey string
	client, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "player@example.com" {
			http.Error(w, "wrong email", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"localId":      "user-1",
			"email":        "player@example.com",
			"displayName":  "Player One",
			"idToken":      "id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
		})
	})

	s, err := client.SignIn(context.Background(), "player@example.com", "hunter22")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if gotPath != "/v1/accounts:signInWithPassword" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key not sent: %q", gotKey)
	}
	if s.UserID != "user-1" || s.DisplayName != "Player One" {
		t.Fatalf("unexpected session: %+v", s)
	}
	want := time.Unix(1_000_000, 0).Add(time.Hour)
	if !s.ExpiresAt.Equal(want) {
		t.Fatalf("expiry mismatch: %v", s.ExpiresAt)
	}
}

func TestSignUpFillsProfileFromClaims(t *testing.T) {
	token := fakeToken(t, map[string]any{
		"sub":   "user-9",
		"email": "claims@example.com",
		"name":  "From Claims",
		"exp":   float64(2_000_000),
	})
	client, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"idToken":      token,
			"refreshToken": "refresh-token",
		})
	})

	s, err := client.SignUp(context.Background(), "claims@example.com", "hunter22", "")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if s.UserID != "user-9" {
		t.Fatalf("user id not read from claims: %q", s.UserID)
	}
	if s.DisplayName != "From Claims" {
		t.Fatalf("display name not read from claims: %q", s.DisplayName)
	}
	if !s.ExpiresAt.Equal(time.Unix(2_000_000, 0)) {
		t.Fatalf("expiry not read from exp claim: %v", s.ExpiresAt)
	}
}

func TestRefreshKeepsProfile(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/token" {
			http.Error(w, "wrong path", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"user_id":       "user-1",
			"id_token":      "fresh-token",
			"refresh_token": "fresh-refresh",
			"expires_in":    "3600",
		})
	})

	previous := &session.Session{
		UserID:       "user-1",
		Email:        "player@example.com",
		DisplayName:  "Player One",
		RefreshToken: "old-refresh",
	}
	s, err := client.Refresh(context.Background(), previous)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.IDToken != "fresh-token" || s.RefreshToken != "fresh-refresh" {
		t.Fatalf("tokens not rotated: %+v", s)
	}
	if s.Email != "player@example.com" || s.DisplayName != "Player One" {
		t.Fatalf("profile fields lost: %+v", s)
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	client := New("http://127.0.0.1:1", "")
	if _, err := client.Refresh(context.Background(), nil); err == nil {
		t.Fatal("expected error without refresh token")
	}
}

func TestAuthStateListeners(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"localId":      "user-1",
			"email":        "player@example.com",
			"idToken":      "id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
		})
	})

	var events []*session.Session
	client.OnAuthStateChanged(func(s *session.Session) {
		events = append(events, s)
	})

	signedIn, err := client.SignIn(context.Background(), "player@example.com", "hunter22")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	client.SignOut(context.Background(), signedIn)

	if len(events) != 2 {
		t.Fatalf("expected 2 auth events, got %d", len(events))
	}
	if events[0] == nil || events[0].UserID != "user-1" {
		t.Fatalf("first event should carry the session: %+v", events[0])
	}
	if events[1] != nil {
		t.Fatal("sign-out event should be nil")
	}
}

func TestSignInPropagatesFetchError(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	if _, err := client.SignIn(context.Background(), "a@b.co", "bad"); err == nil {
		t.Fatal("expected error for rejected credentials")
	}
}
