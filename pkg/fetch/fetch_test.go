package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gameportal/pkg/notify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy(attempts int) *Policy {
	return &Policy{
		MaxAttempts:       attempts,
		BaseDelay:         time.Millisecond,
		PerAttemptTimeout: 2 * time.Second,
	}
}

func TestDoJSON_SucceedsFirstAttempt(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"playersOnline": 42}`))
	}))
	defer server.Close()

	recorder := &notify.Recorder{}
	client := New(WithLogger(quietLogger()), WithNotifier(recorder))

	var out struct {
		PlayersOnline int `json:"playersOnline"`
	}
	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: testPolicy(3)}, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.PlayersOnline != 42 {
		t.Fatalf("decoded payload mismatch: got %d", out.PlayersOnline)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
	if entries := recorder.Entries(); len(entries) != 0 {
		t.Fatalf("expected no notifications on success, got %+v", entries)
	}
}

func TestDoJSON_RetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	recorder := &notify.Recorder{}
	client := New(WithLogger(quietLogger()), WithNotifier(recorder))

	var out map[string]any
	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: testPolicy(3)}, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected success on attempt 3, got %d attempts", got)
	}
	if entries := recorder.Entries(); len(entries) != 0 {
		t.Fatalf("expected no notifications after eventual success, got %+v", entries)
	}
}

func TestDoJSON_ExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	recorder := &notify.Recorder{}
	client := New(WithLogger(quietLogger()), WithNotifier(recorder))

	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: testPolicy(4)}, nil)
	if err == nil {
		t.Fatal("expected terminal error")
	}
	if got := hits.Load(); got != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", got)
	}

	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
	if ferr.Kind != KindHTTPStatus {
		t.Fatalf("kind mismatch: got %s", ferr.Kind)
	}
	if ferr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status code mismatch: got %d", ferr.StatusCode)
	}
	if ferr.Attempts != 4 {
		t.Fatalf("attempts mismatch: got %d", ferr.Attempts)
	}
	if entries := recorder.Entries(); len(entries) != 1 || entries[0].Level != notify.LevelError {
		t.Fatalf("expected a single error notification, got %+v", entries)
	}
}

func TestDoJSON_BackoffIsLinear(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(WithLogger(quietLogger()))

	var delays []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	policy := &Policy{MaxAttempts: 3, BaseDelay: time.Second, PerAttemptTimeout: time.Second}
	_ = client.DoJSON(context.Background(), Request{URL: server.URL, Policy: policy}, nil)

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if diff := cmp.Diff(want, delays); diff != "" {
		t.Fatalf("backoff delays mismatch (-want +got):\n%s", diff)
	}
}

func TestDoJSON_SingleAttemptSkipsBackoff(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithLogger(quietLogger()))

	var sleeps int
	client.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	policy := &Policy{MaxAttempts: 1, BaseDelay: time.Second, PerAttemptTimeout: time.Second}
	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: policy}, nil)
	if err == nil {
		t.Fatal("expected terminal error")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
	if sleeps != 0 {
		t.Fatalf("expected no inter-attempt delay, got %d sleeps", sleeps)
	}
}

func TestDoJSON_ClassifiesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := New(WithLogger(quietLogger()))

	policy := &Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, PerAttemptTimeout: 20 * time.Millisecond}
	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: policy}, nil)

	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if ferr.Kind != KindTimeout {
		t.Fatalf("kind mismatch: want %s, got %s", KindTimeout, ferr.Kind)
	}
}

func TestDoJSON_ClassifiesDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := New(WithLogger(quietLogger()))

	var out map[string]any
	err := client.DoJSON(context.Background(), Request{URL: server.URL, Policy: testPolicy(2)}, &out)

	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if ferr.Kind != KindDecode {
		t.Fatalf("kind mismatch: want %s, got %s", KindDecode, ferr.Kind)
	}
	if ferr.Attempts != 2 {
		t.Fatalf("decode failures should consume the retry budget, got %d attempts", ferr.Attempts)
	}
}

func TestDoJSON_ClassifiesOffline(t *testing.T) {
	client := New(
		WithLogger(quietLogger()),
		WithOfflineProbe(func() bool { return true }),
	)

	policy := &Policy{MaxAttempts: 1, BaseDelay: 0, PerAttemptTimeout: time.Second}
	err := client.DoJSON(context.Background(), Request{URL: "http://127.0.0.1:1/stats", Policy: policy}, nil)

	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if ferr.Kind != KindOffline {
		t.Fatalf("kind mismatch: want %s, got %s", KindOffline, ferr.Kind)
	}
}

func TestDo_StreamsSuccessfulBody(t *testing.T) {
	payload := "binary-client-payload"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer server.Close()

	client := New(WithLogger(quietLogger()))

	resp, err := client.Do(context.Background(), Request{URL: server.URL, Policy: testPolicy(2)})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != payload {
		t.Fatalf("body mismatch: got %q", body)
	}
}

func TestPolicyNormalized(t *testing.T) {
	cases := []struct {
		name string
		in   Policy
		want Policy
	}{
		{
			name: "zero value uses defaults",
			in:   Policy{},
			want: DefaultPolicy,
		},
		{
			name: "attempts floored at one",
			in:   Policy{MaxAttempts: -2, BaseDelay: time.Second, PerAttemptTimeout: time.Second},
			want: Policy{MaxAttempts: 1, BaseDelay: time.Second, PerAttemptTimeout: time.Second},
		},
		{
			name: "negative durations cleared",
			in:   Policy{MaxAttempts: 2, BaseDelay: -time.Second, PerAttemptTimeout: -time.Second},
			want: Policy{MaxAttempts: 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.in.normalized()); diff != "" {
				t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
