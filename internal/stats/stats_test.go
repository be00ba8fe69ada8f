package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-gameportal/pkg/fetch"
)

func singleAttemptFetcher() *fetch.Client {
	return fetch.New(fetch.WithPolicy(fetch.Policy{MaxAttempts: 1}))
}

func TestPollUpdatesCurrentAndObservers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"online": 512}`))
	}))
	defer server.Close()

	poller := New(server.URL, WithFetcher(singleAttemptFetcher()))

	if _, ok := poller.Current(); ok {
		t.Fatal("counter should be unset before the first poll")
	}

	var got []int
	poller.Subscribe(func(online int) { got = append(got, online) })

	poller.Poll(context.Background())

	online, ok := poller.Current()
	if !ok || online != 512 {
		t.Fatalf("current = %d, %t", online, ok)
	}
	if len(got) != 1 || got[0] != 512 {
		t.Fatalf("observer calls = %v", got)
	}

	// A late subscriber receives the cached value immediately.
	var late int
	poller.Subscribe(func(online int) { late = online })
	if late != 512 {
		t.Fatalf("late subscriber got %d", late)
	}
}

func TestPollFailureKeepsPreviousValue(t *testing.T) {
	t.Parallel()

	var fail bool
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"online": 100}`))
	}))
	defer server.Close()

	poller := New(server.URL, WithFetcher(singleAttemptFetcher()))
	poller.Poll(context.Background())

	mu.Lock()
	fail = true
	mu.Unlock()
	poller.Poll(context.Background())

	online, ok := poller.Current()
	if !ok || online != 100 {
		t.Fatalf("failure should keep previous value, got %d, %t", online, ok)
	}
}

func TestOverlappingPollsAreDropped(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var hits int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		<-release
		_, _ = w.Write([]byte(`{"online": 1}`))
	}))
	defer server.Close()

	poller := New(server.URL, WithFetcher(singleAttemptFetcher()))

	done := make(chan struct{})
	go func() {
		poller.Poll(context.Background())
		close(done)
	}()

	// Wait for the first poll to be in flight, then attempt another.
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		started := hits > 0
		mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first poll never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	poller.Poll(context.Background())
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("overlapping poll should be dropped, got %d requests", hits)
	}
}
