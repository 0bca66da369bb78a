package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CampusEvents/internal/config"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.ImagesConfig{RequestsPerSecond: 100, Burst: 10})
	data, err := fetcher.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestFetchDeadLink(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fetcher := NewFetcher(config.ImagesConfig{RequestsPerSecond: 100, Burst: 10})
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestFetchHonorsContextWhileWaiting(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Burst 1 with an immediately canceled context: the limiter wait
	// must surface the cancellation instead of blocking.
	fetcher := NewFetcher(config.ImagesConfig{RequestsPerSecond: 0.001, Burst: 1})
	if _, err := fetcher.Fetch(ctx, "http://unreachable.invalid"); err == nil {
		t.Fatalf("canceled context must abort the fetch")
	}
}
