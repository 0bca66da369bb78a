package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"CampusEvents/internal/config"
	"CampusEvents/internal/ports"
)

// ErrUnexpectedStatus marks a non-success response for an image URL.
// Callers treat it differently from transport errors: a dead link is
// skipped for good, while a transport error is retried on a later run.
var ErrUnexpectedStatus = errors.New("unexpected image status")

// Fetcher downloads post images, throttled so a large pending batch
// does not hammer the image host.
type Fetcher struct {
	http    *http.Client
	limiter *rate.Limiter
}

var _ ports.ImageFetcher = (*Fetcher)(nil)

// NewFetcher builds a rate-limited image fetcher from configuration.
func NewFetcher(cfg config.ImagesConfig) *Fetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Fetcher{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch downloads the raw bytes behind url. A non-2xx status returns
// ErrUnexpectedStatus wrapped with the status text.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}

	return data, nil
}
