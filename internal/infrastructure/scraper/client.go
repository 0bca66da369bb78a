package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"CampusEvents/internal/config"
	"CampusEvents/internal/domain"
	"CampusEvents/internal/ports"
)

// Client fetches the complete current post snapshot from the external
// scraping service. The service performs the actual scraping and
// returns the whole item set in one call; there is no pagination.
type Client struct {
	endpoint string
	apiToken string
	http     *http.Client
}

var _ ports.SnapshotSource = (*Client)(nil)

// NewClient builds a snapshot client from configuration.
func NewClient(cfg config.ScraperConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// snapshotItem mirrors the provider payload. Every identifying field is
// optional upstream; id derivation happens in the sync use case.
type snapshotItem struct {
	ID         string `json:"id"`
	ShortCode  string `json:"shortCode"`
	URL        string `json:"url"`
	DisplayURL string `json:"displayUrl"`
	ImageURL   string `json:"image_url"`
	Caption    string `json:"caption"`
	Timestamp  string `json:"timestamp"`
}

// FetchSnapshot performs the single snapshot call. Any non-success
// status is a hard failure for the whole sync.
func (c *Client) FetchSnapshot(ctx context.Context) ([]domain.SourceItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scraper error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	items, err := decodeSnapshot(resp.Body)
	if err != nil {
		return nil, err
	}

	converted := make([]domain.SourceItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, toSourceItem(item))
	}
	return converted, nil
}

// decodeSnapshot accepts both provider payload revisions: an object
// wrapping a "posts" array, or a bare top-level array.
func decodeSnapshot(body io.Reader) ([]snapshotItem, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}

	var wrapper struct {
		Posts []snapshotItem `json:"posts"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Posts != nil {
		return wrapper.Posts, nil
	}

	var bare []snapshotItem
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return bare, nil
}

func toSourceItem(item snapshotItem) domain.SourceItem {
	imageURL := item.DisplayURL
	if imageURL == "" {
		imageURL = item.ImageURL
	}

	return domain.SourceItem{
		ID:        item.ID,
		ShortCode: item.ShortCode,
		URL:       item.URL,
		ImageURL:  imageURL,
		Caption:   flattenCaption(item.Caption),
		Timestamp: parseTimestamp(item.Timestamp),
	}
}

// flattenCaption strips the markup some provider revisions embed in
// captions, leaving plain text for prompts and descriptions.
func flattenCaption(caption string) string {
	if !strings.Contains(caption, "<") {
		return strings.TrimSpace(caption)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(caption))
	if err != nil {
		return strings.TrimSpace(caption)
	}
	return strings.TrimSpace(doc.Text())
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
