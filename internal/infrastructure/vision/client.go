package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CampusEvents/internal/config"
	"CampusEvents/internal/domain"
	"CampusEvents/internal/ports"
)

// Client talks to the hosted vision-language inference API. The
// response shape is not a stable contract: the answer text moves
// between fields across provider revisions, so the decoded
// domain.ModelOutput keeps all known variants and lets the caller
// probe them.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ ports.ExtractionModel = (*Client)(nil)

// NewClient builds a reusable inference client from configuration.
func NewClient(cfg config.VisionConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
}

// Run submits the image and instruction prompt for extraction.
func (c *Client) Run(ctx context.Context, image []byte, prompt string) (domain.ModelOutput, error) {
	if c.endpoint == "" || c.model == "" {
		return domain.ModelOutput{}, fmt.Errorf("vision client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"image":  base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return domain.ModelOutput{}, fmt.Errorf("marshal inference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ModelOutput{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ModelOutput{}, fmt.Errorf("run inference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ModelOutput{}, fmt.Errorf("inference error: %s", resp.Status)
	}

	var output domain.ModelOutput
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		return domain.ModelOutput{}, fmt.Errorf("decode inference response: %w", err)
	}

	return output, nil
}
