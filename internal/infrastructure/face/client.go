// Package face implements the embedding-extractor collaborator over HTTP.
//
// The extractor is treated as a pure function: image bytes in, zero or more
// detections out. Model loading happens inside the extractor process; this
// client only warms it up once at startup so the first live request never
// races a cold model.
package face

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

const (
	readyPath      = "/v1/ready"
	embeddingsPath = "/v1/embeddings"
	defaultTimeout = 30 * time.Second
)

// Client talks to the embedding-extractor service.
type Client struct {
	baseURL string
	http    *http.Client
	ready   atomic.Bool
}

// NewClient creates a Client for the extractor at baseURL. Timeout bounds a
// single extraction call; extraction is CPU/GPU-bound and potentially slow, so
// callers are expected to pass contexts with their own deadlines as well.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// EnsureReady blocks until the extractor reports its model is loaded.
// Idempotent: once ready, subsequent calls return immediately.
func (c *Client) EnsureReady(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+readyPath, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: extractor not ready (status %d)", domain.ErrExtractorFailure, resp.StatusCode)
	}

	c.ready.Store(true)
	return nil
}

type extractResponse struct {
	Detections []ports.Detection `json:"detections"`
}

// Extract submits the image and returns all detected faces. An empty slice
// means no face was found; that is an outcome, not an error.
func (c *Client) Extract(ctx context.Context, image []byte) ([]ports.Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+embeddingsPath, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrExtractorFailure, resp.StatusCode, body)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrExtractorFailure, err)
	}

	return out.Detections, nil
}
