package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GatewaySMSSender delivers texts through a 2factor-style HTTP SMS gateway:
// GET <base>/<api-key>/SMS/<mobile>/<message> returning {"Status": "Success"}.
type GatewaySMSSender struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGatewaySMSSender(baseURL, apiKey string) *GatewaySMSSender {
	return &GatewaySMSSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayResponse struct {
	Status  string `json:"Status"`
	Details string `json:"Details"`
}

func (g *GatewaySMSSender) SendSMS(ctx context.Context, mobile, message string) error {
	endpoint := fmt.Sprintf("%s/%s/SMS/%s/%s",
		g.baseURL, g.apiKey, url.PathEscape(mobile), url.PathEscape(message))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("sms gateway decode: %w", err)
	}
	if out.Status != "Success" {
		return fmt.Errorf("sms gateway rejected message: %s", out.Details)
	}
	return nil
}
