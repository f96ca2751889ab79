package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

// HTTPProvider implements the stats.Provider interface for the collector API,
// which serves every stored daily record from GET /global-stats.
type HTTPProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHTTPProvider(client *http.Client, baseURL string, backoff BackoffConfig) *HTTPProvider {
	return &HTTPProvider{
		name:    "global-stats-api",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newBreaker("global-stats-api"),
	}
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) FetchAll(ctx context.Context) ([]stats.DailyStatRecord, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("global-stats api base url is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/global-stats", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Result []stats.DailyStatRecord `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode global stats: %w", err)
	}

	return payload.Result, nil
}
