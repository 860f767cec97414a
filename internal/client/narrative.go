package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultNarrativeTimeout = 5 * time.Second

// NarrativeClient talks to the external text-generation service. The
// call is an enhancement, never a dependency for correctness: callers
// must treat every error, timeout, or open breaker as "use the
// deterministic fallback" and never surface it to the end user.
type NarrativeClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*NarrativeResponse]
}

func NewNarrativeClient(baseURL string, timeout time.Duration) *NarrativeClient {
	if timeout <= 0 {
		timeout = defaultNarrativeTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[*NarrativeResponse](gobreaker.Settings{
		Name:    "narrative",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("narrative breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &NarrativeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// GenerateNarrative asks the external service to narrate the given
// statistics. Bounded by the client timeout and the circuit breaker.
func (c *NarrativeClient) GenerateNarrative(ctx context.Context, narrativeReq *NarrativeRequest) (*NarrativeResponse, error) {
	return c.breaker.Execute(func() (*NarrativeResponse, error) {
		return c.generate(ctx, narrativeReq)
	})
}

func (c *NarrativeClient) generate(ctx context.Context, narrativeReq *NarrativeRequest) (*NarrativeResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = "/api/v1/narratives"

	body, err := json.Marshal(narrativeReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	slog.Debug("requesting narrative",
		slog.String("url", u.String()),
		slog.Int("proposal_count", len(narrativeReq.Proposals)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to send request to narrative service",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("unexpected status code from narrative service",
			slog.String("url", u.String()),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var narrativeResp NarrativeResponse
	if err := json.NewDecoder(resp.Body).Decode(&narrativeResp); err != nil {
		slog.Warn("failed to decode response from narrative service",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if narrativeResp.Motivation == "" && len(narrativeResp.Suggestions) == 0 {
		return nil, fmt.Errorf("narrative service returned an empty narrative")
	}

	return &narrativeResp, nil
}
