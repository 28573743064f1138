package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mata/internal/reconciliation"
)

// aggregatedResponse is the envelope of GET /api/cash-payments/aggregated.
type aggregatedResponse struct {
	Success bool                     `json:"success"`
	Data    []reconciliation.CashDay `json:"data"`
	Message string                   `json:"message"`
}

// PaymentsClient reads aggregated cash payments from the external payments
// API. Calls go through a circuit breaker so that an unavailable gateway does
// not stall every reconciliation.
type PaymentsClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewPaymentsClient(baseURL string, timeout time.Duration, cb *CircuitBreaker) *PaymentsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig("payments-api"))
	}
	return &PaymentsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *PaymentsClient) Breaker() *CircuitBreaker { return c.cb }

// Aggregated returns the per-day, per-reference totals published by the API.
func (c *PaymentsClient) Aggregated(ctx context.Context) ([]reconciliation.CashDay, error) {
	var days []reconciliation.CashDay
	err := c.cb.Execute(func() error {
		var err error
		days, err = c.fetchAggregated(ctx)
		return err
	})
	return days, err
}

func (c *PaymentsClient) fetchAggregated(ctx context.Context) ([]reconciliation.CashDay, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cash-payments/aggregated", nil)
	if err != nil {
		return nil, fmt.Errorf("payments: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payments: api returned %d", resp.StatusCode)
	}

	var body aggregatedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("payments: decode response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("payments: api reported failure: %s", body.Message)
	}
	return body.Data, nil
}
