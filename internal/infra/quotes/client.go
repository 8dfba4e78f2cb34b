// Package quotes is a thin client for the daily-close price service used by
// the returns back-fill job.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type closeResponse struct {
	Symbol string          `json:"symbol"`
	Date   string          `json:"date"`
	Close  decimal.Decimal `json:"close"`
}

// ClosingPrice returns the adjusted close for ticker on day, or nil when the
// service has no session for that date (weekend, holiday, not yet settled).
func (c *Client) ClosingPrice(ctx context.Context, ticker string, day time.Time) (*decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v1/daily-close?symbol=%s&date=%s",
		c.baseURL, url.QueryEscape(ticker), day.Format("2006-01-02"))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("quote request failed", zap.String("ticker", ticker), zap.Error(err))
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("quote service: status %d", response.StatusCode)
	}

	var payload closeResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}
	price := payload.Close
	return &price, nil
}
