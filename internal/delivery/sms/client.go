// Package sms sends trade notifications through a Twilio-compatible
// messages API.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	baseURL             string
	accountSID          string
	authToken           string
	messagingServiceSID string
	client              *http.Client
	logger              *zap.Logger
}

func NewClient(baseURL, accountSID, authToken, messagingServiceSID string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:             strings.TrimRight(baseURL, "/"),
		accountSID:          accountSID,
		authToken:           authToken,
		messagingServiceSID: messagingServiceSID,
		client:              &http.Client{Timeout: timeout},
		logger:              logger,
	}
}

func (c *Client) Send(ctx context.Context, to string, trade domain.Trade) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("MessagingServiceSid", c.messagingServiceSID)
	form.Set("Body", messageBody(trade))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.SetBasicAuth(c.accountSID, c.authToken)

	c.logger.Info("sms send", zap.String("to", to), zap.String("ticker", trade.Ticker))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("sms send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sms api: status %d", response.StatusCode)
	}
	return nil
}

func messageBody(trade domain.Trade) string {
	action := "purchased"
	if trade.TransactionType == domain.TransactionSale {
		action = "sold"
	}
	return fmt.Sprintf(
		"%s of %s %s %s shares at $%s for a total of $%s on %s. They now own %s shares (%s%%).",
		trade.OfficerName,
		trade.CompanyName,
		action,
		decimalOrNA(trade.TotalShares),
		decimalOrNA(trade.SharePrice),
		decimalOrNA(trade.TotalAmountSpent),
		trade.PeriodOfReport,
		decimalOrNA(trade.TotalSharesAfterTransaction),
		decimalOrNA(trade.ChangeInSharesPercentage),
	)
}

func decimalOrNA(value *decimal.Decimal) string {
	if value == nil {
		return "n/a"
	}
	return value.String()
}
