// Package email sends trade notifications through a Resend-compatible HTTP
// API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, apiKey, from string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *Client) Send(ctx context.Context, to string, trade domain.Trade) error {
	c.logger.Info("email send", zap.String("to", to), zap.String("ticker", trade.Ticker))
	return c.post(ctx, to, subjectLine(trade), renderBody(trade))
}

// SendDailyDigest mails the day's trade summary.
func (c *Client) SendDailyDigest(ctx context.Context, to string, digest domain.DailyDigest) error {
	c.logger.Info("daily digest send", zap.String("to", to))
	return c.post(ctx, to, "Daily Digest", renderDailyDigest(digest))
}

// SendWeeklySectorReport mails the week's per-sector activity.
func (c *Client) SendWeeklySectorReport(ctx context.Context, to string, report domain.WeeklySectorReport) error {
	c.logger.Info("weekly sector report send", zap.String("to", to))
	subject := fmt.Sprintf("Weekly Sector Report - Week %d", report.WeekNumber)
	return c.post(ctx, to, subject, renderWeeklySectorReport(report))
}

func (c *Client) post(ctx context.Context, to, subject, html string) error {
	payload := sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("email send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("email api: status %d", response.StatusCode)
	}
	return nil
}

func decimalOrNA(value *decimal.Decimal) string {
	if value == nil {
		return "n/a"
	}
	return value.String()
}

func subjectLine(trade domain.Trade) string {
	action := "purchase"
	if trade.TransactionType == domain.TransactionSale {
		action = "sale"
	}
	return fmt.Sprintf("Insider %s alert: %s", action, trade.Ticker)
}

func renderDailyDigest(digest domain.DailyDigest) string {
	var b strings.Builder
	b.WriteString("<h2>Daily Digest</h2>")
	fmt.Fprintf(&b, "<p>%d purchases and %d sales were disclosed today.</p>",
		digest.PurchaseCount, digest.SaleCount)
	writeTradeList(&b, "Top purchases", digest.Purchases)
	writeTradeList(&b, "Top sales", digest.Sales)
	return b.String()
}

func renderWeeklySectorReport(report domain.WeeklySectorReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Weekly Sector Report - Week %d</h2>", report.WeekNumber)
	for _, sector := range report.Sectors {
		fmt.Fprintf(&b, "<h3>%s</h3>", sector.Sector)
		writeTradeList(&b, "Purchases", sector.Purchases)
		writeTradeList(&b, "Sales", sector.Sales)
	}
	return b.String()
}

func writeTradeList(b *strings.Builder, heading string, trades []domain.Trade) {
	if len(trades) == 0 {
		return
	}
	fmt.Fprintf(b, "<h4>%s</h4><ul>", heading)
	for _, trade := range trades {
		fmt.Fprintf(b, "<li>%s (%s): %s shares for $%s</li>",
			trade.CompanyName,
			trade.Ticker,
			decimalOrNA(trade.TotalShares),
			decimalOrNA(trade.TotalAmountSpent))
	}
	b.WriteString("</ul>")
}

func renderBody(trade domain.Trade) string {
	action := "purchased"
	if trade.TransactionType == domain.TransactionSale {
		action = "sold"
	}
	return fmt.Sprintf(
		"<p>%s of %s %s %s shares at $%s for a total of $%s on %s.</p>"+
			"<p>Shares owned after the transaction: %s (%s%%).</p>"+
			`<p><a href="%s">View the filing</a></p>`,
		trade.OfficerName,
		trade.CompanyName,
		action,
		decimalOrNA(trade.TotalShares),
		decimalOrNA(trade.SharePrice),
		decimalOrNA(trade.TotalAmountSpent),
		trade.PeriodOfReport,
		decimalOrNA(trade.TotalSharesAfterTransaction),
		decimalOrNA(trade.ChangeInSharesPercentage),
		trade.Link,
	)
}
