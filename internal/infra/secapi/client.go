// Package secapi fetches the full insider-transaction record behind a
// filing headline and flattens it into trade records. Only filings made by
// a chief-executive-level officer with purchase or sale codes survive the
// extraction; everything else returns an empty slice.
package secapi

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

var executiveTitles = map[string]struct{}{
	"chief executive officer":               {},
	"president and chief executive officer": {},
	"president & chief executive officer":   {},
	"principal executive officer":           {},
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) FetchByAccessionNo(ctx context.Context, accessionNo string) ([]domain.Trade, error) {
	endpoint := c.baseURL + "/insider-trading"
	body, err := json.Marshal(queryRequest{
		Query: queryClause{QueryString: queryString{Query: "accessionNo:" + accessionNo}},
		From:  0,
		Size:  1,
		Sort:  []map[string]any{{"filedAt": map[string]any{"order": "desc"}}},
	})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", c.apiKey)

	start := time.Now()
	c.logger.Info("insider trade lookup start", zap.String("accession_no", accessionNo))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("insider trade lookup failed", zap.String("accession_no", accessionNo), zap.Error(err))
		return nil, err
	}
	defer response.Body.Close()

	c.logger.Info("insider trade lookup complete",
		zap.String("accession_no", accessionNo),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("insider trade api: status %d", response.StatusCode)
	}

	var payload queryResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Total.Value == 0 || len(payload.Transactions) == 0 {
		return nil, domain.ErrFilingNotFound
	}

	record := payload.Transactions[0]
	if !isExecutiveFiling(record) {
		c.logger.Debug("filing not made by an executive officer",
			zap.String("accession_no", accessionNo),
			zap.String("officer_title", record.ReportingOwner.Relationship.OfficerTitle))
		return nil, nil
	}

	return c.extractTrades(record), nil
}

func isExecutiveFiling(record insiderTransaction) bool {
	relationship := record.ReportingOwner.Relationship
	if !relationship.IsOfficer {
		return false
	}
	title := strings.ToLower(strings.TrimSpace(relationship.OfficerTitle))
	if strings.Contains(title, "ceo") {
		return true
	}
	_, ok := executiveTitles[title]
	return ok
}

// extractTrades produces one trade per purchase/sale code group of the
// non-derivative table: share totals summed per group, post-transaction
// holdings taken from each ownership chain's final row.
func (c *Client) extractTrades(record insiderTransaction) []domain.Trade {
	groups := make(map[string][]nonDerivativeTransaction)
	for _, txn := range record.NonDerivativeTable.Transactions {
		code := txn.Coding.Code
		groups[code] = append(groups[code], txn)
	}

	disclosedDate := parseFiledAt(record.FiledAt)
	trades := make([]domain.Trade, 0, 2)

	for _, code := range []string{domain.TransactionPurchase, domain.TransactionSale} {
		transactions, ok := groups[code]
		if !ok {
			continue
		}

		totalShares := decimal.Zero
		totalAmount := decimal.Zero
		var sharePrice *decimal.Decimal

		directChain := make([]nonDerivativeTransaction, 0, len(transactions))
		indirectChains := make(map[string][]nonDerivativeTransaction)

		for _, txn := range transactions {
			if txn.Amounts.Shares.Valid {
				totalShares = totalShares.Add(txn.Amounts.Shares.Decimal)
				if txn.Amounts.PricePerShare.Valid {
					totalAmount = totalAmount.Add(txn.Amounts.Shares.Decimal.Mul(txn.Amounts.PricePerShare.Decimal))
				}
			}
			if sharePrice == nil && txn.Amounts.PricePerShare.Valid {
				price := txn.Amounts.PricePerShare.Decimal
				sharePrice = &price
			}

			if txn.OwnershipNature.DirectOrIndirectOwnership == "I" {
				nature := txn.OwnershipNature.NatureOfOwnership
				indirectChains[nature] = append(indirectChains[nature], txn)
			} else {
				directChain = append(directChain, txn)
			}
		}

		sharesAfter := chainFinalShares(directChain)
		for _, chain := range indirectChains {
			sharesAfter = sharesAfter.Add(chainFinalShares(chain))
		}
		for _, holding := range record.NonDerivativeTable.Holdings {
			if holding.PostTransactionAmounts.SharesOwnedFollowingTransaction.Valid {
				sharesAfter = sharesAfter.Add(holding.PostTransactionAmounts.SharesOwnedFollowingTransaction.Decimal)
			}
		}

		var changePct *decimal.Decimal
		if !sharesAfter.IsZero() {
			pct := totalShares.Div(sharesAfter).Mul(decimal.NewFromInt(100)).Round(4)
			changePct = &pct
		}

		sharesAfterValue := sharesAfter
		totalSharesValue := totalShares
		totalAmountValue := totalAmount

		trades = append(trades, domain.Trade{
			Filing:                      record.ID,
			AccessionNo:                 record.AccessionNo,
			CIK:                         record.Issuer.CIK,
			Ticker:                      record.Issuer.TradingSymbol,
			OfficerName:                 record.ReportingOwner.Name,
			CompanyName:                 record.Issuer.Name,
			SearchText:                  record.ReportingOwner.Name + " - " + record.Issuer.Name,
			PeriodOfReport:              record.PeriodOfReport,
			TransactionType:             code,
			DisclosedDate:               disclosedDate,
			SharePrice:                  sharePrice,
			TotalShares:                 &totalSharesValue,
			TotalAmountSpent:            &totalAmountValue,
			TotalSharesAfterTransaction: &sharesAfterValue,
			ChangeInSharesPercentage:    changePct,
		})
	}

	return trades
}

// chainFinalShares returns the post-transaction share count of the last row
// in one ownership chain, zero when the chain is empty or the value absent.
func chainFinalShares(chain []nonDerivativeTransaction) decimal.Decimal {
	if len(chain) == 0 {
		return decimal.Zero
	}
	last := chain[len(chain)-1].PostTransactionAmounts.SharesOwnedFollowingTransaction
	if !last.Valid {
		return decimal.Zero
	}
	return last.Decimal
}

func parseFiledAt(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
