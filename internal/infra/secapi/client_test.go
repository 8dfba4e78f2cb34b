package secapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ceoFilingResponse = `{
	"total": {"value": 1},
	"transactions": [{
		"id": "filing-123",
		"accessionNo": "0001-23-000045",
		"filedAt": "2026-08-21T16:05:00-04:00",
		"periodOfReport": "2026-08-19",
		"issuer": {"cik": "320193", "tradingSymbol": "AAPL", "name": "Apple Inc"},
		"reportingOwner": {
			"name": "Jordan Smith",
			"relationship": {"isOfficer": true, "officerTitle": "Chief Executive Officer"}
		},
		"nonDerivativeTable": {
			"transactions": [
				{
					"coding": {"code": "P"},
					"amounts": {"shares": 1000, "pricePerShare": 150},
					"ownershipNature": {"directOrIndirectOwnership": "D"},
					"postTransactionAmounts": {"sharesOwnedFollowingTransaction": 5000}
				},
				{
					"coding": {"code": "P"},
					"amounts": {"shares": 500, "pricePerShare": 152},
					"ownershipNature": {"directOrIndirectOwnership": "D"},
					"postTransactionAmounts": {"sharesOwnedFollowingTransaction": 5500}
				},
				{
					"coding": {"code": "P"},
					"amounts": {"shares": 200, "pricePerShare": 151},
					"ownershipNature": {"directOrIndirectOwnership": "I", "natureOfOwnership": "By Trust"},
					"postTransactionAmounts": {"sharesOwnedFollowingTransaction": 2000}
				}
			],
			"holdings": [
				{"postTransactionAmounts": {"sharesOwnedFollowingTransaction": 300}}
			]
		}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second, zap.NewNop())
}

func TestFetchByAccessionNo_ExtractsPurchaseGroup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/insider-trading", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ceoFilingResponse))
	})

	trades, err := client.FetchByAccessionNo(context.Background(), "0001-23-000045")
	require.NoError(t, err)
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.Equal(t, "filing-123", trade.Filing)
	assert.Equal(t, "AAPL", trade.Ticker)
	assert.Equal(t, "Jordan Smith", trade.OfficerName)
	assert.Equal(t, "Jordan Smith - Apple Inc", trade.SearchText)
	assert.Equal(t, domain.TransactionPurchase, trade.TransactionType)
	assert.Equal(t, 2026, trade.DisclosedDate.Year())

	// 1000 + 500 + 200 shares
	assert.Equal(t, "1700", trade.TotalShares.String())
	// 1000*150 + 500*152 + 200*151
	assert.Equal(t, "256200", trade.TotalAmountSpent.String())
	// first priced transaction in the group
	assert.Equal(t, "150", trade.SharePrice.String())
	// last direct row (5500) + last indirect row (2000) + holdings (300)
	assert.Equal(t, "7800", trade.TotalSharesAfterTransaction.String())
	// 1700 / 7800 * 100
	assert.Equal(t, "21.7949", trade.ChangeInSharesPercentage.String())
}

func TestFetchByAccessionNo_NonOfficerYieldsNothing(t *testing.T) {
	response := `{
		"total": {"value": 1},
		"transactions": [{
			"id": "filing-9",
			"accessionNo": "0001-23-000050",
			"filedAt": "2026-08-21T10:00:00-04:00",
			"issuer": {"tradingSymbol": "AAPL", "name": "Apple Inc"},
			"reportingOwner": {"name": "Some Director", "relationship": {"isOfficer": false}},
			"nonDerivativeTable": {"transactions": []}
		}]
	}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(response))
	})

	trades, err := client.FetchByAccessionNo(context.Background(), "0001-23-000050")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestFetchByAccessionNo_UnindexedFiling(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":{"value":0},"transactions":[]}`))
	})

	_, err := client.FetchByAccessionNo(context.Background(), "0001-23-000099")
	assert.ErrorIs(t, err, domain.ErrFilingNotFound)
}

func TestFetchByAccessionNo_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchByAccessionNo(context.Background(), "0001-23-000099")
	assert.Error(t, err)
}

func TestIsExecutiveFiling_TitleVariants(t *testing.T) {
	newRecord := func(isOfficer bool, title string) insiderTransaction {
		var record insiderTransaction
		record.ReportingOwner.Relationship.IsOfficer = isOfficer
		record.ReportingOwner.Relationship.OfficerTitle = title
		return record
	}

	assert.True(t, isExecutiveFiling(newRecord(true, "CEO")))
	assert.True(t, isExecutiveFiling(newRecord(true, "President and CEO")))
	assert.True(t, isExecutiveFiling(newRecord(true, "Chief Executive Officer")))
	assert.True(t, isExecutiveFiling(newRecord(true, "Principal Executive Officer")))
	assert.False(t, isExecutiveFiling(newRecord(true, "Chief Financial Officer")))
	assert.False(t, isExecutiveFiling(newRecord(false, "CEO")))
}
