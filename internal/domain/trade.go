package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction type codes of the non-derivative table, the only two codes
// the ingester keeps.
const (
	TransactionPurchase = "P"
	TransactionSale     = "S"
)

// Trade is one persisted insider-trade disclosure. Numeric fields are nil
// when the filing did not carry a parseable value. Sector and MarketCap hold
// display labels; they are mapped to taxonomy keys at matching time.
type Trade struct {
	ID              uint
	Filing          string
	AccessionNo     string
	CIK             string
	Ticker          string
	OfficerName     string
	CompanyName     string
	SearchText      string
	Sector          string
	MarketCap       string
	PeriodOfReport  string
	TransactionType string
	DisclosedDate   time.Time
	Link            string

	SharePrice                  *decimal.Decimal
	TotalShares                 *decimal.Decimal
	TotalAmountSpent            *decimal.Decimal
	TotalSharesAfterTransaction *decimal.Decimal
	ChangeInSharesPercentage    *decimal.Decimal

	OneWeekReturn   *decimal.Decimal
	OneMonthReturn  *decimal.Decimal
	SixMonthsReturn *decimal.Decimal

	// MatchedAt records when the trade last went through a matching pass.
	// Scheduled re-matching only considers subscriptions created after it,
	// so a recipient already notified inline is never notified again.
	MatchedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
