package domain

import "github.com/shopspring/decimal"

// TradeEvent is the matching view of a single insider trade. Every field is
// optional: a nil pointer means the event carries no value for that
// dimension. Sector and MarketCap hold taxonomy keys, not display labels.
type TradeEvent struct {
	Ticker          *string
	Sector          *string
	MarketCap       *string
	TransactionType *string

	SharePrice                  *decimal.Decimal
	TotalAmountSpent            *decimal.Decimal
	TotalShares                 *decimal.Decimal
	TotalSharesAfterTransaction *decimal.Decimal
	ChangeInSharesPercentage    *decimal.Decimal
}
