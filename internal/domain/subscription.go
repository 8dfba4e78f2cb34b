package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is one stored notification rule. A nil filter places no
// constraint on the corresponding event field. Range bounds are inclusive
// and each side is independently optional. Settings is an opaque payload
// echoed back verbatim when the subscription matches.
type Subscription struct {
	ID     uint
	UserID uint

	Ticker          *string
	Sector          *string
	MarketCap       *string
	TransactionType *string

	SharePriceMin *decimal.Decimal
	SharePriceMax *decimal.Decimal

	TotalAmountMin *decimal.Decimal
	TotalAmountMax *decimal.Decimal

	TotalSharesMin *decimal.Decimal
	TotalSharesMax *decimal.Decimal

	SharesAfterMin *decimal.Decimal
	SharesAfterMax *decimal.Decimal

	OwnershipChangeMin *decimal.Decimal
	OwnershipChangeMax *decimal.Decimal

	Settings json.RawMessage
	Enabled  bool

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
