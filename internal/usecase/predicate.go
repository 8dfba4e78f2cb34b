package usecase

import (
	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Matches reports whether a subscription's filter set accepts a trade event.
// Every clause must hold: a subscription with no filters set matches any
// event, and an active clause over a missing event field never holds.
func Matches(sub domain.Subscription, event domain.TradeEvent) bool {
	if !equalityClause(sub.Ticker, event.Ticker) {
		return false
	}
	if !equalityClause(sub.Sector, event.Sector) {
		return false
	}
	if !equalityClause(sub.MarketCap, event.MarketCap) {
		return false
	}
	if !equalityClause(sub.TransactionType, event.TransactionType) {
		return false
	}

	if !rangeClause(sub.SharePriceMin, sub.SharePriceMax, event.SharePrice) {
		return false
	}
	if !rangeClause(sub.TotalAmountMin, sub.TotalAmountMax, event.TotalAmountSpent) {
		return false
	}
	if !rangeClause(sub.TotalSharesMin, sub.TotalSharesMax, event.TotalShares) {
		return false
	}
	if !rangeClause(sub.SharesAfterMin, sub.SharesAfterMax, event.TotalSharesAfterTransaction) {
		return false
	}
	if !rangeClause(sub.OwnershipChangeMin, sub.OwnershipChangeMax, event.ChangeInSharesPercentage) {
		return false
	}

	return true
}

func equalityClause(filter, value *string) bool {
	if filter == nil {
		return true
	}
	if value == nil {
		return false
	}
	return *filter == *value
}

// rangeClause checks an inclusive (lower, upper) bound pair. An inverted
// pair (lower > upper) can satisfy neither side and so matches nothing.
func rangeClause(lower, upper, value *decimal.Decimal) bool {
	if lower == nil && upper == nil {
		return true
	}
	if value == nil {
		return false
	}
	if lower != nil && value.Cmp(*lower) < 0 {
		return false
	}
	if upper != nil && value.Cmp(*upper) > 0 {
		return false
	}
	return true
}
