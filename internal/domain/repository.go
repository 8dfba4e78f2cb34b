package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uint) (*User, error)
	Create(ctx context.Context, user *User) error
	SetActive(ctx context.Context, userID uint, active bool) error
	UpdateSettings(ctx context.Context, userID uint, settings []byte) error

	// ListByEmailPreference returns active users whose account settings have
	// the named boolean flag set, e.g. "daily_digest".
	ListByEmailPreference(ctx context.Context, flag string) ([]User, error)
}

// SubscriptionWithUser is one candidate row of the matching pass: a
// subscription joined with its owner's contact identifiers.
type SubscriptionWithUser struct {
	Subscription Subscription
	Email        string
	Phone        string
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	ListByUser(ctx context.Context, userID uint) ([]Subscription, error)
	SetEnabled(ctx context.Context, userID uint, subID uint, enabled bool) error
	Delete(ctx context.Context, userID uint, subID uint) error

	// ListEnabledWithUsers returns every enabled subscription of an active
	// user joined with the owner's email and phone. A non-nil ticker lets
	// the store pre-narrow the candidate set; rows that cannot match may
	// still be returned, correctness never depends on the hint.
	ListEnabledWithUsers(ctx context.Context, ticker *string) ([]SubscriptionWithUser, error)
}

// ReturnWindow selects one of the post-trade return columns back-filled by
// the scheduled returns job.
type ReturnWindow string

const (
	ReturnWindowWeek      ReturnWindow = "one_week"
	ReturnWindowMonth     ReturnWindow = "one_month"
	ReturnWindowSixMonths ReturnWindow = "six_months"
)

type TradeRepository interface {
	Insert(ctx context.Context, trade *Trade) error
	ListDisclosedSince(ctx context.Context, since time.Time) ([]Trade, error)
	ListWithoutReturn(ctx context.Context, window ReturnWindow, disclosedBefore time.Time, limit int) ([]Trade, error)
	SetReturn(ctx context.Context, tradeID uint, window ReturnWindow, value decimal.Decimal) error
	MarkMatched(ctx context.Context, tradeID uint, at time.Time) error
}
