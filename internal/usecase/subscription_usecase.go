package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/insiderwatch/insiderwatch/internal/refdata"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrUnknownSector          = errors.New("unknown sector")
	ErrUnknownMarketCap       = errors.New("unknown market cap")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidRange           = errors.New("range lower bound exceeds upper bound")
	ErrInvalidSettings        = errors.New("settings is not valid JSON")
	ErrUnknownPreference      = errors.New("unknown email preference")
)

// SubscriptionInput carries the raw filter values supplied by a user. String
// filters may arrive as taxonomy keys or display labels; they are stored as
// keys, the encoding shared with the event normalizer.
type SubscriptionInput struct {
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
}

type SubscriptionUsecase struct {
	users    domain.UserRepository
	subs     domain.SubscriptionRepository
	taxonomy *refdata.Taxonomy
}

func NewSubscriptionUsecase(users domain.UserRepository, subs domain.SubscriptionRepository, taxonomy *refdata.Taxonomy) *SubscriptionUsecase {
	return &SubscriptionUsecase{users: users, subs: subs, taxonomy: taxonomy}
}

func (u *SubscriptionUsecase) Create(ctx context.Context, userID uint, input SubscriptionInput) (*domain.Subscription, error) {
	if _, err := u.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:             userID,
		SharePriceMin:      input.SharePriceMin,
		SharePriceMax:      input.SharePriceMax,
		TotalAmountMin:     input.TotalAmountMin,
		TotalAmountMax:     input.TotalAmountMax,
		TotalSharesMin:     input.TotalSharesMin,
		TotalSharesMax:     input.TotalSharesMax,
		SharesAfterMin:     input.SharesAfterMin,
		SharesAfterMax:     input.SharesAfterMax,
		OwnershipChangeMin: input.OwnershipChangeMin,
		OwnershipChangeMax: input.OwnershipChangeMax,
		Enabled:            true,
	}

	if input.Ticker != nil {
		ticker := strings.ToUpper(strings.TrimSpace(*input.Ticker))
		if ticker != "" {
			sub.Ticker = &ticker
		}
	}

	if input.Sector != nil {
		key, ok := u.taxonomy.SectorKey(*input.Sector)
		if !ok {
			return nil, ErrUnknownSector
		}
		sub.Sector = &key
	}

	if input.MarketCap != nil {
		key, ok := u.taxonomy.MarketCapKey(*input.MarketCap)
		if !ok {
			return nil, ErrUnknownMarketCap
		}
		sub.MarketCap = &key
	}

	if input.TransactionType != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.TransactionType))
		if code != domain.TransactionPurchase && code != domain.TransactionSale {
			return nil, ErrInvalidTransactionType
		}
		sub.TransactionType = &code
	}

	for _, pair := range [][2]*decimal.Decimal{
		{sub.SharePriceMin, sub.SharePriceMax},
		{sub.TotalAmountMin, sub.TotalAmountMax},
		{sub.TotalSharesMin, sub.TotalSharesMax},
		{sub.SharesAfterMin, sub.SharesAfterMax},
		{sub.OwnershipChangeMin, sub.OwnershipChangeMax},
	} {
		if pair[0] != nil && pair[1] != nil && pair[0].Cmp(*pair[1]) > 0 {
			return nil, ErrInvalidRange
		}
	}

	sub.Settings = input.Settings
	if len(sub.Settings) == 0 {
		sub.Settings = json.RawMessage(`{}`)
	} else if !json.Valid(sub.Settings) {
		return nil, ErrInvalidSettings
	}

	if err := u.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (u *SubscriptionUsecase) List(ctx context.Context, userID uint) ([]domain.Subscription, error) {
	if _, err := u.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u.subs.ListByUser(ctx, userID)
}

func (u *SubscriptionUsecase) Enable(ctx context.Context, userID uint, subID uint) error {
	return u.setEnabled(ctx, userID, subID, true)
}

func (u *SubscriptionUsecase) Disable(ctx context.Context, userID uint, subID uint) error {
	return u.setEnabled(ctx, userID, subID, false)
}

func (u *SubscriptionUsecase) Delete(ctx context.Context, userID uint, subID uint) error {
	if err := u.subs.Delete(ctx, userID, subID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func (u *SubscriptionUsecase) setEnabled(ctx context.Context, userID uint, subID uint, enabled bool) error {
	if err := u.subs.SetEnabled(ctx, userID, subID, enabled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}
