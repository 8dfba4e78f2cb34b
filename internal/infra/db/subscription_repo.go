package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	model := mapSubscriptionToModel(*sub)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	sub.ID = model.ID
	sub.CreatedAt = model.CreatedAt
	sub.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Subscription, error) {
	var models []subscriptionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	subs := make([]domain.Subscription, 0, len(models))
	for _, model := range models {
		subs = append(subs, mapSubscriptionToDomain(model))
	}
	return subs, nil
}

func (r *SubscriptionRepository) SetEnabled(ctx context.Context, userID uint, subID uint, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&subscriptionModel{}).
		Where("id = ? AND user_id = ?", subID, userID).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, userID uint, subID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", subID, userID).Delete(&subscriptionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type subscriptionWithUserRow struct {
	subscriptionModel
	Email string
	Phone string
}

func (r *SubscriptionRepository) ListEnabledWithUsers(ctx context.Context, ticker *string) ([]domain.SubscriptionWithUser, error) {
	query := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Select("subscriptions.*, users.email, users.phone").
		Joins("JOIN users ON users.id = subscriptions.user_id AND users.deleted_at IS NULL").
		Where("subscriptions.enabled = ?", true).
		Where("users.is_active = ?", true)

	// Coarse pre-narrowing only: rows with a ticker filter other than the
	// event's can never match, skipping them here does not change semantics.
	if ticker != nil {
		query = query.Where("subscriptions.ticker IS NULL OR subscriptions.ticker = ?", *ticker)
	}

	var rows []subscriptionWithUserRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	candidates := make([]domain.SubscriptionWithUser, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, domain.SubscriptionWithUser{
			Subscription: mapSubscriptionToDomain(row.subscriptionModel),
			Email:        row.Email,
			Phone:        row.Phone,
		})
	}
	return candidates, nil
}

func mapSubscriptionToDomain(model subscriptionModel) domain.Subscription {
	var deleted *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deleted = &t
	}
	return domain.Subscription{
		ID:                 model.ID,
		UserID:             model.UserID,
		Ticker:             model.Ticker,
		Sector:             model.Sector,
		MarketCap:          model.MarketCap,
		TransactionType:    model.TransactionType,
		SharePriceMin:      model.SharePriceMin,
		SharePriceMax:      model.SharePriceMax,
		TotalAmountMin:     model.TotalAmountMin,
		TotalAmountMax:     model.TotalAmountMax,
		TotalSharesMin:     model.TotalSharesMin,
		TotalSharesMax:     model.TotalSharesMax,
		SharesAfterMin:     model.SharesAfterMin,
		SharesAfterMax:     model.SharesAfterMax,
		OwnershipChangeMin: model.OwnershipChangeMin,
		OwnershipChangeMax: model.OwnershipChangeMax,
		Settings:           json.RawMessage(model.Settings),
		Enabled:            model.Enabled,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
		DeletedAt:          deleted,
	}
}

func mapSubscriptionToModel(sub domain.Subscription) subscriptionModel {
	return subscriptionModel{
		ID:                 sub.ID,
		UserID:             sub.UserID,
		Ticker:             sub.Ticker,
		Sector:             sub.Sector,
		MarketCap:          sub.MarketCap,
		TransactionType:    sub.TransactionType,
		SharePriceMin:      sub.SharePriceMin,
		SharePriceMax:      sub.SharePriceMax,
		TotalAmountMin:     sub.TotalAmountMin,
		TotalAmountMax:     sub.TotalAmountMax,
		TotalSharesMin:     sub.TotalSharesMin,
		TotalSharesMax:     sub.TotalSharesMax,
		SharesAfterMin:     sub.SharesAfterMin,
		SharesAfterMax:     sub.SharesAfterMax,
		OwnershipChangeMin: sub.OwnershipChangeMin,
		OwnershipChangeMax: sub.OwnershipChangeMax,
		Settings:           datatypes.JSON(sub.Settings),
		Enabled:            sub.Enabled,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}
