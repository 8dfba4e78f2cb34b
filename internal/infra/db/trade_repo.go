package db

import (
	"context"
	"fmt"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) Insert(ctx context.Context, trade *domain.Trade) error {
	model := mapTradeToModel(*trade)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	trade.ID = model.ID
	trade.CreatedAt = model.CreatedAt
	trade.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *TradeRepository) ListDisclosedSince(ctx context.Context, since time.Time) ([]domain.Trade, error) {
	var models []tradeModel
	if err := r.db.WithContext(ctx).
		Where("disclosed_date >= ?", since).
		Order("disclosed_date").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapTradesToDomain(models), nil
}

func (r *TradeRepository) ListWithoutReturn(ctx context.Context, window domain.ReturnWindow, disclosedBefore time.Time, limit int) ([]domain.Trade, error) {
	column, err := returnColumn(window)
	if err != nil {
		return nil, err
	}
	var models []tradeModel
	if err := r.db.WithContext(ctx).
		Where(column+" IS NULL").
		Where("transaction_type = ?", domain.TransactionPurchase).
		Where("disclosed_date <= ?", disclosedBefore).
		Order("disclosed_date DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapTradesToDomain(models), nil
}

func (r *TradeRepository) SetReturn(ctx context.Context, tradeID uint, window domain.ReturnWindow, value decimal.Decimal) error {
	column, err := returnColumn(window)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&tradeModel{}).Where("id = ?", tradeID).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TradeRepository) MarkMatched(ctx context.Context, tradeID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&tradeModel{}).Where("id = ?", tradeID).Update("matched_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func returnColumn(window domain.ReturnWindow) (string, error) {
	switch window {
	case domain.ReturnWindowWeek:
		return "one_week_return", nil
	case domain.ReturnWindowMonth:
		return "one_month_return", nil
	case domain.ReturnWindowSixMonths:
		return "six_months_return", nil
	default:
		return "", fmt.Errorf("unknown return window %q", window)
	}
}

func mapTradesToDomain(models []tradeModel) []domain.Trade {
	trades := make([]domain.Trade, 0, len(models))
	for _, model := range models {
		trades = append(trades, domain.Trade{
			ID:                          model.ID,
			Filing:                      model.Filing,
			AccessionNo:                 model.AccessionNo,
			CIK:                         model.CIK,
			Ticker:                      model.Ticker,
			OfficerName:                 model.OfficerName,
			CompanyName:                 model.CompanyName,
			SearchText:                  model.SearchText,
			Sector:                      model.Sector,
			MarketCap:                   model.MarketCap,
			PeriodOfReport:              model.PeriodOfReport,
			TransactionType:             model.TransactionType,
			DisclosedDate:               model.DisclosedDate,
			Link:                        model.Link,
			SharePrice:                  model.SharePrice,
			TotalShares:                 model.TotalShares,
			TotalAmountSpent:            model.TotalAmountSpent,
			TotalSharesAfterTransaction: model.TotalSharesAfterTransaction,
			ChangeInSharesPercentage:    model.ChangeInSharesPercentage,
			OneWeekReturn:               model.OneWeekReturn,
			OneMonthReturn:              model.OneMonthReturn,
			SixMonthsReturn:             model.SixMonthsReturn,
			MatchedAt:                   model.MatchedAt,
			CreatedAt:                   model.CreatedAt,
			UpdatedAt:                   model.UpdatedAt,
		})
	}
	return trades
}

func mapTradeToModel(trade domain.Trade) tradeModel {
	return tradeModel{
		ID:                          trade.ID,
		Filing:                      trade.Filing,
		AccessionNo:                 trade.AccessionNo,
		CIK:                         trade.CIK,
		Ticker:                      trade.Ticker,
		OfficerName:                 trade.OfficerName,
		CompanyName:                 trade.CompanyName,
		SearchText:                  trade.SearchText,
		Sector:                      trade.Sector,
		MarketCap:                   trade.MarketCap,
		PeriodOfReport:              trade.PeriodOfReport,
		TransactionType:             trade.TransactionType,
		DisclosedDate:               trade.DisclosedDate,
		Link:                        trade.Link,
		SharePrice:                  trade.SharePrice,
		TotalShares:                 trade.TotalShares,
		TotalAmountSpent:            trade.TotalAmountSpent,
		TotalSharesAfterTransaction: trade.TotalSharesAfterTransaction,
		ChangeInSharesPercentage:    trade.ChangeInSharesPercentage,
		OneWeekReturn:               trade.OneWeekReturn,
		OneMonthReturn:              trade.OneMonthReturn,
		SixMonthsReturn:             trade.SixMonthsReturn,
		MatchedAt:                   trade.MatchedAt,
		CreatedAt:                   trade.CreatedAt,
		UpdatedAt:                   trade.UpdatedAt,
	}
}
