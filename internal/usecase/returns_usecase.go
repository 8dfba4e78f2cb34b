package usecase

import (
	"context"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const returnsBatchLimit = 300

var returnWindows = []struct {
	window domain.ReturnWindow
	days   int
}{
	{domain.ReturnWindowWeek, 7},
	{domain.ReturnWindowMonth, 30},
	{domain.ReturnWindowSixMonths, 180},
}

// ReturnsBackfill fills the one-week, one-month and six-month return columns
// on purchase trades once enough time has passed since disclosure. A missing
// quote leaves the column NULL for the next pass.
type ReturnsBackfill struct {
	repo   domain.TradeRepository
	quotes domain.QuoteClient
	logger *zap.Logger
}

func NewReturnsBackfill(repo domain.TradeRepository, quotes domain.QuoteClient, logger *zap.Logger) *ReturnsBackfill {
	return &ReturnsBackfill{repo: repo, quotes: quotes, logger: logger}
}

func (b *ReturnsBackfill) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.RunOnce(ctx); err != nil {
				b.logger.Error("returns backfill failed", zap.Error(err))
			}
		}
	}
}

func (b *ReturnsBackfill) RunOnce(ctx context.Context) error {
	for _, w := range returnWindows {
		cutoff := time.Now().AddDate(0, 0, -w.days)
		trades, err := b.repo.ListWithoutReturn(ctx, w.window, cutoff, returnsBatchLimit)
		if err != nil {
			return err
		}
		for _, trade := range trades {
			if err := b.backfillTrade(ctx, trade, w.window, w.days); err != nil {
				b.logger.Warn("failed to backfill return",
					zap.Uint("trade_id", trade.ID),
					zap.String("window", string(w.window)),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (b *ReturnsBackfill) backfillTrade(ctx context.Context, trade domain.Trade, window domain.ReturnWindow, days int) error {
	if trade.SharePrice == nil || trade.SharePrice.IsZero() {
		return nil
	}

	day := trade.DisclosedDate.AddDate(0, 0, days)
	quote, err := b.quotes.ClosingPrice(ctx, trade.Ticker, day)
	if err != nil {
		return err
	}
	if quote == nil {
		// No session on that day yet, retry on a later pass.
		return nil
	}

	pct := quote.Sub(*trade.SharePrice).
		Div(*trade.SharePrice).
		Mul(decimal.NewFromInt(100)).
		Round(4)
	return b.repo.SetReturn(ctx, trade.ID, window, pct)
}
