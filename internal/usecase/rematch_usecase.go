package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"go.uber.org/zap"
)

// RematchPoller is the scheduled trigger sharing the stream ingester's
// matching contract: on every tick it re-runs matching over trades disclosed
// since the previous pass, so subscriptions created after a trade streamed
// in still pick it up within one interval.
type RematchPoller struct {
	repo       domain.TradeRepository
	matcher    *MatchUsecase
	normalizer *EventNormalizer
	dispatcher Dispatcher
	logger     *zap.Logger

	mu      sync.Mutex
	lastRun time.Time
}

func NewRematchPoller(
	repo domain.TradeRepository,
	matcher *MatchUsecase,
	normalizer *EventNormalizer,
	dispatcher Dispatcher,
	logger *zap.Logger,
) *RematchPoller {
	return &RematchPoller{
		repo:       repo,
		matcher:    matcher,
		normalizer: normalizer,
		dispatcher: dispatcher,
		logger:     logger,
		lastRun:    time.Now(),
	}
}

func (p *RematchPoller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.logger.Error("rematch pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce re-matches every trade disclosed since the previous pass, but only
// against subscriptions created after the trade's last matching pass: the
// inline trigger already delivered to everyone subscribed before it. The
// cursor only advances when the pass read the trade list successfully.
func (p *RematchPoller) RunOnce(ctx context.Context) error {
	p.mu.Lock()
	since := p.lastRun
	p.mu.Unlock()

	started := time.Now()
	trades, err := p.repo.ListDisclosedSince(ctx, since)
	if err != nil {
		return err
	}

	for _, trade := range trades {
		var matchedAt time.Time
		if trade.MatchedAt != nil {
			matchedAt = *trade.MatchedAt
		}

		event := p.normalizer.EventFromTrade(trade)
		results, err := p.matcher.FindRecipientsSubscribedAfter(ctx, event, matchedAt)
		if err != nil {
			return err
		}
		if len(results) > 0 {
			if err := p.dispatcher.Dispatch(ctx, trade, results); err != nil {
				p.logger.Warn("dispatch failed during rematch",
					zap.Uint("trade_id", trade.ID), zap.Error(err))
			}
		}

		if err := p.repo.MarkMatched(ctx, trade.ID, started); err != nil {
			p.logger.Warn("failed to record matching pass",
				zap.Uint("trade_id", trade.ID), zap.Error(err))
		}
	}

	p.mu.Lock()
	p.lastRun = started
	p.mu.Unlock()

	p.logger.Info("rematch pass complete",
		zap.Int("trades", len(trades)),
		zap.Duration("duration", time.Since(started)))
	return nil
}
