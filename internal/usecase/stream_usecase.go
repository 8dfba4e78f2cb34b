package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"go.uber.org/zap"
)

// Dispatcher is the delivery boundary. It receives the trade and the
// deduplicated recipient list and owns everything about transmission,
// including how the opaque settings payload is interpreted.
type Dispatcher interface {
	Dispatch(ctx context.Context, trade domain.Trade, results []domain.MatchResult) error
}

// IngestManager drives the per-event trigger: it consumes the regulatory
// filing stream, resolves each Form 4 headline into trade records, persists
// them and runs one matching pass per trade. A failure on one trade never
// stops the stream.
type IngestManager struct {
	stream     domain.FilingStreamFactory
	trades     domain.InsiderTradeClient
	repo       domain.TradeRepository
	matcher    *MatchUsecase
	normalizer *EventNormalizer
	dispatcher Dispatcher
	logger     *zap.Logger

	fetchDelay     time.Duration
	reconnectDelay time.Duration
}

func NewIngestManager(
	stream domain.FilingStreamFactory,
	trades domain.InsiderTradeClient,
	repo domain.TradeRepository,
	matcher *MatchUsecase,
	normalizer *EventNormalizer,
	dispatcher Dispatcher,
	fetchDelay time.Duration,
	reconnectDelay time.Duration,
	logger *zap.Logger,
) *IngestManager {
	return &IngestManager{
		stream:         stream,
		trades:         trades,
		repo:           repo,
		matcher:        matcher,
		normalizer:     normalizer,
		dispatcher:     dispatcher,
		fetchDelay:     fetchDelay,
		reconnectDelay: reconnectDelay,
		logger:         logger,
	}
}

// Run consumes the stream until ctx is cancelled, reconnecting after each
// broken session.
func (m *IngestManager) Run(ctx context.Context) error {
	for {
		if err := m.runSession(ctx); err != nil {
			m.logger.Error("filing stream session ended", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(m.reconnectDelay):
		}
	}
}

func (m *IngestManager) runSession(ctx context.Context) error {
	client, err := m.stream.Connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		filings, err := client.Receive(ctx)
		if err != nil {
			return err
		}

		for _, filing := range filings {
			if filing.FormType != "4" && filing.FormType != "4/A" {
				continue
			}
			if filing.AccessionNo == "" {
				continue
			}
			m.handleFiling(ctx, filing)
		}
	}
}

func (m *IngestManager) handleFiling(ctx context.Context, filing domain.Filing) {
	m.logger.Info("form 4 filing received",
		zap.String("ticker", filing.Ticker),
		zap.String("accession_no", filing.AccessionNo))

	// The filing index lags the stream; give it time to catch up before
	// querying the transaction table.
	if m.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.fetchDelay):
		}
	}

	trades, err := m.trades.FetchByAccessionNo(ctx, filing.AccessionNo)
	if err != nil {
		if errors.Is(err, domain.ErrFilingNotFound) {
			m.logger.Warn("filing not yet indexed", zap.String("accession_no", filing.AccessionNo))
		} else {
			m.logger.Warn("failed to fetch insider trades",
				zap.String("accession_no", filing.AccessionNo), zap.Error(err))
		}
		return
	}

	for i := range trades {
		trade := trades[i]
		trade.Link = filing.Link
		m.normalizer.EnrichTrade(&trade)

		if err := m.repo.Insert(ctx, &trade); err != nil {
			m.logger.Warn("failed to store trade",
				zap.String("accession_no", trade.AccessionNo), zap.Error(err))
		}

		passStart := time.Now()
		event := m.normalizer.EventFromTrade(trade)
		results, err := m.matcher.FindRecipients(ctx, event)
		if err != nil {
			m.logger.Error("matching pass failed",
				zap.String("accession_no", trade.AccessionNo), zap.Error(err))
			continue
		}

		if len(results) > 0 {
			if err := m.dispatcher.Dispatch(ctx, trade, results); err != nil {
				m.logger.Warn("dispatch failed",
					zap.String("accession_no", trade.AccessionNo), zap.Error(err))
			}
		} else {
			m.logger.Debug("no recipients for trade", zap.String("ticker", trade.Ticker))
		}

		// Existing subscriptions were covered by this pass; the scheduled
		// re-match only owes the trade to later subscribers.
		if trade.ID != 0 {
			if err := m.repo.MarkMatched(ctx, trade.ID, passStart); err != nil {
				m.logger.Warn("failed to record matching pass",
					zap.Uint("trade_id", trade.ID), zap.Error(err))
			}
		}
	}
}
