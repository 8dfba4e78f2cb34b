package usecase

import (
	"strings"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/insiderwatch/insiderwatch/internal/refdata"
	"go.uber.org/zap"
)

// EventNormalizer builds the matching view of a trade. It translates stored
// display labels into taxonomy keys so equality filters compare against the
// same encoding the subscription author wrote. Values outside the taxonomy
// are dropped from the event (they could never equality-match) and logged
// here, not by the engine.
type EventNormalizer struct {
	taxonomy *refdata.Taxonomy
	logger   *zap.Logger
}

func NewEventNormalizer(taxonomy *refdata.Taxonomy, logger *zap.Logger) *EventNormalizer {
	return &EventNormalizer{taxonomy: taxonomy, logger: logger}
}

func (n *EventNormalizer) EventFromTrade(trade domain.Trade) domain.TradeEvent {
	event := domain.TradeEvent{
		SharePrice:                  trade.SharePrice,
		TotalAmountSpent:            trade.TotalAmountSpent,
		TotalShares:                 trade.TotalShares,
		TotalSharesAfterTransaction: trade.TotalSharesAfterTransaction,
		ChangeInSharesPercentage:    trade.ChangeInSharesPercentage,
	}

	if ticker := strings.ToUpper(strings.TrimSpace(trade.Ticker)); ticker != "" {
		event.Ticker = &ticker
	}

	if code := strings.ToUpper(strings.TrimSpace(trade.TransactionType)); code != "" {
		event.TransactionType = &code
	}

	if trade.Sector != "" {
		if key, ok := n.taxonomy.SectorKey(trade.Sector); ok {
			event.Sector = &key
		} else {
			n.logger.Warn("sector outside taxonomy",
				zap.String("sector", trade.Sector),
				zap.String("ticker", trade.Ticker))
		}
	}

	if trade.MarketCap != "" {
		if key, ok := n.taxonomy.MarketCapKey(trade.MarketCap); ok {
			event.MarketCap = &key
		} else {
			n.logger.Warn("market cap outside taxonomy",
				zap.String("market_cap", trade.MarketCap),
				zap.String("ticker", trade.Ticker))
		}
	}

	return event
}

// EnrichTrade fills the sector and market-cap labels of an ingested trade
// from the ticker reference table. Filings do not carry either value, the
// mapping table is the single source.
func (n *EventNormalizer) EnrichTrade(trade *domain.Trade) {
	if trade.Sector == "" {
		if key, ok := n.taxonomy.SectorForTicker(trade.Ticker); ok {
			if label, ok := n.taxonomy.SectorLabel(key); ok {
				trade.Sector = label
			}
		}
	}
	if trade.MarketCap == "" {
		if key, ok := n.taxonomy.MarketCapForTicker(trade.Ticker); ok {
			if label, ok := n.taxonomy.MarketCapLabel(key); ok {
				trade.MarketCap = label
			}
		}
	}
}
