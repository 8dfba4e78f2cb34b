package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrFilingNotFound = errors.New("filing not found")

// Filing is one headline record from the regulatory filing stream.
type Filing struct {
	FormType    string
	Ticker      string
	CompanyName string
	AccessionNo string
	Link        string
}

type FilingStreamClient interface {
	Receive(ctx context.Context) ([]Filing, error)
	Close() error
}

type FilingStreamFactory interface {
	Connect(ctx context.Context) (FilingStreamClient, error)
}

// InsiderTradeClient fetches the full transaction table behind a filing and
// flattens it into trade records, one per purchase/sale code group.
type InsiderTradeClient interface {
	FetchByAccessionNo(ctx context.Context, accessionNo string) ([]Trade, error)
}

// QuoteClient serves historical daily closes for the returns back-fill job.
// A nil price with a nil error means no quote exists for that day.
type QuoteClient interface {
	ClosingPrice(ctx context.Context, ticker string, day time.Time) (*decimal.Decimal, error)
}
