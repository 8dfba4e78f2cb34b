package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDigestSender struct {
	dailyTo  []string
	weeklyTo []string
	daily    []domain.DailyDigest
	weekly   []domain.WeeklySectorReport
	err      error
}

func (s *recordingDigestSender) SendDailyDigest(ctx context.Context, to string, digest domain.DailyDigest) error {
	s.dailyTo = append(s.dailyTo, to)
	s.daily = append(s.daily, digest)
	return s.err
}

func (s *recordingDigestSender) SendWeeklySectorReport(ctx context.Context, to string, report domain.WeeklySectorReport) error {
	s.weeklyTo = append(s.weeklyTo, to)
	s.weekly = append(s.weekly, report)
	return s.err
}

func optedInUsers(settings ...string) *fakeUserRepo {
	users := make(map[uint]*domain.User, len(settings))
	for i, s := range settings {
		id := uint(i + 1)
		users[id] = &domain.User{
			ID:       id,
			Email:    string(rune('a'+i)) + "@example.com",
			Active:   true,
			Settings: json.RawMessage(s),
		}
	}
	return &fakeUserRepo{users: users}
}

func purchase(ticker, amount string) domain.Trade {
	return domain.Trade{Ticker: ticker, TransactionType: domain.TransactionPurchase, TotalAmountSpent: decPtr(amount)}
}

func sale(ticker, amount string) domain.Trade {
	return domain.Trade{Ticker: ticker, TransactionType: domain.TransactionSale, TotalAmountSpent: decPtr(amount)}
}

func TestBuildDailyDigest_SplitsAndCaps(t *testing.T) {
	trades := []domain.Trade{
		purchase("A", "100"), purchase("B", "700"), purchase("C", "300"),
		purchase("D", "500"), purchase("E", "200"), purchase("F", "600"),
		purchase("G", "400"),
		sale("H", "50"), sale("I", "150"),
	}

	digest := buildDailyDigest(trades)

	// Counts cover every trade of the day even when the highlight list
	// is capped.
	assert.Equal(t, 7, digest.PurchaseCount)
	assert.Equal(t, 2, digest.SaleCount)
	require.Len(t, digest.Purchases, 5)
	require.Len(t, digest.Sales, 2)

	// Highlights are the largest trades first.
	assert.Equal(t, "B", digest.Purchases[0].Ticker)
	assert.Equal(t, "F", digest.Purchases[1].Ticker)
	assert.Equal(t, "I", digest.Sales[0].Ticker)
}

func TestBuildDailyDigest_NilAmountsSortLast(t *testing.T) {
	trades := []domain.Trade{
		{Ticker: "A", TransactionType: domain.TransactionPurchase},
		purchase("B", "10"),
	}

	digest := buildDailyDigest(trades)
	require.Len(t, digest.Purchases, 2)
	assert.Equal(t, "B", digest.Purchases[0].Ticker)
}

func TestBuildWeeklySectorReport_GroupsBySector(t *testing.T) {
	tech := purchase("AAPL", "100")
	tech.Sector = "technology"
	energy := sale("XOM", "200")
	energy.Sector = "energy"
	unlabeled := purchase("ZZZZ", "999")

	report := buildWeeklySectorReport([]domain.Trade{tech, energy, unlabeled}, 36)

	assert.Equal(t, 36, report.WeekNumber)
	require.Len(t, report.Sectors, 2)
	assert.Equal(t, "energy", report.Sectors[0].Sector)
	assert.Equal(t, "technology", report.Sectors[1].Sector)
	assert.Len(t, report.Sectors[0].Sales, 1)
	assert.Len(t, report.Sectors[1].Purchases, 1)
}

func TestDailyDigestRunOnce_SendsToOptedInUsersOnly(t *testing.T) {
	repo := &fakeTradeRepo{trades: []domain.Trade{purchase("AAPL", "100")}}
	users := optedInUsers(
		`{"daily_digest":true}`,
		`{"daily_digest":false}`,
		`{"weekly_sector_report":true}`,
	)
	sender := &recordingDigestSender{}

	job := NewDailyDigestJob(repo, users, sender, zap.NewNop())
	require.NoError(t, job.RunOnce(context.Background()))

	require.Len(t, sender.dailyTo, 1)
	assert.Equal(t, "a@example.com", sender.dailyTo[0])
	assert.Equal(t, 1, sender.daily[0].PurchaseCount)
}

func TestDailyDigestRunOnce_NoTradesIsNoOp(t *testing.T) {
	repo := &fakeTradeRepo{}
	users := optedInUsers(`{"daily_digest":true}`)
	sender := &recordingDigestSender{}

	job := NewDailyDigestJob(repo, users, sender, zap.NewNop())
	require.NoError(t, job.RunOnce(context.Background()))
	assert.Empty(t, sender.dailyTo)
}

func TestDailyDigestRunOnce_DeliveryFailureDoesNotFailPass(t *testing.T) {
	repo := &fakeTradeRepo{trades: []domain.Trade{sale("TSLA", "5")}}
	users := optedInUsers(`{"daily_digest":true}`, `{"daily_digest":true}`)
	sender := &recordingDigestSender{err: errors.New("smtp down")}

	job := NewDailyDigestJob(repo, users, sender, zap.NewNop())
	require.NoError(t, job.RunOnce(context.Background()))
	assert.Len(t, sender.dailyTo, 2)
}

func TestWeeklySectorReportRunOnce_SendsGroupedReport(t *testing.T) {
	tech := purchase("AAPL", "100")
	tech.Sector = "technology"
	repo := &fakeTradeRepo{trades: []domain.Trade{tech}}
	users := optedInUsers(`{"weekly_sector_report":true}`, `{"daily_digest":true}`)
	sender := &recordingDigestSender{}

	job := NewWeeklySectorReportJob(repo, users, sender, zap.NewNop())
	require.NoError(t, job.RunOnce(context.Background()))

	require.Len(t, sender.weeklyTo, 1)
	assert.Equal(t, "a@example.com", sender.weeklyTo[0])
	require.Len(t, sender.weekly[0].Sectors, 1)
	assert.Equal(t, "technology", sender.weekly[0].Sectors[0].Sector)
}

func TestWeeklySectorReportRunOnce_AllUnlabeledIsNoOp(t *testing.T) {
	repo := &fakeTradeRepo{trades: []domain.Trade{purchase("ZZZZ", "1")}}
	users := optedInUsers(`{"weekly_sector_report":true}`)
	sender := &recordingDigestSender{}

	job := NewWeeklySectorReportJob(repo, users, sender, zap.NewNop())
	require.NoError(t, job.RunOnce(context.Background()))
	assert.Empty(t, sender.weeklyTo)
}
