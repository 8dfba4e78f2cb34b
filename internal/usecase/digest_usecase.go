package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"go.uber.org/zap"
)

// The digest highlights only the largest trades; counts still reflect the
// whole day.
const digestHighlightLimit = 5

// DigestSender delivers the scheduled summary emails.
type DigestSender interface {
	SendDailyDigest(ctx context.Context, to string, digest domain.DailyDigest) error
	SendWeeklySectorReport(ctx context.Context, to string, report domain.WeeklySectorReport) error
}

// DailyDigestJob emails each opted-in user a summary of the day's insider
// trades. No trades or no opted-in users makes the pass a no-op.
type DailyDigestJob struct {
	trades domain.TradeRepository
	users  domain.UserRepository
	sender DigestSender
	logger *zap.Logger
}

func NewDailyDigestJob(trades domain.TradeRepository, users domain.UserRepository, sender DigestSender, logger *zap.Logger) *DailyDigestJob {
	return &DailyDigestJob{trades: trades, users: users, sender: sender, logger: logger}
}

func (j *DailyDigestJob) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logger.Error("daily digest failed", zap.Error(err))
			}
		}
	}
}

func (j *DailyDigestJob) RunOnce(ctx context.Context) error {
	trades, err := j.trades.ListDisclosedSince(ctx, time.Now().AddDate(0, 0, -1))
	if err != nil {
		return err
	}

	digest := buildDailyDigest(trades)
	if digest.PurchaseCount == 0 && digest.SaleCount == 0 {
		j.logger.Info("no trades for daily digest")
		return nil
	}

	recipients, err := j.users.ListByEmailPreference(ctx, PrefDailyDigest)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		j.logger.Info("no users opted into daily digest")
		return nil
	}

	for _, user := range recipients {
		if err := j.sender.SendDailyDigest(ctx, user.Email, digest); err != nil {
			j.logger.Warn("daily digest delivery failed",
				zap.String("email", user.Email), zap.Error(err))
		}
	}

	j.logger.Info("daily digest sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("purchases", digest.PurchaseCount),
		zap.Int("sales", digest.SaleCount))
	return nil
}

func buildDailyDigest(trades []domain.Trade) domain.DailyDigest {
	var digest domain.DailyDigest
	for _, trade := range trades {
		switch trade.TransactionType {
		case domain.TransactionPurchase:
			digest.Purchases = append(digest.Purchases, trade)
			digest.PurchaseCount++
		case domain.TransactionSale:
			digest.Sales = append(digest.Sales, trade)
			digest.SaleCount++
		}
	}
	sortByAmountDesc(digest.Purchases)
	sortByAmountDesc(digest.Sales)
	if len(digest.Purchases) > digestHighlightLimit {
		digest.Purchases = digest.Purchases[:digestHighlightLimit]
	}
	if len(digest.Sales) > digestHighlightLimit {
		digest.Sales = digest.Sales[:digestHighlightLimit]
	}
	return digest
}

// WeeklySectorReportJob emails each opted-in user the week's insider
// activity grouped by sector. Trades without a sector label are left out,
// the sector is the whole point of the report.
type WeeklySectorReportJob struct {
	trades domain.TradeRepository
	users  domain.UserRepository
	sender DigestSender
	logger *zap.Logger
}

func NewWeeklySectorReportJob(trades domain.TradeRepository, users domain.UserRepository, sender DigestSender, logger *zap.Logger) *WeeklySectorReportJob {
	return &WeeklySectorReportJob{trades: trades, users: users, sender: sender, logger: logger}
}

func (j *WeeklySectorReportJob) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logger.Error("weekly sector report failed", zap.Error(err))
			}
		}
	}
}

func (j *WeeklySectorReportJob) RunOnce(ctx context.Context) error {
	trades, err := j.trades.ListDisclosedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return err
	}

	_, week := time.Now().ISOWeek()
	report := buildWeeklySectorReport(trades, week)
	if len(report.Sectors) == 0 {
		j.logger.Info("no sector activity for weekly report")
		return nil
	}

	recipients, err := j.users.ListByEmailPreference(ctx, PrefWeeklySectorReport)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		j.logger.Info("no users opted into weekly sector report")
		return nil
	}

	for _, user := range recipients {
		if err := j.sender.SendWeeklySectorReport(ctx, user.Email, report); err != nil {
			j.logger.Warn("weekly sector report delivery failed",
				zap.String("email", user.Email), zap.Error(err))
		}
	}

	j.logger.Info("weekly sector report sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("sectors", len(report.Sectors)))
	return nil
}

func buildWeeklySectorReport(trades []domain.Trade, week int) domain.WeeklySectorReport {
	bySector := make(map[string]*domain.SectorActivity)
	for _, trade := range trades {
		if trade.Sector == "" {
			continue
		}
		activity, ok := bySector[trade.Sector]
		if !ok {
			activity = &domain.SectorActivity{Sector: trade.Sector}
			bySector[trade.Sector] = activity
		}
		switch trade.TransactionType {
		case domain.TransactionPurchase:
			activity.Purchases = append(activity.Purchases, trade)
		case domain.TransactionSale:
			activity.Sales = append(activity.Sales, trade)
		}
	}

	report := domain.WeeklySectorReport{WeekNumber: week}
	for _, activity := range bySector {
		if len(activity.Purchases) == 0 && len(activity.Sales) == 0 {
			continue
		}
		sortByAmountDesc(activity.Purchases)
		sortByAmountDesc(activity.Sales)
		report.Sectors = append(report.Sectors, *activity)
	}
	sort.Slice(report.Sectors, func(i, k int) bool {
		return report.Sectors[i].Sector < report.Sectors[k].Sector
	})
	return report
}

func sortByAmountDesc(trades []domain.Trade) {
	sort.SliceStable(trades, func(i, k int) bool {
		a, b := trades[i].TotalAmountSpent, trades[k].TotalAmountSpent
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.GreaterThan(*b)
	})
}
