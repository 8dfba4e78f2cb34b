package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/insiderwatch/insiderwatch/internal/config"
	"github.com/insiderwatch/insiderwatch/internal/delivery/dispatch"
	"github.com/insiderwatch/insiderwatch/internal/delivery/email"
	"github.com/insiderwatch/insiderwatch/internal/delivery/httpapi"
	"github.com/insiderwatch/insiderwatch/internal/delivery/sms"
	"github.com/insiderwatch/insiderwatch/internal/infra/db"
	"github.com/insiderwatch/insiderwatch/internal/infra/log"
	"github.com/insiderwatch/insiderwatch/internal/infra/quotes"
	"github.com/insiderwatch/insiderwatch/internal/infra/secapi"
	"github.com/insiderwatch/insiderwatch/internal/infra/secstream"
	"github.com/insiderwatch/insiderwatch/internal/refdata"
	"github.com/insiderwatch/insiderwatch/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	cfg          config.Config
	ingest       *usecase.IngestManager
	rematch      *usecase.RematchPoller
	returns      *usecase.ReturnsBackfill
	dailyDigest  *usecase.DailyDigestJob
	weeklyReport *usecase.WeeklySectorReportJob
	api          *httpapi.Server
	logger       *zap.Logger
	cleanupFn    func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	taxonomy, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	subRepo := db.NewSubscriptionRepository(dbConn)
	tradeRepo := db.NewTradeRepository(dbConn)
	userRepo := db.NewUserRepository(dbConn)

	streamFactory := secstream.NewWSFactory(cfg.SECStreamURL, cfg.SECAPIKey, cfg.StreamReadTimeout, logger)
	tradeClient := secapi.NewClient(cfg.SECAPIBaseURL, cfg.SECAPIKey, cfg.SECAPITimeout, logger)
	quoteClient := quotes.NewClient(cfg.QuotesBaseURL, cfg.QuotesTimeout, logger)

	emailSender := email.NewClient(cfg.EmailBaseURL, cfg.EmailAPIKey, cfg.EmailFrom, cfg.EmailTimeout, logger)
	smsSender := sms.NewClient(cfg.SMSBaseURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSMessagingServiceSID, cfg.SMSTimeout, logger)
	dispatcher := dispatch.NewDispatcher(emailSender, smsSender, logger)

	matcher := usecase.NewMatchUsecase(subRepo)
	normalizer := usecase.NewEventNormalizer(taxonomy, logger)

	ingest := usecase.NewIngestManager(
		streamFactory,
		tradeClient,
		tradeRepo,
		matcher,
		normalizer,
		dispatcher,
		cfg.FilingFetchDelay,
		cfg.StreamReconnectDelay,
		logger,
	)
	rematch := usecase.NewRematchPoller(tradeRepo, matcher, normalizer, dispatcher, logger)
	returns := usecase.NewReturnsBackfill(tradeRepo, quoteClient, logger)
	dailyDigest := usecase.NewDailyDigestJob(tradeRepo, userRepo, emailSender, logger)
	weeklyReport := usecase.NewWeeklySectorReportJob(tradeRepo, userRepo, emailSender, logger)

	userUC := usecase.NewUserUsecase(userRepo)
	subUC := usecase.NewSubscriptionUsecase(userRepo, subRepo, taxonomy)
	api := httpapi.NewServer(userUC, subUC, logger)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{
		cfg:          cfg,
		ingest:       ingest,
		rematch:      rematch,
		returns:      returns,
		dailyDigest:  dailyDigest,
		weeklyReport: weeklyReport,
		api:          api,
		logger:       logger,
		cleanupFn:    cleanup,
	}, nil
}

func loadTaxonomy(cfg config.Config) (*refdata.Taxonomy, error) {
	if cfg.TaxonomyPath == "" {
		return refdata.Default(), nil
	}
	f, err := os.Open(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return refdata.Load(f)
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("insiderwatch service starting")

	go a.rematch.Run(ctx, a.cfg.RematchInterval)
	go a.returns.Run(ctx, a.cfg.ReturnsInterval)
	go a.dailyDigest.Run(ctx, a.cfg.DailyDigestInterval)
	go a.weeklyReport.Run(ctx, a.cfg.WeeklyReportInterval)
	go a.serveHTTP(ctx)

	a.logger.Info("insiderwatch service started")
	return a.ingest.Run(ctx)
}

func (a *App) serveHTTP(ctx context.Context) {
	srv := &http.Server{Addr: a.cfg.HTTPAddr, Handler: a.api.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http server shutdown", zap.Error(err))
		}
	}()

	a.logger.Info("http api listening", zap.String("addr", a.cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("http server failed", zap.Error(err))
	}
}

func (a *App) Shutdown() {
	a.logger.Info("insiderwatch service shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
