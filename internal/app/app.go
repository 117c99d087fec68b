package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/config"
	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/delivery/telegram"
	"github.com/arskydev/dexwatch/internal/infra/db"
	"github.com/arskydev/dexwatch/internal/infra/dexscreener"
	"github.com/arskydev/dexwatch/internal/infra/log"
	"github.com/arskydev/dexwatch/internal/infra/rugcheck"
	"github.com/arskydev/dexwatch/internal/notify"
	"github.com/arskydev/dexwatch/internal/pipeline"
	"github.com/arskydev/dexwatch/internal/ratelimit"
	"github.com/arskydev/dexwatch/internal/risk"
	"github.com/arskydev/dexwatch/internal/scanner"
	"github.com/arskydev/dexwatch/internal/volume"
)

type App struct {
	bot       *telegram.Bot
	scanner   *scanner.Scanner
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	auditRepo := db.NewAuditRepository(dbConn)

	gate := ratelimit.New(ratelimit.Config{
		CallsPerWindow: cfg.APICallsPerMinute,
		Window:         time.Minute,
		BurstLimit:     cfg.APIBurstLimit,
		BurstWindow:    cfg.APIBurstWindow,
	}, logger)

	dexClient := dexscreener.NewClient(cfg.DexscreenerBaseURL, cfg.DexscreenerTimeout, cfg.APICallsPerMinute, logger)
	rugClient := rugcheck.NewClient(cfg.RugcheckBaseURL, cfg.RugcheckTimeout, logger)
	market := ratelimit.NewGatedMarketSource(dexClient, gate)
	reports := ratelimit.NewGatedReportSource(rugClient, gate)

	tracker := cooldown.NewTracker(cfg.CooldownWindow)
	evaluator := risk.NewEvaluator(risk.Config{
		MinLiquidityUSD:  cfg.MinLiquidityUSD,
		MaxTaxPct:        cfg.MaxTaxPct,
		RugScoreCeiling:  cfg.RugScoreCeiling,
		HoneypotHardFail: cfg.HoneypotHardFail,
		OwnerHardFail:    cfg.OwnerHardFail,
		LiqLockHardFail:  cfg.LiqLockHardFail,
	}, reports, market, logger)

	filterCfg := volume.DefaultConfig()
	filterCfg.BaseRatioThreshold = cfg.VolumeMcapRatio
	filter := volume.NewFilter(filterCfg, logger)

	backlog := pipeline.NewBacklog(cfg.BacklogCapacity, cfg.BacklogMaxAge)
	pipe := pipeline.New(pipeline.Config{
		MinTokenAge:       cfg.MinTokenAge,
		MinLiquidityUSD:   cfg.MinLiquidityUSD,
		MinMarketCapUSD:   cfg.MinMarketCapUSD,
		MinVolume24hUSD:   cfg.MinVolume24hUSD,
		MinUniqueBuys1h:   cfg.MinUniqueBuys1h,
		BuySellRatioMax:   cfg.BuySellRatioMax,
		LiquidityHardFail: cfg.LiquidityHardFail,
		MarketCapHardFail: cfg.MarketCapHardFail,
		VolumeHardFail:    cfg.VolumeHardFail,
		BuyCountHardFail:  cfg.BuyCountHardFail,
		FakeVolumeReject:  cfg.FakeVolumeReject,
	}, tracker, evaluator, filter, backlog, auditRepo, logger)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	notifier := telegram.NewNotifier(api, cfg.TelegramChatID, logger)

	quota := notify.NewQuota(cfg.AlertsPerMinute)
	retry := notify.NewRetryPolicy(cfg.MaxRetryAttempts, cfg.RetryBaseDelay)
	scheduler := notify.NewScheduler(tracker, gate, notifier, quota, retry, backlog, auditRepo, logger)

	scan := scanner.New(scanner.Config{
		Chains:          cfg.SupportedChains,
		MinMarketCapUSD: cfg.MinMarketCapUSD,
		MaxMarketCapUSD: cfg.MaxMarketCapUSD,
		TickDelay:       cfg.TickDelay,
	}, market, pipe, scheduler, tracker, logger)

	handlers := telegram.NewHandlers(auditRepo, tracker, gate, quota, scan, cfg.TelegramChatID, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{bot: bot, scanner: scan, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("dexwatch service starting")

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- a.scanner.Run(ctx)
	}()

	a.logger.Info("dexwatch service started")
	if err := a.bot.Start(ctx); err != nil {
		return err
	}
	return <-scanDone
}

func (a *App) Shutdown() {
	a.logger.Info("dexwatch service shutting down")
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
