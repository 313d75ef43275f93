package main

import (
	"fmt"

	"PortfolioGuard/internal/config"
	"PortfolioGuard/internal/logger"
	"PortfolioGuard/internal/portfolio"
	"PortfolioGuard/internal/quote"
	"PortfolioGuard/internal/risk"
	"PortfolioGuard/internal/store"

	"go.uber.org/zap"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	backend store.Backend
	checker *portfolio.Checker
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var backend store.Backend
	switch cfg.Store.Backend {
	case "sqlite":
		db, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		backend = db
	default:
		backend = store.NewJSONFile(cfg.Store.File)
	}

	st := store.New(backend, store.Options{
		Seed: cfg.Store.Seed,
		Window: store.TradingWindow{
			StartHour: *cfg.Store.WindowStartHour,
			EndHour:   *cfg.Store.WindowEndHour,
		},
		Location: loc,
		Logger:   log.Named("store"),
	})

	var provider quote.Provider
	switch cfg.DataSource.Provider {
	case "yahoo":
		provider = quote.NewYahooProvider(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout)
	default:
		provider = quote.NewFinnhubProvider(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.RatePerMinute)
	}
	provider = quote.NewCachedProvider(provider, cfg.DataSource.CacheTTL)

	evaluator := risk.NewEvaluator(provider, risk.Config{
		Limits: risk.Limits{
			PerPosition: cfg.Risk.PerPositionLimit,
			Hard:        cfg.Risk.HardLimit,
			Currency:    cfg.Risk.CurrencySymbol,
		},
		FetchTimeout: cfg.DataSource.Timeout,
		Concurrency:  cfg.DataSource.Concurrency,
	}, log.Named("risk"))

	log.Info("portfolio guard configured",
		zap.String("provider", provider.Name()),
		zap.String("store", backend.Name()),
		zap.Float64("per_position_limit", cfg.Risk.PerPositionLimit),
		zap.Float64("hard_limit", cfg.Risk.HardLimit))

	return &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		backend: backend,
		checker: portfolio.NewChecker(st, evaluator, log.Named("portfolio")),
	}, nil
}

// credential picks the quote provider key: an explicit override, then the
// configured key. Yahoo needs no key, but a pass still requires one.
func (a *app) credential(override string) string {
	if override != "" {
		return override
	}
	if a.cfg.DataSource.APIKey != "" {
		return a.cfg.DataSource.APIKey
	}
	if a.cfg.DataSource.Provider == "yahoo" {
		return "anonymous"
	}
	return ""
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}
