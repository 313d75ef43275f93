package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PortfolioGuard/internal/api"
	"PortfolioGuard/internal/notifier"
	"PortfolioGuard/internal/portfolio"
	"PortfolioGuard/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	apiKey     string
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve GET /check, run scheduled checks and answer Telegram commands",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one stop-loss check pass and print the result as JSON",
	RunE:  runCheck,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Print the stored positions",
	RunE:  runPositions,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("trading window", zap.Bool("writes_allowed_now", a.store.InWindow()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if a.cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log.Named("telegram"))
		if err != nil {
			return err
		}
		n = tn
	} else {
		a.log.Warn("telegram not configured, scheduled alerts are only logged")
	}

	credential := a.credential("")
	sched := scheduler.NewScheduler(ctx, a.checker, n, credential, a.log.Named("scheduler"))
	if credential != "" {
		if err := sched.Register(a.cfg.Schedule.CheckCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	} else {
		a.log.Warn("no data_source.api_key, scheduled checks disabled")
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		a.log.Info("RUN_ON_START enabled, executing check now")
		go sched.RunCheckNow()
	}

	srv := api.NewServer(a.checker, a.log.Named("http"))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(a.cfg.HTTP.Addr) }()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown", zap.Error(err))
	}
	a.log.Info("portfolio guard stopped")
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.checker.Check(cmd.Context(), a.credential(apiKey))
	if errors.Is(err, portfolio.ErrMissingCredential) {
		return fmt.Errorf("%w: pass --api-key or set FINNHUB_API_KEY", err)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runPositions(cmd *cobra.Command, _ []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	positions, err := a.checker.Positions(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(positions)
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "guard",
		Short:        "Stop-loss alerts for a small equity/ETF portfolio",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the configuration file")
	checkCmd.Flags().StringVar(&apiKey, "api-key", "", "Quote provider API key (overrides data_source.api_key)")

	rootCmd.AddCommand(serveCmd, checkCmd, positionsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing guard CLI: %s\n", err)
		os.Exit(1)
	}
}
