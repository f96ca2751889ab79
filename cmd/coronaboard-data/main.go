package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/coronaboard-data/internal/api/http"
	"github.com/i474232898/coronaboard-data/internal/config"
	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/refdata"
	"github.com/i474232898/coronaboard-data/internal/scheduler"
	"github.com/i474232898/coronaboard-data/internal/stats"
	"github.com/i474232898/coronaboard-data/internal/stats/providers"
	"github.com/i474232898/coronaboard-data/internal/store"
)

var (
	refreshAnchor string
	refreshInput  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "coronaboard-data",
		Short:        "Derives dashboard snapshots and chart series from daily country statistics",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRefreshCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API with scheduled refreshes",
		RunE:  runServe,
	}
}

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run a single refresh and write chart series",
		RunE:  runRefresh,
	}
	cmd.Flags().StringVar(&refreshAnchor, "anchor", "", "reference date YYYY-MM-DD (overrides ANCHOR_DATE)")
	cmd.Flags().StringVar(&refreshInput, "input", "", "read records from a JSON file instead of the API (overrides INPUT_FILE)")
	return cmd
}

// components holds everything built from config that commands share.
type components struct {
	cfg     *config.AppConfig
	service *stats.Service
	memory  *store.MemoryStore
	closers []func() error
}

func (c *components) Close() {
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}

func build(cfg *config.AppConfig) (*components, error) {
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	countries, err := refdata.LoadCountries(cfg.CountryInfoPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("country info not found, dashboard will carry no country metadata: %v", err)
	} else if err != nil {
		return nil, err
	}
	notices, err := refdata.LoadNotices(cfg.NoticePath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("notice list not found: %v", err)
	} else if err != nil {
		return nil, err
	}

	// Raw record provider, cached between refreshes.
	var provider stats.Provider
	if cfg.InputFile != "" {
		provider = providers.NewFileProvider(cfg.InputFile)
	} else {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		provider = providers.NewHTTPProvider(httpClient, cfg.APIBaseURL, providers.DefaultBackoff)
	}
	if cfg.CacheTTL > 0 {
		provider = providers.NewCachingProvider(provider, cfg.CacheTTL)
	}
	logger.Info("data source: %s", provider.Name())

	c := &components{cfg: cfg}
	c.memory = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	sinks := store.Fanout{c.memory}
	if cfg.OutputDir != "" {
		sinks = append(sinks, store.NewFileSink(cfg.OutputDir))
	}
	if cfg.SQLitePath != "" {
		sq, err := store.NewSQLiteSink(cfg.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite sink failed, continuing without it: %v", err)
		} else {
			sinks = append(sinks, sq)
			c.closers = append(c.closers, sq.Close)
		}
	}

	c.service = stats.NewService(provider, sinks, c.memory, countries, notices, stats.Options{
		Location:         cfg.Location,
		WriteConcurrency: cfg.WriteConcurrency,
	})
	return c, nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if refreshAnchor != "" {
		os.Setenv("ANCHOR_DATE", refreshAnchor)
	}
	if refreshInput != "" {
		os.Setenv("INPUT_FILE", refreshInput)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c, err := build(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	anchor, err := cfg.Anchor(time.Now())
	if err != nil {
		return err
	}

	result, err := c.service.Refresh(cmd.Context(), anchor)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reference date %s: %s countries in snapshot, %s series written\n",
		result.Dashboard.ReferenceDate,
		humanize.Comma(int64(len(result.Dashboard.GlobalStats))),
		humanize.Comma(int64(result.Written)))
	for _, f := range result.WriteFailures {
		fmt.Fprintf(cmd.ErrOrStderr(), "write failed for %s: %v\n", f.Key, f.Err)
	}
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c, err := build(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// Scheduler that periodically refreshes the dashboard.
	sched := scheduler.New(c.service, cfg.Anchor, cfg.RefreshCron, cfg.RefreshInterval, cfg.RunOnStart)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "coronaboard-data",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "coronaboard-data",
		})
	})

	httpapi.RegisterRoutes(app, c.service, cfg.Anchor)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped: %v", err)
		}
	}()
	logger.Info("listening on :%s", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown: %v", err)
	}
	return nil
}
