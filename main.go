package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"volleyball-league/internal/config"
	"volleyball-league/internal/league"
	"volleyball-league/internal/logging"
	"volleyball-league/internal/store"
	"volleyball-league/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//go:embed seed/dev.yaml
var devSeed []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.App, cfg.LogLevel, os.Stderr)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server terminated with error")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	backend, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.Backend()).Msg("store ready")

	if err := seed(ctx, cfg, backend, logger); err != nil {
		return err
	}

	var appStore store.Store = backend
	opts := web.Options{
		Logger:       logger,
		WriteKeyHash: cfg.WriteKeyHash,
		Dev:          cfg.IsDev(),
	}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := store.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("store metrics: %w", err)
		}
		appStore = store.Instrument(backend, metrics)
		opts.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	manager := league.New(appStore, league.WithLogger(logger.With().Str("component", "league").Logger()))
	if err := manager.Init(ctx); err != nil {
		return fmt.Errorf("init league: %w", err)
	}
	if season, ok := manager.CurrentSeason(); ok {
		logger.Info().Str("season", season.Name).Int("players", len(manager.Players())).Msg("league loaded")
	}

	handler := web.NewServer(manager, opts).Routes()

	if cfg.InLambda() {
		logger.Info().Msg("starting in Lambda mode")
		lambda.Start(httpadapter.New(handler).ProxyWithContext)
		return nil
	}
	return serve(ctx, cfg, handler, logger)
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.Backend() {
	case config.BackendPostgres:
		pg, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return pg, closeQuietly(pg), nil
	case config.BackendSQLite:
		lite, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return lite, closeQuietly(lite), nil
	}
	return store.NewMemoryStore(), func() {}, nil
}

func closeQuietly(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

// seed fills an empty store from SEED_FILE, or from the bundled dev data
// when running the in-memory store in dev.
func seed(ctx context.Context, cfg config.Config, st store.Store, logger zerolog.Logger) error {
	var (
		r      io.Reader
		source string
	)
	switch {
	case cfg.SeedFile != "":
		f, err := os.Open(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("open seed: %w", err)
		}
		defer f.Close()
		r, source = f, cfg.SeedFile
	case cfg.IsDev() && cfg.Backend() == config.BackendMemory:
		r, source = bytes.NewReader(devSeed), "seed/dev.yaml"
	default:
		return nil
	}

	data, err := store.LoadSeed(r)
	if err != nil {
		return fmt.Errorf("load seed %s: %w", source, err)
	}
	applied, err := store.ApplySeed(ctx, st, data)
	if err != nil {
		return fmt.Errorf("apply seed %s: %w", source, err)
	}
	if applied {
		logger.Info().Str("source", source).Int("players", len(data.Players)).Int("games", len(data.Games)).Msg("store seeded")
	} else {
		logger.Debug().Str("source", source).Msg("store not empty, seed skipped")
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Msg("starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info().Msg("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})
	return g.Wait()
}
