package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varbrowser/api/fixtures"
	"varbrowser/api/models"
	"varbrowser/api/observability"
	"varbrowser/api/repositories"
	"varbrowser/api/repositories/duckdb"
	esRepo "varbrowser/api/repositories/elasticsearch"
	"varbrowser/api/services/cache"
	"varbrowser/api/services/sanitation"
	"varbrowser/api/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "varbrowser",
		Short:         "Variant to patient lookup across short-read and long-read datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		// serving is the default
		RunE: serve.RunE,
	}
	root.AddCommand(serve)
	root.AddCommand(newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, logger)
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yml>",
		Short: "Load a YAML fixture into the configured store",
		Example: `  VARBROWSER_DUCKDB_PATH=./data/varbrowser.duckdb varbrowser seed fixtures/testdata/seed.yml
  VARBROWSER_STORE_BACKEND=elasticsearch varbrowser seed seed.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			repo, err := openRepository(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			return seed(cmd.Context(), args[0], repo, logger)
		},
	}
}

func setup() (*models.Config, *zap.Logger, error) {
	// Gather environment variables
	var cfg models.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, nil, fmt.Errorf("read configuration: %w", err)
	}

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("using configuration",
		zap.Bool("debug", cfg.Debug),
		zap.String("port", cfg.Api.Port),
		zap.String("seedPath", cfg.Api.SeedPath),
		zap.String("storeBackend", cfg.Store.Backend),
		zap.String("duckdbPath", cfg.DuckDb.Path),
		zap.String("elasticsearchUrl", cfg.Elasticsearch.Url),
		zap.String("elasticsearchUsername", cfg.Elasticsearch.Username),
		zap.String("elasticsearchIndexPrefix", cfg.Elasticsearch.IndexPrefix),
		zap.Int64("cacheMaxEntries", cfg.Cache.MaxEntries),
		zap.Bool("sanitationEnabled", cfg.Sanitation.Enabled),
		zap.String("sanitationAt", cfg.Sanitation.At))

	return &cfg, logger, nil
}

func openRepository(ctx context.Context, cfg *models.Config, logger *zap.Logger) (repositories.Repository, error) {
	switch cfg.Store.Backend {
	case "duckdb":
		store, err := duckdb.Open(cfg.DuckDb.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "elasticsearch":
		es, err := utils.CreateEsConnection(cfg, nil, logger)
		if err != nil {
			return nil, err
		}
		store := esRepo.NewStore(es, cfg, logger)
		if err := store.EnsureIndices(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want duckdb or elasticsearch)", cfg.Store.Backend)
	}
}

func seed(ctx context.Context, path string, repo repositories.Writer, logger *zap.Logger) error {
	s, err := fixtures.Load(path)
	if err != nil {
		return err
	}
	if err := s.Apply(ctx, repo); err != nil {
		return err
	}

	logger.Info("seeded store",
		zap.String("path", path),
		zap.Int("shortReadVariants", len(s.ShortRead.Variants)),
		zap.Int("shortReadGenotypes", len(s.ShortRead.Genotypes)),
		zap.Int("longReadVariants", len(s.LongRead.Variants)),
		zap.Int("longReadGenotypes", len(s.LongRead.Genotypes)))
	return nil
}

func runServer(ctx context.Context, cfg *models.Config, logger *zap.Logger) error {
	// Service Connections
	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if cfg.Api.SeedPath != "" {
		if err := seed(ctx, cfg.Api.SeedPath, repo, logger); err != nil {
			return err
		}
	}

	resultCache, err := cache.NewMemoryCache(cfg.Cache.MaxEntries)
	if err != nil {
		return err
	}
	defer resultCache.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Service Singletons
	if cfg.Sanitation.Enabled {
		ss := sanitation.NewSanitationService(repo, cfg, metrics, logger)
		if err := ss.Init(); err != nil {
			return err
		}
		defer ss.Stop()
	}

	e := newServer(serverDeps{
		Config:     cfg,
		Repository: repo,
		Cache:      resultCache,
		Metrics:    metrics,
		Gatherer:   registry,
		Logger:     logger,
	})

	errs := make(chan error, 1)
	go func() {
		errs <- e.Start(":" + cfg.Api.Port)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
