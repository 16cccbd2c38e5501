package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"offsetScope/internal/catalog"
	"offsetScope/internal/chain"
	"offsetScope/internal/config"
	"offsetScope/internal/registry"
	"offsetScope/internal/storage/postgres"
)

func runProjects(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCatalog(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.RegistryAddress == "" {
		return fmt.Errorf("registry address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reg, err := registry.New(cfg.RegistryAddress, chainClient)
	if err != nil {
		return err
	}

	var cache *catalog.FileCache
	if cfg.CachePath != "" {
		cache = catalog.NewFileCache(cfg.CachePath)
	}

	loader := catalog.NewLoader(reg, cache, cfg.Concurrency, logger)
	snapshot, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	if snapshot.Stale {
		logger.Warn("serving cached catalog, ledger unreachable",
			zap.Time("fetched_at", snapshot.FetchedAt),
		)
	}

	if cfg.PGDSN != "" && !snapshot.Stale {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.UpsertProjects(ctx, snapshot.Projects); err != nil {
			return fmt.Errorf("archive projects: %w", err)
		}
	}

	return printJSON(snapshot)
}
