package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"offsetScope/internal/chain"
	"offsetScope/internal/config"
	"offsetScope/internal/reconcile"
	"offsetScope/internal/registry"
	"offsetScope/internal/storage"
	"offsetScope/internal/storage/postgres"
)

func runReport(cmd *cobra.Command, _ []string) error {
	runner, cleanup, err := buildRunner(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	return printJSON(report)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	runner, cleanup, err := buildRunner(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runner.Watch(ctx, func(report *reconcile.Report) {
		if printErr := printJSON(report); printErr != nil {
			fmt.Fprintln(os.Stderr, printErr)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildRunner(cmd *cobra.Command) (*reconcile.Runner, func(), error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReport(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	if cfg.RegistryAddress == "" {
		return nil, nil, fmt.Errorf("registry address is required")
	}
	if !common.IsHexAddress(cfg.Account) {
		return nil, nil, fmt.Errorf("valid account address is required")
	}

	ctx := context.Background()
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	reg, err := registry.New(cfg.RegistryAddress, chainClient)
	if err != nil {
		chainClient.Close()
		return nil, nil, err
	}

	cleanups := []func(){chainClient.Close, func() { _ = logger.Sync() }}
	var sinks []storage.HistorySink
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlSink(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			chainClient.Close()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		cleanups = append(cleanups, store.Close)
		sinks = append(sinks, store)
	}

	var sink storage.HistorySink
	switch len(sinks) {
	case 0:
	case 1:
		sink = sinks[0]
	default:
		sink = storage.Multi(sinks...)
	}

	runner := reconcile.NewRunner(reconcile.RunConfig{
		Account:      common.HexToAddress(cfg.Account),
		Interval:     cfg.Interval,
		Concurrency:  cfg.Concurrency,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, reg, sink, logger)

	logger.Info("report start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("registry", cfg.RegistryAddress),
		zap.String("account", cfg.Account),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}
	return runner, cleanup, nil
}

func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
