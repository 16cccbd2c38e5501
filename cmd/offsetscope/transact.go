package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"offsetScope/internal/chain"
	"offsetScope/internal/config"
	"offsetScope/internal/contribute"
	"offsetScope/internal/footprint"
	"offsetScope/internal/registry"
)

func runContribute(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadContribute(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.ProjectID == 0 {
		return fmt.Errorf("project id is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, reg, signer, err := connectSigner(ctx, cfg.RPCURL, cfg.RegistryAddress, cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	executor := contribute.NewExecutor(reg, signer.From, signer, cfg.ConfirmTimeout, logger)

	result, err := executor.Contribute(ctx, contribute.Request{
		ProjectID: cfg.ProjectID,
		Amount:    cfg.Amount,
	})
	if errors.Is(err, contribute.ErrConfirmationIndeterminate) && result != nil {
		logger.Warn("submission accepted but unconfirmed, check the ledger",
			zap.String("tx", result.TxHash),
			zap.Error(err),
		)
		return printJSON(result)
	}
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runBuy(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBuy(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Amount == 0 {
		return fmt.Errorf("token amount is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, reg, signer, err := connectSigner(ctx, cfg.RPCURL, cfg.RegistryAddress, cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	price, err := reg.TokenPrice(ctx)
	if err != nil {
		return err
	}
	totalPrice := new(big.Int).Mul(price, new(big.Int).SetUint64(cfg.Amount))

	native, err := chainClient.NativeBalance(ctx, signer.From)
	if err != nil {
		return fmt.Errorf("read native balance: %w", err)
	}
	if native.Cmp(totalPrice) < 0 {
		return fmt.Errorf("insufficient native balance: have %s wei, need %s", native, totalPrice)
	}

	tx, err := reg.BuyTokens(signer, cfg.Amount, totalPrice)
	if err != nil {
		return fmt.Errorf("buy tokens: %w", err)
	}

	logger.Info("purchase submitted",
		zap.Uint64("amount", cfg.Amount),
		zap.String("total_price_wei", totalPrice.String()),
		zap.String("tx", tx.Hash().Hex()),
	)

	receipt, err := waitMined(ctx, reg, tx, cfg.ConfirmTimeout)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"tx_hash":         receipt.TxHash.Hex(),
		"tokens_bought":   cfg.Amount,
		"total_price_wei": totalPrice.String(),
	})
}

func runCreateProject(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCreateProject(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.RequiredTokens == 0 {
		return fmt.Errorf("required tokens must be positive")
	}
	co2 := cfg.CO2Reduction
	if co2 == 0 {
		co2 = cfg.RequiredTokens * footprint.KgPerToken
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, reg, signer, err := connectSigner(ctx, cfg.RPCURL, cfg.RegistryAddress, cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	tx, err := reg.CreateProject(signer, cfg.Name, cfg.Description, cfg.Location, cfg.RequiredTokens, co2)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	logger.Info("project creation submitted",
		zap.String("name", cfg.Name),
		zap.Uint64("required_tokens", cfg.RequiredTokens),
		zap.Uint64("co2_reduction", co2),
		zap.String("tx", tx.Hash().Hex()),
	)

	receipt, err := waitMined(ctx, reg, tx, cfg.ConfirmTimeout)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"tx_hash": receipt.TxHash.Hex(),
		"name":    cfg.Name,
	})
}

func runFootprint(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFootprint(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	consumption := footprint.Consumption{
		ElectricityKWh: cfg.ElectricityKWh,
		CarKm:          cfg.CarKm,
		Flights:        cfg.Flights,
		MeatKgPerWeek:  cfg.MeatKgPerWeek,
	}
	estimate := consumption.Estimate()

	if !cfg.Record {
		return printJSON(estimate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, reg, signer, err := connectSigner(ctx, cfg.RPCURL, cfg.RegistryAddress, cfg.PrivateKey)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	tx, err := reg.RecordEmissions(signer,
		uint64(cfg.ElectricityKWh), uint64(cfg.CarKm),
		uint64(cfg.Flights), uint64(cfg.MeatKgPerWeek))
	if err != nil {
		return fmt.Errorf("record emissions: %w", err)
	}

	logger.Info("emissions record submitted",
		zap.Float64("co2_kg", estimate.CO2Kg),
		zap.String("tx", tx.Hash().Hex()),
	)

	receipt, err := waitMined(ctx, reg, tx, cfg.ConfirmTimeout)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"tx_hash":       receipt.TxHash.Hex(),
		"co2_kg":        estimate.CO2Kg,
		"tokens_needed": estimate.TokensNeeded,
	})
}

func connectSigner(ctx context.Context, rpcURL, registryAddress, privateKey string) (*chain.Client, *registry.Registry, *bind.TransactOpts, error) {
	if rpcURL == "" {
		return nil, nil, nil, fmt.Errorf("rpc url is required")
	}
	if registryAddress == "" {
		return nil, nil, nil, fmt.Errorf("registry address is required")
	}

	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	reg, err := registry.New(registryAddress, chainClient)
	if err != nil {
		chainClient.Close()
		return nil, nil, nil, err
	}

	signer, err := chain.NewTransactor(ctx, chainClient, privateKey)
	if err != nil {
		chainClient.Close()
		return nil, nil, nil, err
	}

	return chainClient, reg, signer, nil
}

func waitMined(ctx context.Context, reg *registry.Registry, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := reg.WaitMined(waitCtx, tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}
