package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"offsetScope/internal/chain"
	"offsetScope/internal/model"
	"offsetScope/internal/registry"
	"offsetScope/internal/storage"
)

// RunConfig holds runtime settings for the reporting path.
type RunConfig struct {
	Account      common.Address
	Interval     time.Duration
	Concurrency  int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Report is one complete, internally consistent view of an account:
// the reconciled history plus the derived statistics. It is rebuilt
// wholesale from authoritative reads on every run, never patched.
type Report struct {
	Account      string              `json:"account"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Stats        model.UserStats     `json:"stats"`
	Transactions []model.Transaction `json:"transactions"`
}

// Runner drives the reporting path: fetch, resolve, reconcile,
// aggregate, archive.
type Runner struct {
	cfg      RunConfig
	chain    *chain.Client
	registry *registry.Registry
	fetcher  *Fetcher
	sink     storage.HistorySink
	logger   *zap.Logger
}

// NewRunner builds a Runner with its dependencies. sink may be nil.
func NewRunner(cfg RunConfig, chainClient *chain.Client, reg *registry.Registry, sink storage.HistorySink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Runner{
		cfg:      cfg,
		chain:    chainClient,
		registry: reg,
		fetcher:  NewFetcher(chainClient, reg, cfg.MaxRetries, cfg.RetryBackoff, logger),
		sink:     sink,
		logger:   logger,
	}
}

// RunOnce produces one report. Any provider failure makes the whole run
// indeterminate: the caller gets an error, never a partial history
// dressed up as an empty one.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	balance, err := r.registry.BalanceOf(ctx, r.cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}

	set, err := r.fetcher.FetchUserEvents(ctx, r.cfg.Account)
	if err != nil {
		return nil, err
	}

	projects := r.loadProjectInfo(ctx, set.ProjectIDs())

	now := time.Now().UTC()
	times := ResolveTimestamps(ctx, r.chain, set.Blocks(), r.cfg.Concurrency, r.logger)

	txs := BuildTransactions(set, times, now, projects)
	stats := ComputeStats(balance, txs)

	report := &Report{
		Account:      r.cfg.Account.Hex(),
		GeneratedAt:  now,
		Stats:        stats,
		Transactions: txs,
	}

	if r.sink != nil {
		if err := r.sink.PutTransactions(ctx, report.Account, txs); err != nil {
			return nil, fmt.Errorf("archive transactions: %w", err)
		}
		if err := r.sink.PutStats(ctx, report.Account, now, stats); err != nil {
			return nil, fmt.Errorf("archive stats: %w", err)
		}
	}

	r.logger.Info("report complete",
		zap.String("account", report.Account),
		zap.Int("transactions", len(txs)),
		zap.Uint64("total_tokens", stats.TotalTokens),
		zap.Uint64("carbon_footprint", stats.CarbonFootprint),
		zap.Uint64("compensated_co2", stats.CompensatedCO2),
		zap.Int("projects_supported", stats.ProjectsSupported),
	)

	return report, nil
}

// Watch re-runs the reporting path on a fixed interval until the
// context is cancelled. A failed refresh keeps the previous view and
// retries on the next tick.
func (r *Runner) Watch(ctx context.Context, onReport func(*Report)) error {
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		report, err := r.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("refresh failed, data indeterminate until next tick", zap.Error(err))
		} else if onReport != nil {
			onReport(report)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// loadProjectInfo reads the definitions of the referenced projects.
// Reads run concurrently; a failed read only leaves that project
// unlabeled.
func (r *Runner) loadProjectInfo(ctx context.Context, ids []uint64) map[uint64]ProjectInfo {
	projects := make(map[uint64]ProjectInfo, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.cfg.Concurrency)

	for _, id := range ids {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			project, err := r.registry.Project(ctx, id)
			if err != nil {
				r.logger.Warn("project read failed", zap.Uint64("project_id", id), zap.Error(err))
				return
			}

			mu.Lock()
			projects[id] = ProjectInfo{Name: project.Name, RequiredTokens: project.RequiredTokens}
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return projects
}
