package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"offsetScope/internal/chain"
	"offsetScope/internal/model"
	"offsetScope/internal/registry"
)

// EventSet holds the four typed event streams for one account, as read
// from the ledger in a single fetch pass.
type EventSet struct {
	Mints         []model.MintEvent
	Contributions []model.ContributionEvent
	Completions   []model.CompletionEvent
	Creations     []model.CreationEvent
}

// Blocks returns the distinct block numbers referenced by the set.
func (s EventSet) Blocks() []uint64 {
	seen := make(map[uint64]struct{})
	blocks := make([]uint64, 0)
	add := func(n uint64) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		blocks = append(blocks, n)
	}
	for _, e := range s.Mints {
		add(e.Ref.BlockNumber)
	}
	for _, e := range s.Contributions {
		add(e.Ref.BlockNumber)
	}
	for _, e := range s.Completions {
		add(e.Ref.BlockNumber)
	}
	for _, e := range s.Creations {
		add(e.Ref.BlockNumber)
	}
	return blocks
}

// ProjectIDs returns the distinct project ids referenced by the set.
func (s EventSet) ProjectIDs() []uint64 {
	seen := make(map[uint64]struct{})
	ids := make([]uint64, 0)
	add := func(id uint64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, e := range s.Contributions {
		add(e.ProjectID)
	}
	for _, e := range s.Completions {
		add(e.ProjectID)
	}
	for _, e := range s.Creations {
		add(e.ProjectID)
	}
	return ids
}

// Fetcher reads the four registry event streams. A provider failure on
// any stream aborts the whole fetch: a partial set must never be
// presented as a complete history.
type Fetcher struct {
	chain        *chain.Client
	registry     *registry.Registry
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// NewFetcher builds a Fetcher.
func NewFetcher(chainClient *chain.Client, reg *registry.Registry, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		chain:        chainClient,
		registry:     reg,
		logger:       logger,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// FetchUserEvents queries all four event kinds for the account. Zero
// events is a valid empty set, not an error.
func (f *Fetcher) FetchUserEvents(ctx context.Context, user common.Address) (EventSet, error) {
	var set EventSet

	mintLogs, err := f.filterWithRetry(ctx, registry.EventTokensMinted, f.registry.MintTopics(user))
	if err != nil {
		return EventSet{}, err
	}
	for _, log := range mintLogs {
		event, err := f.registry.DecodeMint(log)
		if err != nil {
			f.warnDecode(registry.EventTokensMinted, log, err)
			continue
		}
		set.Mints = append(set.Mints, event)
	}

	contributionLogs, err := f.filterWithRetry(ctx, registry.EventProjectCompensated, f.registry.ContributionTopics(user))
	if err != nil {
		return EventSet{}, err
	}
	for _, log := range contributionLogs {
		event, err := f.registry.DecodeContribution(log)
		if err != nil {
			f.warnDecode(registry.EventProjectCompensated, log, err)
			continue
		}
		set.Contributions = append(set.Contributions, event)
	}

	completionLogs, err := f.filterWithRetry(ctx, registry.EventProjectCompleted, f.registry.CompletionTopics())
	if err != nil {
		return EventSet{}, err
	}
	for _, log := range completionLogs {
		event, err := f.registry.DecodeCompletion(log)
		if err != nil {
			f.warnDecode(registry.EventProjectCompleted, log, err)
			continue
		}
		set.Completions = append(set.Completions, event)
	}

	creationLogs, err := f.filterWithRetry(ctx, registry.EventProjectCreated, f.registry.CreationTopics())
	if err != nil {
		return EventSet{}, err
	}
	for _, log := range creationLogs {
		event, err := f.registry.DecodeCreation(log)
		if err != nil {
			f.warnDecode(registry.EventProjectCreated, log, err)
			continue
		}
		set.Creations = append(set.Creations, event)
	}

	return set, nil
}

func (f *Fetcher) filterWithRetry(ctx context.Context, name string, topics [][]common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, f.maxRetries, f.retryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = f.chain.FilterLogs(ctx, f.registry.Address(), topics)
		if err != nil {
			f.logger.Warn("filter logs failed", zap.String("event", name), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s events: %w", name, err)
	}
	return logs, nil
}

func (f *Fetcher) warnDecode(name string, log types.Log, err error) {
	f.logger.Warn("skip undecodable event",
		zap.String("event", name),
		zap.Uint64("block", log.BlockNumber),
		zap.String("tx", log.TxHash.Hex()),
		zap.Error(err),
	)
}
