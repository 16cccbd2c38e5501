package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"offsetScope/internal/model"
)

// LedgerCatalog is the registry surface the loader needs. The ledger
// exposes no bulk listing; projects are read one id at a time.
type LedgerCatalog interface {
	ProjectCounter(ctx context.Context) (uint64, error)
	Project(ctx context.Context, id uint64) (model.Project, error)
	ProjectProgress(ctx context.Context, id uint64) (uint64, error)
}

// Loader fetches the full project catalog, caching each successful
// snapshot for display continuity when the ledger is unreachable.
type Loader struct {
	ledger      LedgerCatalog
	cache       *FileCache
	logger      *zap.Logger
	concurrency int
}

// NewLoader builds a Loader. cache may be nil to disable the fallback.
func NewLoader(ledger LedgerCatalog, cache *FileCache, concurrency int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Loader{
		ledger:      ledger,
		cache:       cache,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Load fetches projects 1..projectCounter from the ledger. On success
// the snapshot overwrites the cache wholesale; on a ledger failure the
// cached snapshot is returned instead, marked stale.
func (l *Loader) Load(ctx context.Context) (model.CatalogSnapshot, error) {
	snapshot, err := l.fetch(ctx)
	if err == nil {
		if l.cache != nil {
			if cacheErr := l.cache.Save(snapshot); cacheErr != nil {
				l.logger.Warn("catalog cache write failed", zap.Error(cacheErr))
			}
		}
		return snapshot, nil
	}

	l.logger.Warn("catalog fetch failed, trying cache", zap.Error(err))

	if l.cache != nil {
		cached, ok, cacheErr := l.cache.Load()
		if cacheErr != nil {
			l.logger.Warn("catalog cache read failed", zap.Error(cacheErr))
		} else if ok {
			cached.Stale = true
			return cached, nil
		}
	}

	return model.CatalogSnapshot{}, err
}

func (l *Loader) fetch(ctx context.Context) (model.CatalogSnapshot, error) {
	counter, err := l.ledger.ProjectCounter(ctx)
	if err != nil {
		return model.CatalogSnapshot{}, fmt.Errorf("project counter: %w", err)
	}

	projects := make([]model.Project, 0, counter)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, l.concurrency)

	var firstErr error
	var errOnce sync.Once

	for id := uint64(1); id <= counter; id++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			project, err := l.ledger.Project(ctx, id)
			if err != nil {
				errOnce.Do(func() { firstErr = fmt.Errorf("project %d: %w", id, err) })
				return
			}
			progress, err := l.ledger.ProjectProgress(ctx, id)
			if err != nil {
				errOnce.Do(func() { firstErr = fmt.Errorf("project %d progress: %w", id, err) })
				return
			}
			project.Progress = progress

			mu.Lock()
			projects = append(projects, project)
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	if firstErr != nil {
		return model.CatalogSnapshot{}, firstErr
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID < projects[j].ID
	})

	return model.CatalogSnapshot{
		FetchedAt: time.Now().UTC(),
		Projects:  projects,
	}, nil
}
