package storage

import (
	"context"
	"time"

	"offsetScope/internal/model"
)

// HistorySink archives reconciled output for offline inspection. Sinks
// sit strictly downstream of reconciliation and are never read back
// into validation.
type HistorySink interface {
	PutTransactions(ctx context.Context, account string, txs []model.Transaction) error
	PutStats(ctx context.Context, account string, at time.Time, stats model.UserStats) error
}

type multiSink struct {
	sinks []HistorySink
}

// Multi fans writes out to every sink in order, stopping at the first
// error.
func Multi(sinks ...HistorySink) HistorySink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) PutTransactions(ctx context.Context, account string, txs []model.Transaction) error {
	for _, sink := range m.sinks {
		if err := sink.PutTransactions(ctx, account, txs); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiSink) PutStats(ctx context.Context, account string, at time.Time, stats model.UserStats) error {
	for _, sink := range m.sinks {
		if err := sink.PutStats(ctx, account, at, stats); err != nil {
			return err
		}
	}
	return nil
}
