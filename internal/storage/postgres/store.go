package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"offsetScope/internal/model"
)

// Store provides Postgres persistence for reconciled history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutTransactions upserts reconciled transactions. Re-running the same
// reconciliation is idempotent: the (account, tx_hash, kind) key stays
// stable across runs.
func (s *Store) PutTransactions(ctx context.Context, account string, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(`
			INSERT INTO transactions (
				account, tx_hash, kind, ts, amount, project_id, project_label, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (account, tx_hash, kind)
			DO UPDATE SET
				ts = EXCLUDED.ts,
				amount = EXCLUDED.amount,
				project_id = EXCLUDED.project_id,
				project_label = EXCLUDED.project_label,
				updated_at = now()
		`,
			account,
			tx.TxHash,
			string(tx.Kind),
			tx.Timestamp,
			int64(tx.Amount),
			int64(tx.ProjectID),
			tx.ProjectLabel,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range txs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutStats inserts one statistics snapshot.
func (s *Store) PutStats(ctx context.Context, account string, at time.Time, stats model.UserStats) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO stats_snapshots (
			account, snapshot_at, total_tokens, carbon_footprint, compensated_co2, projects_supported
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		account,
		at,
		int64(stats.TotalTokens),
		int64(stats.CarbonFootprint),
		int64(stats.CompensatedCO2),
		stats.ProjectsSupported,
	)
	return err
}

// UpsertProjects inserts or updates catalog snapshots.
func (s *Store) UpsertProjects(ctx context.Context, projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range projects {
		batch.Queue(`
			INSERT INTO projects (
				id, name, description, location, required_tokens, co2_reduction,
				total_contributed, active, owner, progress, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				location = EXCLUDED.location,
				required_tokens = EXCLUDED.required_tokens,
				co2_reduction = EXCLUDED.co2_reduction,
				total_contributed = EXCLUDED.total_contributed,
				active = EXCLUDED.active,
				owner = EXCLUDED.owner,
				progress = EXCLUDED.progress,
				updated_at = now()
		`,
			int64(p.ID),
			p.Name,
			p.Description,
			p.Location,
			int64(p.RequiredTokens),
			int64(p.CO2Reduction),
			int64(p.TotalContributed),
			p.Active,
			p.Owner,
			int64(p.Progress),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range projects {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
