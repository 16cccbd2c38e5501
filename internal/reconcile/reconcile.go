package reconcile

import (
	"fmt"
	"sort"
	"time"

	"offsetScope/internal/model"
)

// ProjectInfo is the supplementary project read used to label
// transactions and recover a creation's required tokens.
type ProjectInfo struct {
	Name           string
	RequiredTokens uint64
}

// BuildTransactions merges the four event streams into one unified
// history, sorted by timestamp descending. The transform is pure: all
// network reads (events, block times, project definitions) happen
// before it runs.
//
// Ties are broken by mapping order (purchases, contributions,
// completions, creations), which is deterministic per run via the
// stable sort.
func BuildTransactions(set EventSet, times map[uint64]time.Time, fallback time.Time, projects map[uint64]ProjectInfo) []model.Transaction {
	txs := make([]model.Transaction, 0,
		len(set.Mints)+len(set.Contributions)+len(set.Completions)+len(set.Creations))

	timeFor := func(block uint64) time.Time {
		if ts, ok := times[block]; ok {
			return ts
		}
		return fallback
	}

	for _, e := range set.Mints {
		txs = append(txs, model.Transaction{
			Kind:      model.KindPurchase,
			Timestamp: timeFor(e.Ref.BlockNumber),
			Amount:    e.Amount,
			TxHash:    e.Ref.TxHash,
		})
	}

	for _, e := range set.Contributions {
		txs = append(txs, model.Transaction{
			Kind:         model.KindContribution,
			Timestamp:    timeFor(e.Ref.BlockNumber),
			Amount:       e.Tokens,
			TxHash:       e.Ref.TxHash,
			ProjectID:    e.ProjectID,
			ProjectLabel: projectLabel(e.ProjectID, projects),
		})
	}

	for _, e := range set.Completions {
		txs = append(txs, model.Transaction{
			Kind:         model.KindCompletion,
			Timestamp:    timeFor(e.Ref.BlockNumber),
			Amount:       e.TotalTokens,
			TxHash:       e.Ref.TxHash,
			ProjectID:    e.ProjectID,
			ProjectLabel: projectLabel(e.ProjectID, projects),
		})
	}

	for _, e := range set.Creations {
		label := e.Name
		if label == "" {
			label = projectLabel(e.ProjectID, projects)
		}
		var required uint64
		if info, ok := projects[e.ProjectID]; ok {
			required = info.RequiredTokens
		}
		txs = append(txs, model.Transaction{
			Kind:         model.KindCreation,
			Timestamp:    timeFor(e.Ref.BlockNumber),
			Amount:       required,
			TxHash:       e.Ref.TxHash,
			ProjectID:    e.ProjectID,
			ProjectLabel: label,
		})
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})

	return txs
}

func projectLabel(id uint64, projects map[uint64]ProjectInfo) string {
	if info, ok := projects[id]; ok && info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("Project #%d", id)
}
