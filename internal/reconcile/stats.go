package reconcile

import "offsetScope/internal/model"

// CO2PerToken is the fixed footprint scale: one token stands for 100 kg
// of CO2, both on the purchase and the compensation side.
const CO2PerToken = 100

// ComputeStats folds the reconciled history and the directly-fetched
// balance into a statistics snapshot. The balance is taken as-is: the
// ledger is the source of truth and purchase/contribution amounts do
// not net out to it.
func ComputeStats(balance uint64, txs []model.Transaction) model.UserStats {
	stats := model.UserStats{TotalTokens: balance}

	supported := make(map[uint64]struct{})
	for _, tx := range txs {
		switch tx.Kind {
		case model.KindPurchase:
			stats.CarbonFootprint += tx.Amount * CO2PerToken
		case model.KindContribution:
			stats.CompensatedCO2 += tx.Amount * CO2PerToken
			supported[tx.ProjectID] = struct{}{}
		}
	}
	stats.ProjectsSupported = len(supported)

	return stats
}
