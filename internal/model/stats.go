package model

// UserStats is the derived statistics snapshot for one account.
// TotalTokens always mirrors the ledger balance and is never
// reconstructed from the transaction history.
type UserStats struct {
	TotalTokens       uint64 `json:"total_tokens"`
	CarbonFootprint   uint64 `json:"carbon_footprint"`
	CompensatedCO2    uint64 `json:"compensated_co2"`
	ProjectsSupported int    `json:"projects_supported"`
}
