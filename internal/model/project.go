package model

import "time"

// Project mirrors one project definition as read from the ledger,
// together with its funding progress at fetch time.
type Project struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	RequiredTokens   uint64 `json:"required_tokens"`
	CO2Reduction     uint64 `json:"co2_reduction"`
	TotalContributed uint64 `json:"total_contributed"`
	Active           bool   `json:"active"`
	Owner            string `json:"owner"`
	Progress         uint64 `json:"progress"`
}

// CatalogSnapshot is a wholesale view of the project catalog. Stale is
// set when the snapshot was served from the local cache because the
// ledger was unreachable.
type CatalogSnapshot struct {
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
	Projects  []Project `json:"projects"`
}
