package model

// EventRef keeps the chain coordinates of an emitted event.
type EventRef struct {
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
}

// MintEvent is the decoded TokensMinted event payload.
type MintEvent struct {
	Ref       EventRef `json:"ref"`
	Recipient string   `json:"recipient"`
	Amount    uint64   `json:"amount"`
	Emissions uint64   `json:"emissions"`
}

// ContributionEvent is the decoded ProjectCompensated event payload.
type ContributionEvent struct {
	Ref       EventRef `json:"ref"`
	ProjectID uint64   `json:"project_id"`
	User      string   `json:"user"`
	Tokens    uint64   `json:"tokens"`
}

// CompletionEvent is the decoded ProjectCompleted event payload.
type CompletionEvent struct {
	Ref         EventRef `json:"ref"`
	ProjectID   uint64   `json:"project_id"`
	TotalTokens uint64   `json:"total_tokens"`
}

// CreationEvent is the decoded ProjectCreated event payload.
type CreationEvent struct {
	Ref       EventRef `json:"ref"`
	ProjectID uint64   `json:"project_id"`
	Name      string   `json:"name"`
	Owner     string   `json:"owner"`
}
