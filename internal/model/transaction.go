package model

import (
	"encoding/json"
	"time"
)

// TransactionKind labels a reconciled transaction.
type TransactionKind string

const (
	KindPurchase     TransactionKind = "purchase"
	KindContribution TransactionKind = "contribution"
	KindCompletion   TransactionKind = "completion"
	KindCreation     TransactionKind = "creation"
)

// Transaction is one entry of the reconciled, time-ordered history.
// Amount semantics depend on the kind: tokens minted for purchases,
// tokens contributed for contributions, tokens released for completions,
// tokens required for creations.
type Transaction struct {
	Kind         TransactionKind `json:"kind"`
	Timestamp    time.Time       `json:"timestamp"`
	Amount       uint64          `json:"amount"`
	TxHash       string          `json:"tx_hash"`
	ProjectID    uint64          `json:"project_id,omitempty"`
	ProjectLabel string          `json:"project_label,omitempty"`
}

// MarshalJSON ensures Transaction is encoded with stable field names.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(Alias(t))
}

// UnmarshalJSON decodes a Transaction from JSON.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Transaction(a)
	return nil
}
