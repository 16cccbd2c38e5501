package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTransactionJSONRoundTrip(t *testing.T) {
	tx := Transaction{
		Kind:         KindContribution,
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Amount:       4,
		TxHash:       "0xabc",
		ProjectID:    7,
		ProjectLabel: "Wind Farm",
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != tx {
		t.Fatalf("round trip mismatch: %+v != %+v", got, tx)
	}
}

func TestTransactionJSONOmitsProjectForPurchases(t *testing.T) {
	tx := Transaction{
		Kind:      KindPurchase,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Amount:    2,
		TxHash:    "0xdef",
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "project_id") {
		t.Fatalf("purchase encodes project fields: %s", data)
	}
}
