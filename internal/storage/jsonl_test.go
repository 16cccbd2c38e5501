package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"offsetScope/internal/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sink file: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan sink file: %v", err)
	}
	return lines
}

func TestJsonlSinkAppendsTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	sink := NewJsonlSink(path)

	txs := []model.Transaction{
		{Kind: model.KindPurchase, Amount: 2, TxHash: "0xa", Timestamp: time.Unix(1700000000, 0).UTC()},
		{Kind: model.KindContribution, Amount: 1, TxHash: "0xb", ProjectID: 3, Timestamp: time.Unix(1700000600, 0).UTC()},
	}
	if err := sink.PutTransactions(context.Background(), "0xuser", txs); err != nil {
		t.Fatalf("PutTransactions: %v", err)
	}
	if err := sink.PutStats(context.Background(), "0xuser", time.Unix(1700001200, 0), model.UserStats{TotalTokens: 5}); err != nil {
		t.Fatalf("PutStats: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var first transactionLine
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parse first line: %v", err)
	}
	if first.Record != "transaction" || first.Account != "0xuser" || first.Tx.TxHash != "0xa" {
		t.Fatalf("first line wrong: %+v", first)
	}

	var last statsLine
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("parse stats line: %v", err)
	}
	if last.Record != "stats" || last.Stats.TotalTokens != 5 {
		t.Fatalf("stats line wrong: %+v", last)
	}
}

func TestJsonlSinkSkipsEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	sink := NewJsonlSink(path)

	if err := sink.PutTransactions(context.Background(), "0xuser", nil); err != nil {
		t.Fatalf("PutTransactions: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("empty batch created the sink file")
	}
}
