package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"offsetScope/internal/model"
)

// JsonlSink appends history records to a JSONL file.
type JsonlSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSink(path string) *JsonlSink {
	return &JsonlSink{path: path}
}

type transactionLine struct {
	Record  string            `json:"record"`
	Account string            `json:"account"`
	Tx      model.Transaction `json:"tx"`
}

type statsLine struct {
	Record  string          `json:"record"`
	Account string          `json:"account"`
	At      string          `json:"at"`
	Stats   model.UserStats `json:"stats"`
}

// PutTransactions appends transactions as JSON lines.
func (s *JsonlSink) PutTransactions(_ context.Context, account string, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	lines := make([]interface{}, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, transactionLine{Record: "transaction", Account: account, Tx: tx})
	}
	return s.append(lines)
}

// PutStats appends one stats snapshot as a JSON line.
func (s *JsonlSink) PutStats(_ context.Context, account string, at time.Time, stats model.UserStats) error {
	return s.append([]interface{}{statsLine{
		Record:  "stats",
		Account: account,
		At:      at.UTC().Format(time.RFC3339Nano),
		Stats:   stats,
	}})
}

func (s *JsonlSink) append(records []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
