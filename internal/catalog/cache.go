package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"offsetScope/internal/model"
)

// FileCache persists the latest catalog snapshot to disk. It is a
// best-effort display fallback, overwritten wholesale on every
// successful fetch, and never an input to contribution validation.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Load() (model.CatalogSnapshot, bool, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.CatalogSnapshot{}, false, nil
		}
		return model.CatalogSnapshot{}, false, fmt.Errorf("stat catalog cache: %w", err)
	}
	if stat.IsDir() {
		return model.CatalogSnapshot{}, false, fmt.Errorf("catalog cache path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return model.CatalogSnapshot{}, false, fmt.Errorf("read catalog cache: %w", err)
	}

	var snapshot model.CatalogSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.CatalogSnapshot{}, false, fmt.Errorf("parse catalog cache: %w", err)
	}

	return snapshot, true, nil
}

func (c *FileCache) Save(snapshot model.CatalogSnapshot) error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal catalog cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write catalog cache tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename catalog cache: %w", err)
	}

	return nil
}
