package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbella-dev/questforge/internal/question"
)

// SaveJSON writes items to path as a pretty-printed UTF-8 JSON array.
// The write goes through a temp file in the same directory followed by a
// rename, so readers never observe a half-written dataset.
func SaveJSON(path string, items []question.Item) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename dataset: %w", err)
	}
	return nil
}

// LoadJSON reads a dataset written by SaveJSON.
func LoadJSON(path string) ([]question.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var items []question.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return items, nil
}
