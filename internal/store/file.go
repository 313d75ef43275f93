package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PortfolioGuard/internal/model"
)

// JSONFile keeps the position list in a single indented JSON file.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a file backend rooted at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Name() string { return "file" }

// Read returns ErrNotFound if the file doesn't exist.
func (f *JSONFile) Read(_ context.Context) ([]model.Position, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read positions file: %w", err)
	}
	var positions []model.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("decode positions file %s: %w", f.Path, err)
	}
	if positions == nil {
		positions = []model.Position{}
	}
	return positions, nil
}

// Write replaces the file through a temp file + rename so a crash never
// leaves a half-written store behind.
func (f *JSONFile) Write(_ context.Context, positions []model.Position) error {
	if positions == nil {
		positions = []model.Position{}
	}
	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".positions-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace positions file: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }
