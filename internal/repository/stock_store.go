package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"mata/internal/model"
)

// StockStore reads and writes the per-day stock and transfer files:
// <root>/by-date/<YYYY-MM-DD>/{stock-matin,stock-soir,transferts}.json
type StockStore interface {
	// ReadStock returns ErrNotFound when the file does not exist.
	ReadStock(ctx context.Context, date time.Time, periode string) (model.StockFile, error)
	// ReadTransferts returns an empty slice when the day has no transfer file.
	ReadTransferts(ctx context.Context, date time.Time) ([]model.Transfert, error)
	WriteStock(ctx context.Context, date time.Time, periode string, file model.StockFile) error
	StockExists(ctx context.Context, date time.Time, periode string) (bool, error)
	// BackupStock copies the existing file next to itself with a timestamp
	// suffix and returns the backup path.
	BackupStock(ctx context.Context, date time.Time, periode string, at time.Time) (string, error)
	StockPath(date time.Time, periode string) string
}

type fileStockStore struct{ root string }

func NewStockStore(root string) StockStore { return &fileStockStore{root: root} }

func (s *fileStockStore) dayDir(date time.Time) string {
	return filepath.Join(s.root, "by-date", date.Format("2006-01-02"))
}

func (s *fileStockStore) StockPath(date time.Time, periode string) string {
	return filepath.Join(s.dayDir(date), "stock-"+periode+".json")
}

func (s *fileStockStore) ReadStock(ctx context.Context, date time.Time, periode string) (model.StockFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.StockPath(date, periode)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	file := model.StockFile{}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%s: parse: %w", path, err)
	}
	return file, nil
}

func (s *fileStockStore) ReadTransferts(ctx context.Context, date time.Time) ([]model.Transfert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dayDir(date), "transferts.json")
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Transfert{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []model.Transfert
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: parse: %w", path, err)
	}
	return out, nil
}

func (s *fileStockStore) WriteStock(ctx context.Context, date time.Time, periode string, file model.StockFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dayDir(date), 0o755); err != nil {
		return fmt.Errorf("stock: create dir: %w", err)
	}
	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("stock: encode: %w", err)
	}

	// write to a sibling temp file then rename, so readers never see a partial file
	path := s.StockPath(date, periode)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("stock: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("stock: rename: %w", err)
	}
	return nil
}

func (s *fileStockStore) StockExists(ctx context.Context, date time.Time, periode string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.StockPath(date, periode))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *fileStockStore) BackupStock(ctx context.Context, date time.Time, periode string, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src := s.StockPath(date, periode)
	raw, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("stock: read for backup: %w", err)
	}
	dst := src + ".backup-" + at.Format("20060102-150405.000")
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return "", fmt.Errorf("stock: write backup: %w", err)
	}
	return dst, nil
}
