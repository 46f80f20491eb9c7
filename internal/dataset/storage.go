// Package dataset persists the single lead spreadsheet the dashboard reads from.
package dataset

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"leadboard/adapters/excel"
	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/internal/errors"
	"leadboard/ports"

	"github.com/google/uuid"
)

// FileStore implements ports.DatasetStore on one xlsx file
type FileStore struct {
	path string
	// mu keeps saves from one process from interleaving; separate processes still race
	mu sync.Mutex
}

var _ ports.DatasetStore = (*FileStore)(nil)

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the dataset file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and maps the stored workbook
func (s *FileStore) Load(ctx context.Context) (*leads.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := excel.NewDataReader(s.path).ReadDataset()
	switch {
	case err == nil:
		log.Printf("[FileStore] Loaded %s (%d leads, %d columns)", s.path, ds.Len(), len(ds.Columns))
		return ds, nil
	case stderrors.Is(err, os.ErrNotExist):
		return nil, errors.FileNotFound(s.path, core.ErrDatasetAbsent)
	case errors.GetCode(err) == errors.CodeMissingColumns:
		return nil, err
	default:
		log.Printf("[FileStore] FAILED - reading %s: %v", s.path, err)
		return nil, errors.ParseError(filepath.Base(s.path), err)
	}
}

// Save validates ds and replaces the stored file. The workbook is written to a
// temp file in the same directory and renamed over the target, so readers see
// either the old file or the new one.
func (s *FileStore) Save(ctx context.Context, ds *leads.Dataset) error {
	if ds == nil {
		return errors.InvalidInput("dataset is required")
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := excel.EncodeDataset(ds)
	if err != nil {
		return errors.Wrap(err, "failed to encode dataset")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.New().String()[:8]))
	if err := writeFileSync(tmpPath, raw); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}

	log.Printf("[FileStore] Saved %s (%d leads, %d bytes)", s.path, ds.Len(), len(raw))
	return nil
}

// Info stats the file and, when present, counts its rows and columns
func (s *FileStore) Info(ctx context.Context) (*ports.DatasetInfo, error) {
	info := &ports.DatasetInfo{Path: s.path}

	stat, err := os.Stat(s.path)
	if stderrors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}
	info.Exists = true
	info.Size = stat.Size()
	info.ModifiedAt = stat.ModTime()

	ds, err := s.Load(ctx)
	if err != nil {
		return info, err
	}
	info.Rows = ds.Len()
	info.Columns = ds.Columns
	return info, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
