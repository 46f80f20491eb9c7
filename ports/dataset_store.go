package ports

import (
	"context"
	"time"

	"leadboard/domain/leads"
)

// DatasetStore defines the interface for the single persisted lead dataset
type DatasetStore interface {
	// Load returns the stored dataset. A missing file fails with core.ErrDatasetAbsent.
	Load(ctx context.Context) (*leads.Dataset, error)
	// Save validates ds and atomically replaces the stored dataset
	Save(ctx context.Context, ds *leads.Dataset) error
	// Info describes the stored file without failing when it is absent
	Info(ctx context.Context) (*DatasetInfo, error)
}

// DatasetInfo describes the persisted dataset file
type DatasetInfo struct {
	Exists     bool      `json:"exists"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns,omitempty"`
}
