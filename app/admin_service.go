package app

import (
	"context"
	stderrors "errors"
	"time"

	"leadboard/adapters/excel"
	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/internal"
	"leadboard/internal/auth"
	"leadboard/internal/errors"
	"leadboard/internal/export"
	"leadboard/internal/pipeline"
	"leadboard/ports"
)

const (
	previewRows  = 10
	overviewRows = 20
)

// AdminService validates and replaces the stored dataset. Every operation needs
// an admin session.
type AdminService struct {
	store     ports.DatasetStore
	topGroups int
	logger    *internal.Logger
}

// UploadPreview describes an uploaded file before it is saved
type UploadPreview struct {
	Filename string           `json:"filename"`
	Rows     int              `json:"rows"`
	Columns  []string         `json:"columns"`
	Metrics  pipeline.Metrics `json:"metrics"`
	Sample   export.Table     `json:"sample"`
}

// ReplaceResult reports a saved upload
type ReplaceResult struct {
	Filename string    `json:"filename"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	SavedAt  time.Time `json:"saved_at"`
}

// AdminOverview describes the dataset currently served to viewers
type AdminOverview struct {
	Info              *ports.DatasetInfo    `json:"info"`
	Metrics           pipeline.Metrics      `json:"metrics"`
	DispatchBreakdown []pipeline.GroupCount `json:"dispatch_breakdown"`
	TopGroups         []pipeline.GroupCount `json:"top_groups"`
	Sample            export.Table          `json:"sample"`
}

// NewAdminService creates the admin service; topGroups caps the overview ranking
func NewAdminService(store ports.DatasetStore, topGroups int, logger *internal.Logger) *AdminService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AdminService{store: store, topGroups: topGroups, logger: logger.With("AdminService")}
}

// Preview decodes an upload and summarizes it without saving
func (s *AdminService) Preview(ctx context.Context, sess auth.Session, filename string, raw []byte) (*UploadPreview, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	ds, err := decodeUpload(filename, raw)
	if err != nil {
		return nil, err
	}

	return &UploadPreview{
		Filename: filename,
		Rows:     ds.Len(),
		Columns:  ds.Columns,
		Metrics:  pipeline.ComputeMetrics(ds.Leads),
		Sample:   sampleRows(ds, previewRows),
	}, nil
}

// Replace decodes an upload and makes it the stored dataset. On any failure the
// stored dataset is left as it was.
func (s *AdminService) Replace(ctx context.Context, sess auth.Session, filename string, raw []byte) (*ReplaceResult, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	ds, err := decodeUpload(filename, raw)
	if err != nil {
		s.logger.Warn("Upload %s rejected: %v", filename, err)
		return nil, err
	}

	if err := s.store.Save(ctx, ds); err != nil {
		s.logger.Error("Saving upload %s failed: %v", filename, err)
		return nil, err
	}

	s.logger.Info("Dataset replaced from %s by session %s (%d leads)", filename, core.ID(sess.ID).Short(), ds.Len())
	return &ReplaceResult{
		Filename: filename,
		Rows:     ds.Len(),
		Columns:  len(ds.Columns),
		SavedAt:  time.Now(),
	}, nil
}

// Overview reports the stored file and its headline numbers. An absent dataset
// is not an error; Info.Exists is false.
func (s *AdminService) Overview(ctx context.Context, sess auth.Session) (*AdminOverview, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}

	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, err
	}
	overview := &AdminOverview{
		Info:              info,
		DispatchBreakdown: []pipeline.GroupCount{},
		TopGroups:         []pipeline.GroupCount{},
	}
	if !info.Exists {
		return overview, nil
	}

	ds, err := s.store.Load(ctx)
	if stderrors.Is(err, core.ErrDatasetAbsent) {
		overview.Info.Exists = false
		return overview, nil
	}
	if err != nil {
		return nil, err
	}

	view := pipeline.Summarize(ds.Leads)
	overview.Metrics = view.Metrics
	overview.DispatchBreakdown = view.DispatchBreakdown
	overview.TopGroups = pipeline.TopN(view.ByInterestGroup, s.topGroups)
	overview.Sample = sampleRows(ds, overviewRows)
	return overview, nil
}

func decodeUpload(filename string, raw []byte) (*leads.Dataset, error) {
	if len(raw) == 0 {
		return nil, errors.InvalidInput("uploaded file is empty")
	}
	table, err := excel.DecodeUpload(filename, raw)
	if err != nil {
		return nil, errors.ParseError(filename, err)
	}
	return excel.ParseDataset(table)
}

// sampleRows returns the first n rows with every column of ds. Parsed creation dates
// are shown in the export layout; unparsable ones keep their original text.
func sampleRows(ds *leads.Dataset, n int) export.Table {
	if n > ds.Len() {
		n = ds.Len()
	}
	created := ds.ColumnIndex(leads.ColumnCreatedAt)
	table := export.Table{Headers: ds.Columns, Rows: make([][]string, 0, n)}
	for _, l := range ds.Leads[:n] {
		row := append([]string(nil), l.Values...)
		if created >= 0 && created < len(row) && l.CreatedAt != nil {
			row[created] = export.FormatCreatedAt(l.CreatedAt)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
