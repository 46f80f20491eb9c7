package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/internal"
	"leadboard/internal/export"
	"leadboard/internal/pipeline"
	"leadboard/internal/profiling"
	"leadboard/ports"
)

// ErrNoData is returned when there is no dataset, or it has no rows
var ErrNoData = fmt.Errorf("no data available: %w", core.ErrDatasetAbsent)

// DashboardSettings are the viewer defaults
type DashboardSettings struct {
	TopGroups   int
	TopStatuses int
	PageSize    int
}

// DashboardService serves the viewer: filtered metrics, charts, table and export
type DashboardService struct {
	store    ports.DatasetStore
	settings DashboardSettings
	logger   *internal.Logger
}

// DashboardQuery is one viewer request
type DashboardQuery struct {
	Spec leads.FilterSpec
	// Top caps the interest group ranking; 0 uses the configured default
	Top int
	// Limit caps the table rows; 0 uses the page size, negative returns every row
	Limit int
}

// DashboardResult is everything the viewer page renders for one filter state
type DashboardResult struct {
	Metrics                   pipeline.Metrics              `json:"metrics"`
	RateBand                  string                        `json:"rate_band"`
	ByInterestGroup           []pipeline.GroupCount         `json:"by_interest_group"`
	ByDate                    []pipeline.DateCount          `json:"by_date"`
	NotDispatchedByLeadStatus []pipeline.GroupCount         `json:"not_dispatched_by_lead_status"`
	DispatchBreakdown         []pipeline.GroupCount         `json:"dispatch_breakdown"`
	NotDispatched             pipeline.NotDispatchedSummary `json:"not_dispatched"`
	Timeline                  profiling.TimelineProfile     `json:"timeline"`
	Table                     export.Table                  `json:"table"`
	FilteredRows              int                           `json:"filtered_rows"`
	DatasetRows               int                           `json:"dataset_rows"`
}

// NewDashboardService creates the viewer service
func NewDashboardService(store ports.DatasetStore, settings DashboardSettings, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{store: store, settings: settings, logger: logger.With("DashboardService")}
}

// Dashboard applies q to the current dataset
func (s *DashboardService) Dashboard(ctx context.Context, q DashboardQuery) (*DashboardResult, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	view := pipeline.Apply(ds, q.Spec)

	timeline, err := profiling.ProfileTimeline(view.ByDate)
	if err != nil {
		return nil, fmt.Errorf("failed to profile timeline: %w", err)
	}

	top := q.Top
	if top == 0 {
		top = s.settings.TopGroups
	}
	rows := view.Rows
	switch {
	case q.Limit > 0 && q.Limit < len(rows):
		rows = rows[:q.Limit]
	case q.Limit == 0 && s.settings.PageSize > 0 && s.settings.PageSize < len(rows):
		rows = rows[:s.settings.PageSize]
	}

	result := &DashboardResult{
		Metrics:                   view.Metrics,
		RateBand:                  view.Metrics.RateBand(),
		ByInterestGroup:           pipeline.TopN(view.ByInterestGroup, top),
		ByDate:                    view.ByDate,
		NotDispatchedByLeadStatus: pipeline.TopN(view.NotDispatchedByLeadStatus, s.settings.TopStatuses),
		DispatchBreakdown:         view.DispatchBreakdown,
		NotDispatched:             pipeline.SummarizeNotDispatched(view),
		Timeline:                  timeline,
		Table:                     export.Project(ds, rows),
		FilteredRows:              len(view.Rows),
		DatasetRows:               ds.Len(),
	}

	s.logger.Debug("Dashboard computed in %.2fms (%d of %d leads)",
		float64(time.Since(startTime).Nanoseconds())/1e6, result.FilteredRows, result.DatasetRows)
	return result, nil
}

// Options lists the filter choices of the current dataset
func (s *DashboardService) Options(ctx context.Context) (leads.Options, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return leads.Options{}, err
	}
	return leads.FilterOptions(ds), nil
}

// Export serializes the filtered leads, naming the file after now
func (s *DashboardService) Export(ctx context.Context, spec leads.FilterSpec, now time.Time) (string, []byte, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return "", nil, err
	}

	view := pipeline.Apply(ds, spec)
	raw, err := export.Encode(export.Build(ds, view))
	if err != nil {
		return "", nil, err
	}

	name := export.Filename(now)
	s.logger.Info("Export %s built (%d leads, %d bytes)", name, view.Metrics.TotalLeads, len(raw))
	return name, raw, nil
}

func (s *DashboardService) load(ctx context.Context) (*leads.Dataset, error) {
	ds, err := s.store.Load(ctx)
	if stderrors.Is(err, core.ErrDatasetAbsent) {
		return nil, ErrNoData
	}
	if err != nil {
		s.logger.Error("Loading dataset failed: %v", err)
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}
