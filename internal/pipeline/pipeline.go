// Package pipeline turns a lead dataset plus viewer filters into the dashboard's
// metrics, chart series and export rows. Every function here is pure and total:
// malformed rows are carried through as nulls, never reported as errors.
package pipeline

import (
	"sort"

	"leadboard/domain/leads"
)

// Metrics summarizes a set of leads
type Metrics struct {
	TotalLeads          int     `json:"total_leads"`
	DispatchedCount     int     `json:"dispatched_count"`
	NotDispatchedCount  int     `json:"not_dispatched_count"`
	DispatchRatePercent float64 `json:"dispatch_rate_percent"`
}

// Rate bands used to color the dispatch rate card
const (
	BandSuccess = "success"
	BandWarning = "warning"
	BandDefault = "default"
)

// RateBand classifies the dispatch rate: success from 80%, warning from 60%
func (m Metrics) RateBand() string {
	switch {
	case m.DispatchRatePercent >= 80:
		return BandSuccess
	case m.DispatchRatePercent >= 60:
		return BandWarning
	default:
		return BandDefault
	}
}

// GroupCount is one bar of a ranking chart
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DateCount is one point of the timeline
type DateCount struct {
	Date  leads.Date `json:"date"`
	Count int        `json:"count"`
}

// NotDispatchedSummary describes the leads that were never messaged
type NotDispatchedSummary struct {
	Total            int    `json:"total"`
	DistinctStatuses int    `json:"distinct_statuses"`
	MostCommon       string `json:"most_common,omitempty"`
}

// FilteredView is the result of applying a FilterSpec to a Dataset
type FilteredView struct {
	Rows                      []leads.Lead `json:"-"`
	Metrics                   Metrics      `json:"metrics"`
	ByInterestGroup           []GroupCount `json:"by_interest_group"`
	ByDate                    []DateCount  `json:"by_date"`
	NotDispatchedByLeadStatus []GroupCount `json:"not_dispatched_by_lead_status"`
	DispatchBreakdown         []GroupCount `json:"dispatch_breakdown"`
}

// Apply keeps the rows matching spec, in dataset order, and derives every view from them
func Apply(ds *leads.Dataset, spec leads.FilterSpec) FilteredView {
	var rows []leads.Lead
	if ds != nil {
		rows = make([]leads.Lead, 0, len(ds.Leads))
		for _, l := range ds.Leads {
			if spec.Matches(l) {
				rows = append(rows, l)
			}
		}
	}
	return Summarize(rows)
}

// Summarize derives metrics and chart series from already-filtered rows
func Summarize(rows []leads.Lead) FilteredView {
	if rows == nil {
		rows = []leads.Lead{}
	}
	return FilteredView{
		Rows:            rows,
		Metrics:         ComputeMetrics(rows),
		ByInterestGroup: CountBy(rows, func(l leads.Lead) string { return l.InterestGroup }),
		ByDate:          CountByDate(rows),
		NotDispatchedByLeadStatus: CountBy(NotDispatchedRows(rows), func(l leads.Lead) string {
			return l.LeadStatus
		}),
		DispatchBreakdown: CountBy(rows, func(l leads.Lead) string { return l.DispatchRaw }),
	}
}

// ComputeMetrics counts leads by dispatch status. Leads whose status is neither
// dispatched nor not-dispatched count only toward the total.
func ComputeMetrics(rows []leads.Lead) Metrics {
	m := Metrics{TotalLeads: len(rows)}
	for _, l := range rows {
		switch l.Dispatch {
		case leads.Dispatched:
			m.DispatchedCount++
		case leads.NotDispatched:
			m.NotDispatchedCount++
		}
	}
	if m.TotalLeads > 0 {
		m.DispatchRatePercent = float64(m.DispatchedCount) / float64(m.TotalLeads) * 100
	}
	return m
}

// NotDispatchedRows keeps the rows whose normalized dispatch status is NotDispatched
func NotDispatchedRows(rows []leads.Lead) []leads.Lead {
	out := make([]leads.Lead, 0)
	for _, l := range rows {
		if l.Dispatch == leads.NotDispatched {
			out = append(out, l)
		}
	}
	return out
}

// CountBy groups rows by key, dropping empty keys, and ranks groups by count
// descending. Ties keep first-seen order.
func CountBy(rows []leads.Lead, key func(leads.Lead) string) []GroupCount {
	index := make(map[string]int)
	groups := make([]GroupCount, 0)
	for _, l := range rows {
		k := key(l)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, GroupCount{Key: k, Count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

// TopN returns the first k groups of a ranking; k <= 0 keeps all of them
func TopN(groups []GroupCount, k int) []GroupCount {
	if k <= 0 || len(groups) <= k {
		return groups
	}
	return groups[:k]
}

// CountByDate counts rows per creation day, ascending. Days without rows are absent.
func CountByDate(rows []leads.Lead) []DateCount {
	counts := make(map[leads.Date]int)
	for _, l := range rows {
		if day, ok := l.Day(); ok {
			counts[day]++
		}
	}

	out := make([]DateCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DateCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SummarizeNotDispatched reports how many leads were not dispatched and their most
// common lead status (first-seen wins ties)
func SummarizeNotDispatched(view FilteredView) NotDispatchedSummary {
	s := NotDispatchedSummary{
		Total:            view.Metrics.NotDispatchedCount,
		DistinctStatuses: len(view.NotDispatchedByLeadStatus),
	}
	if len(view.NotDispatchedByLeadStatus) > 0 {
		s.MostCommon = view.NotDispatchedByLeadStatus[0].Key
	}
	return s
}
