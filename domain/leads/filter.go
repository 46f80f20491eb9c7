package leads

import (
	"sort"
)

// Selection is a multi-select filter value. Any() lets every value through, nulls
// included. An explicit selection matches only its members, so an empty explicit
// selection matches nothing.
type Selection[T comparable] struct {
	passAll bool
	values  map[T]struct{}
	order   []T
}

// Any returns the pass-through selection
func Any[T comparable]() Selection[T] {
	return Selection[T]{passAll: true}
}

// Only returns a selection of exactly the given values
func Only[T comparable](values ...T) Selection[T] {
	s := Selection[T]{values: make(map[T]struct{}, len(values))}
	for _, v := range values {
		if _, dup := s.values[v]; dup {
			continue
		}
		s.values[v] = struct{}{}
		s.order = append(s.order, v)
	}
	return s
}

// IsAny reports whether s is the pass-through selection
func (s Selection[T]) IsAny() bool {
	return s.passAll
}

// Contains reports whether v passes s
func (s Selection[T]) Contains(v T) bool {
	if s.passAll {
		return true
	}
	_, ok := s.values[v]
	return ok
}

// Values returns the selected values in the order given; nil for Any()
func (s Selection[T]) Values() []T {
	return append([]T(nil), s.order...)
}

// FilterSpec is an immutable set of viewer filters. The zero value matches nothing;
// use AllOf or NewFilterSpec.
type FilterSpec struct {
	interestGroups   Selection[string]
	dateRange        *DateRange
	dispatchStatuses Selection[DispatchStatus]
	leadStatuses     Selection[string]
}

// FilterOption narrows a FilterSpec
type FilterOption func(*FilterSpec)

// NewFilterSpec starts from "everything selected, no date range" and applies opts
func NewFilterSpec(opts ...FilterOption) FilterSpec {
	spec := FilterSpec{
		interestGroups:   Any[string](),
		dispatchStatuses: Any[DispatchStatus](),
		leadStatuses:     Any[string](),
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// AllOf is the viewer default: every group, status and date selected
func AllOf() FilterSpec {
	return NewFilterSpec()
}

// WithInterestGroups restricts interest groups
func WithInterestGroups(sel Selection[string]) FilterOption {
	return func(s *FilterSpec) { s.interestGroups = sel }
}

// WithDispatchStatuses restricts normalized dispatch statuses
func WithDispatchStatuses(sel Selection[DispatchStatus]) FilterOption {
	return func(s *FilterSpec) { s.dispatchStatuses = sel }
}

// WithLeadStatuses restricts lead statuses
func WithLeadStatuses(sel Selection[string]) FilterOption {
	return func(s *FilterSpec) { s.leadStatuses = sel }
}

// WithDateRange restricts creation dates to r, inclusive
func WithDateRange(r DateRange) FilterOption {
	return func(s *FilterSpec) { s.dateRange = &r }
}

func (s FilterSpec) InterestGroups() Selection[string] { return s.interestGroups }

func (s FilterSpec) DispatchStatuses() Selection[DispatchStatus] { return s.dispatchStatuses }

func (s FilterSpec) LeadStatuses() Selection[string] { return s.leadStatuses }

// DateRange returns the active range, if any
func (s FilterSpec) DateRange() (DateRange, bool) {
	if s.dateRange == nil {
		return DateRange{}, false
	}
	return *s.dateRange, true
}

// Matches reports whether l satisfies every filter
func (s FilterSpec) Matches(l Lead) bool {
	if !s.interestGroups.Contains(l.InterestGroup) {
		return false
	}
	if s.dateRange != nil {
		day, ok := l.Day()
		if !ok || !s.dateRange.Contains(day) {
			return false
		}
	}
	if !s.dispatchStatuses.Contains(l.Dispatch) {
		return false
	}
	return s.leadStatuses.Contains(l.LeadStatus)
}

// Options are the choices a viewer can filter on, derived from the loaded dataset
type Options struct {
	InterestGroups   []string         `json:"interest_groups"`
	LeadStatuses     []string         `json:"lead_statuses"`
	DispatchStatuses []DispatchStatus `json:"dispatch_statuses"`
	MinDate          *Date            `json:"min_date,omitempty"`
	MaxDate          *Date            `json:"max_date,omitempty"`
}

// FilterOptions collects sorted distinct non-empty groups and statuses plus the date bounds
func FilterOptions(ds *Dataset) Options {
	opts := Options{
		InterestGroups:   []string{},
		LeadStatuses:     []string{},
		DispatchStatuses: DispatchChoices(),
	}
	if ds == nil {
		return opts
	}

	groups := make(map[string]struct{})
	statuses := make(map[string]struct{})
	var minDate, maxDate Date
	for _, l := range ds.Leads {
		if l.InterestGroup != "" {
			groups[l.InterestGroup] = struct{}{}
		}
		if l.LeadStatus != "" {
			statuses[l.LeadStatus] = struct{}{}
		}
		if day, ok := l.Day(); ok {
			if minDate.IsZero() || day.Before(minDate) {
				minDate = day
			}
			if maxDate.IsZero() || maxDate.Before(day) {
				maxDate = day
			}
		}
	}

	opts.InterestGroups = sortedKeys(groups)
	opts.LeadStatuses = sortedKeys(statuses)
	if !minDate.IsZero() {
		opts.MinDate = &minDate
		opts.MaxDate = &maxDate
	}
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
