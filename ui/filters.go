package ui

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadboard/domain/core"
	"leadboard/domain/leads"
)

var (
	openStart = leads.Date{Year: 1, Month: time.January, Day: 1}
	openEnd   = leads.Date{Year: 9999, Month: time.December, Day: 31}
)

// parseFilterSpec reads viewer filters from the query string. An absent parameter
// selects everything; a parameter given only with empty values selects nothing.
func parseFilterSpec(q url.Values) (leads.FilterSpec, error) {
	var opts []leads.FilterOption

	if groups, ok := multiValue(q, "group"); ok {
		opts = append(opts, leads.WithInterestGroups(leads.Only(groups...)))
	}
	if statuses, ok := multiValue(q, "status"); ok {
		opts = append(opts, leads.WithLeadStatuses(leads.Only(statuses...)))
	}
	if raw, ok := multiValue(q, "dispatch"); ok {
		dispatch := make([]leads.DispatchStatus, len(raw))
		for i, v := range raw {
			dispatch[i] = leads.ParseDispatchStatus(v)
		}
		opts = append(opts, leads.WithDispatchStatuses(leads.Only(dispatch...)))
	}

	from, hasFrom, err := dateParam(q, "from")
	if err != nil {
		return leads.FilterSpec{}, err
	}
	to, hasTo, err := dateParam(q, "to")
	if err != nil {
		return leads.FilterSpec{}, err
	}
	if hasFrom || hasTo {
		if !hasFrom {
			from = openStart
		}
		if !hasTo {
			to = openEnd
		}
		r, err := leads.NewDateRange(from, to)
		if err != nil {
			return leads.FilterSpec{}, core.NewInvalidFilterError("to", err.Error())
		}
		opts = append(opts, leads.WithDateRange(r))
	}

	return leads.NewFilterSpec(opts...), nil
}

// multiValue returns the non-empty values of key and whether key was present at all
func multiValue(q url.Values, key string) ([]string, bool) {
	raw, present := q[key]
	if !present {
		return nil, false
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values, true
}

func dateParam(q url.Values, key string) (leads.Date, bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return leads.Date{}, false, nil
	}
	d, err := leads.ParseDate(raw)
	if err != nil {
		return leads.Date{}, false, core.NewInvalidFilterError(key, err.Error())
	}
	return d, true, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewInvalidFilterError(key, "expected an integer")
	}
	return n, nil
}
