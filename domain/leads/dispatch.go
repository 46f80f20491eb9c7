package leads

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DispatchStatus is the normalized classification of a lead's dispatch field
type DispatchStatus string

const (
	Dispatched    DispatchStatus = "Dispatched"
	NotDispatched DispatchStatus = "NotDispatched"
	Other         DispatchStatus = "Other"
)

// Raw spreadsheet values, already normalized
const (
	dispatchedToken         = "disparado"
	notDispatchedToken      = "não disparado"
	notDispatchedPlainToken = "nao disparado"
)

// NormalizeDispatch trims surrounding whitespace, lower-cases and composes s (NFC).
// The steps repeat until the value is stable, so
// NormalizeDispatch(NormalizeDispatch(x)) == NormalizeDispatch(x).
func NormalizeDispatch(s string) string {
	v := normalizeStep(s)
	for i := 0; i < maxNormalizeSteps; i++ {
		next := normalizeStep(v)
		if next == v {
			break
		}
		v = next
	}
	return v
}

const maxNormalizeSteps = 4

func normalizeStep(s string) string {
	return strings.TrimSpace(norm.NFC.String(strings.ToLower(strings.TrimSpace(s))))
}

// ClassifyDispatch maps a raw dispatch value to its status
func ClassifyDispatch(raw string) DispatchStatus {
	switch NormalizeDispatch(raw) {
	case dispatchedToken:
		return Dispatched
	case notDispatchedToken, notDispatchedPlainToken:
		return NotDispatched
	default:
		return Other
	}
}

// ParseDispatchStatus accepts either a status name (Dispatched, NotDispatched, Other,
// case-insensitive) or a raw spreadsheet value such as "Não disparado"
func ParseDispatchStatus(s string) DispatchStatus {
	switch NormalizeDispatch(s) {
	case "dispatched":
		return Dispatched
	case "notdispatched", "not_dispatched", "not dispatched":
		return NotDispatched
	case "other":
		return Other
	}
	return ClassifyDispatch(s)
}

// DispatchChoices lists the statuses offered to viewers, in display order
func DispatchChoices() []DispatchStatus {
	return []DispatchStatus{Dispatched, NotDispatched}
}
