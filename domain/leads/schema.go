package leads

import (
	"strconv"
	"strings"
	"time"

	"leadboard/internal/errors"

	"golang.org/x/text/unicode/norm"
)

// Spreadsheet column names
const (
	ColumnCreatedAt      = "Data de criação do Lead Raiz"
	ColumnInterestGroup  = "Colégio de Interesse"
	ColumnDispatch       = "Info Disparo"
	ColumnLeadStatus     = "Status"
	ColumnName           = "Nome"
	ColumnPhone          = "Número de telefone"
	ColumnEmail          = "E-mail"
	ColumnDetailedStatus = "Status (Detalhado)"
)

// RequiredColumns must be present in every stored dataset, in reporting order
var RequiredColumns = []string{ColumnCreatedAt, ColumnInterestGroup, ColumnDispatch, ColumnLeadStatus}

// Table is a decoded sheet: a header row plus string cells
type Table struct {
	Headers []string
	Rows    [][]string
}

// Lead is one row of the dataset. Empty strings stand for missing values.
type Lead struct {
	CreatedAt     *time.Time
	InterestGroup string
	DispatchRaw   string
	Dispatch      DispatchStatus
	LeadStatus    string
	// Values holds every cell of the row, aligned with Dataset.Columns
	Values []string
}

// Day returns the calendar day the lead was created, if known
func (l Lead) Day() (Date, bool) {
	if l.CreatedAt == nil {
		return Date{}, false
	}
	return DateOf(*l.CreatedAt), true
}

// DetailedStatus is the lead status for leads that were not dispatched, "—" otherwise
func (l Lead) DetailedStatus() string {
	if l.Dispatch == NotDispatched {
		return l.LeadStatus
	}
	return "—"
}

// Dataset is an ordered sequence of leads sharing one column set
type Dataset struct {
	Columns []string
	Leads   []Lead
}

// Len returns the number of leads
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Leads)
}

// ColumnIndex returns the position of column, or -1
func (d *Dataset) ColumnIndex(column string) int {
	for i, c := range d.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset carries column
func (d *Dataset) HasColumn(column string) bool {
	return d.ColumnIndex(column) >= 0
}

// Value returns the raw cell of l under column
func (d *Dataset) Value(l Lead, column string) (string, bool) {
	idx := d.ColumnIndex(column)
	if idx < 0 || idx >= len(l.Values) {
		return "", false
	}
	return l.Values[idx], true
}

// MissingColumns lists required columns absent from the dataset
func (d *Dataset) MissingColumns() []string {
	var missing []string
	for _, col := range RequiredColumns {
		if !d.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Validate fails with MISSING_COLUMNS when a required column is absent
func (d *Dataset) Validate() error {
	if missing := d.MissingColumns(); len(missing) > 0 {
		return errors.MissingColumns(missing)
	}
	return nil
}

// DateParser turns a raw creation-date cell into a timestamp
type DateParser func(raw string) (time.Time, bool)

type schemaOptions struct {
	parseDate DateParser
}

// SchemaOption customizes MapSchema
type SchemaOption func(*schemaOptions)

// WithDateParser replaces the creation-date parser
func WithDateParser(p DateParser) SchemaOption {
	return func(o *schemaOptions) {
		o.parseDate = p
	}
}

// MapSchema binds a decoded table to the lead schema. It is the only place that checks
// for column presence: a table missing any required column fails with MISSING_COLUMNS.
// Unparsable creation dates become nil rather than failing the load.
func MapSchema(t *Table, opts ...SchemaOption) (*Dataset, error) {
	o := schemaOptions{parseDate: ParseCreatedAt}
	for _, opt := range opts {
		opt(&o)
	}

	columns := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		columns[i] = normalizeHeader(h)
	}
	ds := &Dataset{Columns: columns}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	createdIdx := ds.ColumnIndex(ColumnCreatedAt)
	groupIdx := ds.ColumnIndex(ColumnInterestGroup)
	dispatchIdx := ds.ColumnIndex(ColumnDispatch)
	statusIdx := ds.ColumnIndex(ColumnLeadStatus)

	ds.Leads = make([]Lead, 0, len(t.Rows))
	for _, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		values := make([]string, len(columns))
		for i := range values {
			if i < len(row) {
				values[i] = strings.TrimSpace(row[i])
			}
		}

		lead := Lead{
			InterestGroup: values[groupIdx],
			DispatchRaw:   values[dispatchIdx],
			Dispatch:      ClassifyDispatch(values[dispatchIdx]),
			LeadStatus:    values[statusIdx],
			Values:        values,
		}
		if raw := values[createdIdx]; raw != "" {
			if ts, ok := o.parseDate(raw); ok {
				lead.CreatedAt = &ts
			}
		}
		ds.Leads = append(ds.Leads, lead)
	}

	return ds, nil
}

var createdAtLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04",
	"2/1/2006",
}

// ParseCreatedAt accepts ISO dates and date-times, RFC3339 and day-first dd/mm/yyyy forms.
// Zone-less values are taken as UTC.
func ParseCreatedAt(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// IsNumericCell reports whether raw is a plain number, as Excel stores dates
func IsNumericCell(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return f, err == nil
}

func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
