// Package export builds the two-sheet workbook viewers download: the filtered leads
// projected to a fixed column order, plus a metrics summary.
package export

import (
	"fmt"
	"math"
	"time"

	"leadboard/adapters/excel"
	"leadboard/domain/leads"
	"leadboard/internal/pipeline"
)

// Sheet names and headers of the exported workbook
const (
	LeadsSheet   = "Leads Filtrados"
	SummarySheet = "Resumo"

	summaryMetricHeader = "Métrica"
	summaryValueHeader  = "Valor"

	createdAtLayout = "02/01/2006 15:04"
)

// ProjectionColumns is the export column order. Columns missing from the dataset
// are skipped; the detailed status is derived and always present.
var ProjectionColumns = []string{
	leads.ColumnCreatedAt,
	leads.ColumnName,
	leads.ColumnInterestGroup,
	leads.ColumnPhone,
	leads.ColumnEmail,
	leads.ColumnDispatch,
	leads.ColumnDetailedStatus,
}

// Table is a projected sheet of string cells
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// SummaryRow is one metric of the summary sheet
type SummaryRow struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Workbook is the export payload before serialization
type Workbook struct {
	Leads   Table
	Summary []SummaryRow
}

// Project maps rows of ds onto ProjectionColumns
func Project(ds *leads.Dataset, rows []leads.Lead) Table {
	var columns []string
	for _, col := range ProjectionColumns {
		if col == leads.ColumnDetailedStatus || (ds != nil && ds.HasColumn(col)) {
			columns = append(columns, col)
		}
	}

	table := Table{Headers: columns, Rows: make([][]string, 0, len(rows))}
	for _, l := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = projectCell(ds, l, col)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func projectCell(ds *leads.Dataset, l leads.Lead, column string) string {
	switch column {
	case leads.ColumnDetailedStatus:
		return l.DetailedStatus()
	case leads.ColumnCreatedAt:
		return FormatCreatedAt(l.CreatedAt)
	default:
		v, _ := ds.Value(l, column)
		return v
	}
}

// FormatCreatedAt renders a creation timestamp the way exports show it; nil is empty
func FormatCreatedAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(createdAtLayout)
}

// Summarize lists the metrics of the summary sheet; the rate is rounded to 2 places
func Summarize(m pipeline.Metrics) []SummaryRow {
	return []SummaryRow{
		{Metric: "Total de Leads", Value: float64(m.TotalLeads)},
		{Metric: "Disparados", Value: float64(m.DispatchedCount)},
		{Metric: "Não Disparados", Value: float64(m.NotDispatchedCount)},
		{Metric: "Taxa de Disparo (%)", Value: math.Round(m.DispatchRatePercent*100) / 100},
	}
}

// Build assembles the export of a filtered view of ds
func Build(ds *leads.Dataset, view pipeline.FilteredView) Workbook {
	return Workbook{
		Leads:   Project(ds, view.Rows),
		Summary: Summarize(view.Metrics),
	}
}

// Encode serializes wb as an xlsx workbook with the leads sheet first
func Encode(wb Workbook) ([]byte, error) {
	leadRows := make([][]interface{}, 0, len(wb.Leads.Rows)+1)
	leadRows = append(leadRows, toRow(wb.Leads.Headers))
	for _, r := range wb.Leads.Rows {
		leadRows = append(leadRows, toRow(r))
	}

	summaryRows := make([][]interface{}, 0, len(wb.Summary)+1)
	summaryRows = append(summaryRows, []interface{}{summaryMetricHeader, summaryValueHeader})
	for _, r := range wb.Summary {
		summaryRows = append(summaryRows, []interface{}{r.Metric, r.Value})
	}

	raw, err := excel.EncodeWorkbook(
		excel.SheetData{Name: LeadsSheet, Rows: leadRows},
		excel.SheetData{Name: SummarySheet, Rows: summaryRows},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return raw, nil
}

// Filename names an export taken at now
func Filename(now time.Time) string {
	return fmt.Sprintf("leads_whatsapp_%s.xlsx", now.Format("20060102_150405"))
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
