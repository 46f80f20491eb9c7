package export

import (
	"bytes"
	"testing"
	"time"

	"leadboard/adapters/excel"
	"leadboard/domain/leads"
	"leadboard/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDataset(t *testing.T) *leads.Dataset {
	t.Helper()
	ds, err := leads.MapSchema(&leads.Table{
		Headers: []string{
			leads.ColumnEmail, leads.ColumnName, leads.ColumnCreatedAt, leads.ColumnInterestGroup,
			leads.ColumnDispatch, leads.ColumnLeadStatus, leads.ColumnPhone, "Origem",
		},
		Rows: [][]string{
			{"ana@x.com", "Ana", "2024-01-01 09:15", "A", "Disparado", "Novo", "5511999990000", "site"},
			{"bia@x.com", "Bia", "2024-01-02 10:00", "B", "Não disparado", "Sem WhatsApp", "5511999990001", "site"},
			{"caio@x.com", "Caio", "", "B", "pendente", "Novo", "", "feira"},
		},
	})
	require.NoError(t, err)
	return ds
}

func TestProjectOrdersColumns(t *testing.T) {
	ds := fullDataset(t)

	table := Project(ds, ds.Leads)

	assert.Equal(t, ProjectionColumns, table.Headers)
	assert.Equal(t, []string{"01/01/2024 09:15", "Ana", "A", "5511999990000", "ana@x.com", "Disparado", "—"}, table.Rows[0])
	assert.Equal(t, "Sem WhatsApp", table.Rows[1][6])
	assert.Equal(t, "", table.Rows[2][0], "null dates export as blanks")
}

func TestProjectSkipsAbsentColumns(t *testing.T) {
	ds, err := leads.MapSchema(&leads.Table{
		Headers: leads.RequiredColumns,
		Rows:    [][]string{{"2024-01-01", "A", "não disparado", "Perdido"}},
	})
	require.NoError(t, err)

	table := Project(ds, ds.Leads)

	assert.Equal(t, []string{
		leads.ColumnCreatedAt, leads.ColumnInterestGroup, leads.ColumnDispatch, leads.ColumnDetailedStatus,
	}, table.Headers)
	assert.Equal(t, []string{"01/01/2024 00:00", "A", "não disparado", "Perdido"}, table.Rows[0])
}

func TestSummarizeRoundsRate(t *testing.T) {
	rows := Summarize(pipeline.Metrics{TotalLeads: 3, DispatchedCount: 1, NotDispatchedCount: 1, DispatchRatePercent: 100.0 / 3})

	require.Len(t, rows, 4)
	assert.Equal(t, SummaryRow{Metric: "Total de Leads", Value: 3}, rows[0])
	assert.Equal(t, SummaryRow{Metric: "Taxa de Disparo (%)", Value: 33.33}, rows[3])
}

func TestEncodeReadsBack(t *testing.T) {
	ds := fullDataset(t)
	view := pipeline.Apply(ds, leads.AllOf())

	raw, err := Encode(Build(ds, view))
	require.NoError(t, err)

	sheet, err := excel.DecodeWorkbook(bytes.NewReader(raw), LeadsSheet)
	require.NoError(t, err)
	assert.Equal(t, ProjectionColumns, sheet.Headers)
	require.Len(t, sheet.Rows, view.Metrics.TotalLeads)
	for _, row := range sheet.Rows {
		require.Len(t, row, len(ProjectionColumns))
		assert.NotEmpty(t, row[len(row)-1], "every row carries a detailed status")
	}

	summary, err := excel.DecodeWorkbook(bytes.NewReader(raw), SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Métrica", "Valor"}, summary.Headers)
	assert.Equal(t, [][]string{
		{"Total de Leads", "3"},
		{"Disparados", "1"},
		{"Não Disparados", "1"},
		{"Taxa de Disparo (%)", "33.33"},
	}, summary.Rows)
}

func TestEncodeEmptyView(t *testing.T) {
	ds := fullDataset(t)
	view := pipeline.Apply(ds, leads.NewFilterSpec(leads.WithInterestGroups(leads.Only[string]())))

	raw, err := Encode(Build(ds, view))
	require.NoError(t, err)

	sheet, err := excel.DecodeWorkbook(bytes.NewReader(raw), LeadsSheet)
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "leads_whatsapp_20260309_140507.xlsx", Filename(now))
}
