package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"leadboard/domain/leads"
	"leadboard/internal/dataset"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFilters(t *testing.T, args ...string) leads.FilterSpec {
	t.Helper()
	var filters filterFlags
	cmd := &cobra.Command{Use: "test"}
	filters.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))

	spec, err := filters.spec(cmd)
	require.NoError(t, err)
	return spec
}

func TestFilterFlagsPresence(t *testing.T) {
	spec := parseFilters(t)
	assert.True(t, spec.InterestGroups().IsAny())
	_, ok := spec.DateRange()
	assert.False(t, ok)

	spec = parseFilters(t, "--group=", "--dispatch", "nao disparado")
	assert.False(t, spec.InterestGroups().IsAny())
	assert.Empty(t, spec.InterestGroups().Values())
	assert.Equal(t, []leads.DispatchStatus{leads.NotDispatched}, spec.DispatchStatuses().Values())
}

func TestFilterFlagsOpenDateRange(t *testing.T) {
	spec := parseFilters(t, "--from", "2024-02-01")
	r, ok := spec.DateRange()
	require.True(t, ok)
	assert.True(t, r.Contains(leads.Date{Year: 2030, Month: time.June, Day: 1}))
	assert.False(t, r.Contains(leads.Date{Year: 2024, Month: time.January, Day: 31}))

	var filters filterFlags
	cmd := &cobra.Command{Use: "test"}
	filters.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--from", "2024-03-01", "--to", "2024-02-01"}))
	_, err := filters.spec(cmd)
	assert.Error(t, err)
}

func TestDemoCommandWritesLoadableDataset(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.xlsx")
	cmd := newDemoCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--out", out, "--leads", "25", "--seed", "3"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "25 synthetic leads")

	ds, err := dataset.NewFileStore(out).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, ds.Len())
	assert.Empty(t, ds.MissingColumns())
}
