package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T, rows ...[]string) *leads.Dataset {
	t.Helper()
	ds, err := leads.MapSchema(&leads.Table{Headers: leads.RequiredColumns, Rows: rows})
	require.NoError(t, err)
	return ds
}

func TestLoadAbsentFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "base_leads.xlsx"))

	ds, err := store.Load(context.Background())

	assert.Nil(t, ds)
	assert.ErrorIs(t, err, core.ErrDatasetAbsent)
	assert.True(t, core.IsDatasetAbsent(err))
	assert.Equal(t, errors.CodeFileNotFound, errors.GetCode(err))
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "base_leads.xlsx")
	store := NewFileStore(path)
	ctx := context.Background()

	in := testDataset(t,
		[]string{"2024-01-01 09:15", "A", "Disparado", "Novo"},
		[]string{"", "B", "Não disparado", "Sem WhatsApp"},
	)
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, *in.Leads[0].CreatedAt, *out.Leads[0].CreatedAt)
	assert.Nil(t, out.Leads[1].CreatedAt)
	assert.Equal(t, leads.NotDispatched, out.Leads[1].Dispatch)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveMissingColumnsKeepsPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bad := &leads.Dataset{Columns: []string{leads.ColumnCreatedAt, leads.ColumnInterestGroup, leads.ColumnDispatch}}
	err = store.Save(ctx, bad)

	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumns, errors.GetCode(err))
	assert.Equal(t, []string{leads.ColumnLeadStatus}, errors.GetDetails(err))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrUnreadableSpreadsheet)
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	store := NewFileStore(path)
	ctx := context.Background()

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Equal(t, path, info.Path)

	require.NoError(t, store.Save(ctx, testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	info, err = store.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, 1, info.Rows)
	assert.Positive(t, info.Size)
	assert.Equal(t, leads.RequiredColumns, info.Columns)
}

func TestCachedStoreReusesAndInvalidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	cache := NewCachedStore(NewFileStore(path), time.Hour)
	ctx := context.Background()

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, core.ErrDatasetAbsent)

	require.NoError(t, cache.Save(ctx, testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	first, err := cache.Load(ctx)
	require.NoError(t, err)
	second, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, cache.Save(ctx, testDataset(t,
		[]string{"2024-01-01", "A", "disparado", "Novo"},
		[]string{"2024-01-02", "B", "disparado", "Novo"},
	)))
	third, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Len())
}

func TestCachedStoreSeesExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	files := NewFileStore(path)
	cache := NewCachedStore(files, 0)
	ctx := context.Background()

	require.NoError(t, files.Save(ctx, testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	first, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	require.NoError(t, files.Save(ctx, testDataset(t,
		[]string{"2024-01-01", "A", "disparado", "Novo"},
		[]string{"2024-01-02", "B", "não disparado", "Perdido"},
	)))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len())

	require.NoError(t, os.Remove(path))
	_, err = cache.Load(ctx)
	assert.ErrorIs(t, err, core.ErrDatasetAbsent)
	assert.Equal(t, errors.CodeFileNotFound, errors.GetCode(err))
}

func TestCachedStoreExpires(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	cache := NewCachedStore(NewFileStore(path), time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	first, err := cache.Load(ctx)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	second, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCachedStoreLoadIgnoresCallerCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base_leads.xlsx")
	files := NewFileStore(path)
	require.NoError(t, files.Save(context.Background(), testDataset(t, []string{"2024-01-01", "A", "disparado", "Novo"})))
	cache := NewCachedStore(files, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = files.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
