//go:build integration

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/egresos/internal/db"
	"github.com/vvka-141/egresos/internal/logging"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/internal/testinfra"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// legacySchema is a destination table created before the loader existed.
const legacySchema = `CREATE TABLE legacy_egresos ("ANO_EGRESO" BIGINT, "SEXO" TEXT);
INSERT INTO legacy_egresos VALUES (2015, 'MUJER'), (2015, 'HOMBRE');
`

func startPostgresStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	script := filepath.Join(t.TempDir(), "legacy.sql")
	require.NoError(t, os.WriteFile(script, []byte(legacySchema), 0644))

	ctr, err := testinfra.StartPostgres(ctx, script)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	var logs bytes.Buffer
	s, err := Open(ctx, ctr.ConnString, Options{}, db.Options{Retries: 3}, logging.NewWriterLogger(&logs, true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.Equal(t, db.Postgres, s.Dialect())
	return s, &logs
}

func TestPostgres_StoreLifecycle(t *testing.T) {
	s, logs := startPostgresStore(t)
	ctx := context.Background()

	assert.False(t, s.YearExists(ctx, testTable, intPtr(2019)))
	assert.Contains(t, logs.String(), "does not exist yet")

	_, err := s.CountsByYear(ctx, testTable)
	assert.ErrorIs(t, err, egresos.ErrTableMissing)

	entry := &egresos.ManifestEntry{
		FileName: "EGRE_DATOS_ABIERTOS_2019.csv", Year: 2019, Checksum: "abc",
		RowCount: 3, RunID: "run-1", LoadedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Append(ctx, testTable, yearBatch(t, 2019, 3), entry))
	assert.True(t, s.YearExists(ctx, testTable, intPtr(2019)))

	later := batch(t, []string{"ANO_EGRESO", "SEXO", "PESO"}, []any{int64(2020), "HOMBRE", "3.5"})
	require.NoError(t, s.Append(ctx, testTable, later, nil))

	counts, err := s.CountsByYear(ctx, testTable)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(2019), counts[0].Year.Int64)
	assert.Equal(t, int64(3), counts[0].Count)
	assert.Equal(t, int64(1), counts[1].Count)

	cols, err := existingColumns(ctx, s.DB(), s.Dialect(), testTable)
	require.NoError(t, err)
	assert.Equal(t, table.KindReal, cols["PESO"])

	manifest, err := s.Manifest(ctx)
	require.NoError(t, err)
	require.Len(t, manifest, 1)
	assert.Equal(t, *entry, manifest[0])
}

func TestPostgres_ChunksWithNumberedPlaceholders(t *testing.T) {
	s, _ := startPostgresStore(t)
	s.opts.InsertBatchSize = 9
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, testTable, yearBatch(t, 2021, 100), nil))

	counts, err := s.CountsByYear(ctx, testTable)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(100), counts[0].Count)
}

func TestPostgres_AppendsToExistingTable(t *testing.T) {
	s, _ := startPostgresStore(t)
	ctx := context.Background()

	assert.True(t, s.YearExists(ctx, "legacy_egresos", intPtr(2015)))
	require.NoError(t, s.Append(ctx, "legacy_egresos", batch(t, []string{"ANO_EGRESO", "SEXO"}, []any{"2016", "MUJER"}), nil))

	counts, err := s.CountsByYear(ctx, "legacy_egresos")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(2), counts[0].Count)
	assert.Equal(t, int64(2016), counts[1].Year.Int64)
}

func TestPostgres_FailedAppendRollsBack(t *testing.T) {
	s, _ := startPostgresStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, testTable, yearBatch(t, 2019, 1), nil))

	// A text value cannot be written into the BIGINT year column.
	bad := batch(t, []string{"ANO_EGRESO", "SEXO", "ETNIA"},
		[]any{"2020", "MUJER", "x"},
		[]any{"unknown", "MUJER", "y"},
	)
	require.Error(t, s.Append(ctx, testTable, bad, nil))

	assert.False(t, s.YearExists(ctx, testTable, intPtr(2020)))
	cols, err := existingColumns(ctx, s.DB(), s.Dialect(), testTable)
	require.NoError(t, err)
	assert.NotContains(t, cols, "ETNIA", "column added inside the failed transaction is rolled back")
}
