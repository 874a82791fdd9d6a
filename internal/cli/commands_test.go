package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// "MUJER" rows with a Latin-1 encoded "Ñuble" region name.
const extract2019 = "PERTE;SEXO_PERSONA;GLOSA_REGION_RESIDENCIA;ANO_EGRESO;DIAS_ESTADIA\n" +
	"1;MUJER;\xd1uble;2019;3\n" +
	"2;HOMBRE;Biob\xedo;2019;1\n" +
	"*;*;*;2019;*\n"

type run struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, args ...string) run {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return run{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// workspace creates a base directory with a data directory and returns the
// flags pointing every command at it.
func workspace(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data"), 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(base, "data", name), []byte(content), 0644))
	}
	return base, []string{"--base-dir", base, "--env-file", filepath.Join(base, "none.env")}
}

func TestRoot_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"positional argument", []string{"data"}},
		{"file flag without value", []string{"-f"}},
		{"empty file flag", []string{"--file="}},
		{"bad flag value", []string{"--connect-retries", "many"}},
		{"subcommand argument", []string{"status", "extra"}},
		{"subcommand unknown flag", []string{"report", "--pdf", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			require.Error(t, res.err)
			assert.ErrorIs(t, res.err, egresos.ErrUsage)
			assert.Equal(t, egresos.ExitUsageError, egresos.ExitCodeForError(res.err))
		})
	}
}

func TestRoot_LoadsDataDirectoryOnce(t *testing.T) {
	base, flags := workspace(t, map[string]string{
		"EGRE_DATOS_ABIERTOS_2019.csv": extract2019,
		"README.txt":                   "not an extract",
	})

	first := execute(t, flags...)
	require.NoError(t, first.err, first.stderr)
	assert.Contains(t, first.stdout, "--- Database validation: records per year in 'egresos_pacientes' ---")
	assert.Contains(t, first.stdout, "Year: 2019, Records: 2")
	assert.Contains(t, first.stderr, "Skipping non-matching file: README.txt")
	assert.Contains(t, first.stderr, "Finished processing all new files.")
	assert.FileExists(t, filepath.Join(base, "database", "ministerio_de_salud_chile.db"))

	second := execute(t, flags...)
	require.NoError(t, second.err)
	assert.Contains(t, second.stdout, "Year: 2019, Records: 2")
	assert.Contains(t, second.stderr, "already exists in the database, skipping.")
	assert.Contains(t, second.stderr, "No new files were processed or saved to the database.")
}

func TestRoot_SingleFile(t *testing.T) {
	base, flags := workspace(t, nil)
	path := filepath.Join(base, "upload_2021.csv")
	require.NoError(t, os.WriteFile(path, []byte("ANO_EGRESO;SEXO_PERSONA\n2021;MUJER\n"), 0644))

	res := execute(t, append(flags, "-f", path)...)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Year: 2021, Records: 1")
}

func TestRoot_MissingDataDirectory(t *testing.T) {
	base := t.TempDir()

	res := execute(t, "--base-dir", base, "--env-file", filepath.Join(base, "none"))
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, egresos.ErrDataDirMissing)
	assert.Equal(t, egresos.ExitGeneralError, egresos.ExitCodeForError(res.err))
	assert.Contains(t, res.stderr, "Data directory")
}

func TestRoot_DatabaseDirectoryCannotBeCreated(t *testing.T) {
	base, flags := workspace(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(base, "database"), []byte("a file, not a directory"), 0644))

	res := execute(t, flags...)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, egresos.ErrDatabaseDir)
	assert.Equal(t, egresos.ExitGeneralError, egresos.ExitCodeForError(res.err))
}

func TestRoot_InvalidConfiguration(t *testing.T) {
	_, flags := workspace(t, nil)

	res := execute(t, append(flags, "--table", "egresos-2019")...)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, egresos.ErrInvalidConfig)
	assert.Equal(t, egresos.ExitGeneralError, egresos.ExitCodeForError(res.err))
}

func TestRoot_ConfigFileAndFlagPrecedence(t *testing.T) {
	base, flags := workspace(t, map[string]string{"EGRE_DATOS_ABIERTOS_2019.csv": extract2019})
	require.NoError(t, os.WriteFile(filepath.Join(base, "egresos.yaml"), []byte("table: from_yaml\ndatabase: db/custom.db\n"), 0644))

	res := execute(t, flags...)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "records per year in 'from_yaml'")
	assert.FileExists(t, filepath.Join(base, "db", "custom.db"))

	res = execute(t, append(flags, "--table", "from_flag")...)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "records per year in 'from_flag'")
}

func TestRoot_WritesMetricsFile(t *testing.T) {
	base, flags := workspace(t, map[string]string{"EGRE_DATOS_ABIERTOS_2019.csv": extract2019})

	res := execute(t, append(flags, "--metrics-file", "egresos.prom")...)
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(filepath.Join(base, "egresos.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `egresos_files_total{outcome="loaded"} 1`)
	assert.Contains(t, string(data), `egresos_table_rows{year="2019"} 2`)
}

func TestReport_BeforeAnyLoad(t *testing.T) {
	base, flags := workspace(t, nil)
	xlsx := filepath.Join(base, "out.xlsx")

	res := execute(t, append([]string{"report", "--xlsx", xlsx}, flags...)...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Nothing loaded yet")
	assert.Empty(t, res.stdout)
	assert.NoDirExists(t, filepath.Join(base, "database"), "report must not create the database")
	assert.NoFileExists(t, xlsx)
}

func TestReport_ExportsWorkbook(t *testing.T) {
	base, flags := workspace(t, map[string]string{"EGRE_DATOS_ABIERTOS_2019.csv": extract2019})
	require.NoError(t, execute(t, flags...).err)

	xlsx := filepath.Join(base, "out.xlsx")
	res := execute(t, append([]string{"report", "--xlsx", xlsx}, flags...)...)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Year: 2019, Records: 2")
	assert.FileExists(t, xlsx)
}

func TestStatus_ListsLoadedFiles(t *testing.T) {
	base, flags := workspace(t, map[string]string{"EGRE_DATOS_ABIERTOS_2019.csv": extract2019})

	res := execute(t, append([]string{"status"}, flags...)...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No files have been loaded yet.")
	assert.NoDirExists(t, filepath.Join(base, "database"), "status must not create the database")

	require.NoError(t, execute(t, flags...).err)

	res = execute(t, append([]string{"status"}, flags...)...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "EGRE_DATOS_ABIERTOS_2019.csv\tyear=2019\trows=2\tdropped=1")
}
