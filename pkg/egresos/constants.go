package egresos

import "time"

// Exit codes for the egresos process.
//   - 0: Success (including runs where every file was skipped)
//   - 1: Fatal error (database directory, database connection, missing data directory)
//   - 2: CLI usage error (invalid arguments or flags)
//   - 3: Internal panic
const (
	ExitSuccess      = 0 // Run completed; recoverable per-file failures do not change this
	ExitGeneralError = 1 // Fatal setup error or unclassified error
	ExitUsageError   = 2 // CLI usage error (unknown flag, missing flag value, stray argument)
	ExitPanic        = 3 // Internal panic (unexpected crash)
)

const (
	// DefaultTableName is the destination table for cleaned discharge records.
	DefaultTableName = "egresos_pacientes"

	// DefaultDatabaseFile is the store location relative to the base directory.
	DefaultDatabaseFile = "database/ministerio_de_salud_chile.db"

	// DefaultDataDir is the directory, relative to the base directory, holding yearly extracts.
	DefaultDataDir = "data"

	// DefaultConfigFileName is looked up in the base directory when --config is not given.
	DefaultConfigFileName = "egresos.yaml"

	// DefaultFilePattern matches yearly extract filenames, e.g. EGRE_DATOS_ABIERTOS_2019.csv.
	DefaultFilePattern = `^EGRE_DATOS_ABIERTOS_\d{4}\.csv$`

	// DefaultThreshold is the fraction of columns that may hold the sentinel before a row is dropped.
	DefaultThreshold = 0.5

	// DefaultSentinel marks suppressed or missing values in the source extracts.
	DefaultSentinel = "*"

	// DefaultDelimiter separates fields in the source extracts.
	DefaultDelimiter = ";"

	// DefaultEncoding is the character encoding of the source extracts.
	DefaultEncoding = "latin1"

	// DefaultYearColumn is the destination column holding the discharge year.
	DefaultYearColumn = "ANO_EGRESO"

	// DefaultInsertBatchSize is the number of rows per multi-row INSERT statement.
	DefaultInsertBatchSize = 500

	// ManifestTable records every file whose batch was committed.
	ManifestTable = "ingest_manifest"

	// DefaultConnectTimeout bounds the liveness round-trip after opening the store.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between connection retries.
	DefaultRetryMaxDelay = 10 * time.Second
)

// DefaultColumnMapping renames source headers to destination column names.
// Identity entries are kept so the mapping documents the full expected schema.
func DefaultColumnMapping() map[string]string {
	return map[string]string{
		"PERTE":                   "PERTENENCIA_ESTABLECIMIENTO_SALUD",
		"SEXO_PERSONA":            "SEXO",
		"EDAD_GRUPO":              "GRUPO_EDAD",
		"GRUPOS_ETAREOS":          "ETNIA",
		"GLOSA_PAIS_ORIGEN":       "GLOSA_PAIS_ORIGEN",
		"COMUNA_RESIDENCIA":       "COMUNA_RESIDENCIA",
		"GLOSA_COMUNA_RESIDENCIA": "GLOSA_COMUNA_RESIDENCIA",
		"REGION_RESIDENCIA":       "REGION_RESIDENCIA",
		"GLOSA_REGION_RESIDENCIA": "GLOSA_REGION_RESIDENCIA",
		"PREVISION":               "PREVISION",
		"GLOSA_PREVISION":         "GLOSA_PREVISION",
		"ANO_EGRESO":              "ANO_EGRESO",
		"DIAG1":                   "DIAG1",
		"DIAG2":                   "DIAG2",
		"DIAS_ESTADIA":            "DIAS_ESTADA",
		"CONDICION_EGRESO":        "CONDICION_EGRESO",
		"INTERV_Q":                "INTERV_Q",
		"PROCED":                  "PROCED",
	}
}

// DefaultIntegerColumns lists destination columns coerced to integers.
func DefaultIntegerColumns() []string {
	return []string{"COMUNA_RESIDENCIA", "REGION_RESIDENCIA", "ANO_EGRESO", "DIAS_ESTADA"}
}
