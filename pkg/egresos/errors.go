package egresos

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// Callers distinguish them with errors.Is().
var (
	// ErrUsage indicates invalid command-line arguments or flags.
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the resolved configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDatabaseDir indicates the directory for the store file could not be created.
	ErrDatabaseDir = errors.New("cannot create database directory")

	// ErrConnectionFailed indicates the store could not be opened or did not answer the liveness query.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrDataDirMissing indicates the input data directory does not exist.
	ErrDataDirMissing = errors.New("data directory not found")

	// ErrYearNotFound indicates no year could be derived from a file path.
	ErrYearNotFound = errors.New("year not found in file path")

	// ErrYearOutOfRange indicates the derived year falls outside the configured bounds.
	ErrYearOutOfRange = errors.New("year out of range")

	// ErrTableMissing indicates the queried table does not exist yet.
	ErrTableMissing = errors.New("table does not exist")

	// ErrEmptyBatch indicates a batch with no rows reached a stage that needs rows.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrInvalidIdentifier indicates a table or column name that cannot be used in SQL.
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// usageErrorPatterns are prefixes of the errors cobra/pflag produce for bad command lines.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"flag needs an argument",
	"bad flag syntax",
	"invalid argument",
	"accepts ",
	"required flag",
}

// ExitCodeForError returns the process exit code for an error.
// Returns ExitSuccess (0) for nil, ExitUsageError (2) for command-line errors,
// and ExitGeneralError (1) for everything else, fatal setup errors included.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) {
		return ExitUsageError
	}

	switch {
	case errors.Is(err, ErrDatabaseDir),
		errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrDataDirMissing),
		errors.Is(err, ErrInvalidConfig):
		return ExitGeneralError
	}

	msg := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(msg, p) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
