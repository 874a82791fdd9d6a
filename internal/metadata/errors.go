package metadata

import (
	"fmt"
)

// YearError describes why a year could not be derived from, or accepted for, a file.
type YearError struct {
	FilePath string // Path of the offending file
	Year     int    // Extracted year, 0 when extraction failed
	Message  string // Primary error message
	Hint     string // Actionable suggestion, optional
	err      error  // Sentinel for errors.Is
}

func (e *YearError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *YearError) Unwrap() error {
	return e.err
}
