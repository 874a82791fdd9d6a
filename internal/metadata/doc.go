// Package metadata derives ingestion metadata from source file names.
//
// Yearly extracts are published as EGRE_DATOS_ABIERTOS_<YYYY>.csv. The
// discharge year is taken from the name, never from the file contents:
//
//	year, err := metadata.ExtractYear("data/EGRE_DATOS_ABIERTOS_2019.csv")
//	// year == 2019
//
// Two rules are tried in order:
//
//  1. Four digits immediately preceding ".csv" at the end of the path.
//  2. The last path segment, cut at its first '.', whose final four
//     characters are all digits.
//
// When neither rule applies the error wraps egresos.ErrYearNotFound.
// ValidateYear applies the optional configured year bounds.
package metadata
