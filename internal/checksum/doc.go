// Package checksum fingerprints source files so the ingestion manifest can
// record exactly which bytes were loaded for a year.
package checksum
