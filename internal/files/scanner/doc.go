// Package scanner discovers yearly extracts in the data directory.
//
// Entries whose base name matches the configured pattern are returned with
// their derived year, ordered by year and then by name so that repeated runs
// process files in the same sequence regardless of directory listing order.
// Everything else is reported back as skipped so the caller can log it.
package scanner
