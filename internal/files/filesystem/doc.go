// Package filesystem abstracts the few filesystem operations the pipeline
// needs, so discovery and loading can run against an in-memory tree in tests.
//
// Implementations:
//   - OSFileSystem: production implementation backed by package os
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
