package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider is the read-only view of the data directory.
type FileSystemProvider interface {
	// ReadDir returns the entries of a directory in listing order.
	// A missing directory yields an error matching fs.ErrNotExist.
	ReadDir(path string) ([]FileInfo, error)

	// Open opens a file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)

	// Join builds a path inside the provider's namespace.
	Join(elem ...string) string
}
