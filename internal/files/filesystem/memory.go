package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	path    string
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// ReadDir returns entries in insertion order, mimicking an unsorted directory listing.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	order   []string
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{entries: make(map[string]*memoryEntry)}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds a file, creating parent directories as needed.
func (m *MemoryFileSystem) AddFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = normalize(p)
	m.ensureDir(path.Dir(p))
	m.put(&memoryEntry{
		path:    p,
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(p),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	})
}

// AddDir adds an empty directory.
func (m *MemoryFileSystem) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(normalize(p))
}

func (m *MemoryFileSystem) ensureDir(p string) {
	if _, ok := m.entries[p]; ok || p == "." || p == "/" {
		return
	}
	m.ensureDir(path.Dir(p))
	m.put(&memoryEntry{
		path: p,
		info: &memoryFileInfo{
			name:    path.Base(p),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	})
}

func (m *MemoryFileSystem) put(e *memoryEntry) {
	if _, exists := m.entries[e.path]; !exists {
		m.order = append(m.order, e.path)
	}
	m.entries[e.path] = e
}

func (m *MemoryFileSystem) ReadDir(p string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = normalize(p)
	dir, ok := m.entries[p]
	if !ok && p != "." && p != "/" {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}
	if ok && !dir.info.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrInvalid}
	}

	var result []FileInfo
	for _, key := range m.order {
		if key != p && path.Dir(key) == p && !strings.HasSuffix(key, "/") {
			result = append(result, m.entries[key].info)
		}
	}
	return result, nil
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if e.info.isDir {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return e.info, nil
}

func (m *MemoryFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}
