package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/vvka-141/egresos/internal/files/filesystem"
	"github.com/vvka-141/egresos/internal/metadata"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Scanner classifies directory entries into yearly extracts and everything else.
// Safe for concurrent use as long as the filesystem provider is.
type Scanner struct {
	matcher    *metadata.Matcher
	fsProvider filesystem.FileSystemProvider
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// Panics if matcher or fsProvider is nil.
func NewScannerWithFS(matcher *metadata.Matcher, fsProvider filesystem.FileSystemProvider) *Scanner {
	if matcher == nil {
		panic("matcher cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{matcher: matcher, fsProvider: fsProvider}
}

// ScanDirectory lists dir without recursing.
func (s *Scanner) ScanDirectory(dir string) (egresos.ScanResult, error) {
	infos, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return egresos.ScanResult{}, fmt.Errorf("%w: %s", egresos.ErrDataDirMissing, dir)
		}
		return egresos.ScanResult{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var result egresos.ScanResult
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !s.matcher.Match(name) {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		path := s.fsProvider.Join(dir, name)
		year, yerr := metadata.ExtractYear(path)
		result.Files = append(result.Files, egresos.SourceFile{
			Path:       path,
			Name:       name,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
			Year:       year,
			YearErr:    yerr,
		})
	}

	SortFiles(result.Files)
	return result, nil
}

// SortFiles orders files by year, then name. Files without a year go last.
func SortFiles(files []egresos.SourceFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.YearErr == nil) != (b.YearErr == nil) {
			return a.YearErr == nil
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Name < b.Name
	})
}
