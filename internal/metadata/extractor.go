package metadata

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vvka-141/egresos/pkg/egresos"
)

var trailingYear = regexp.MustCompile(`(\d{4})\.csv$`)

// ExtractYear returns the discharge year encoded in path.
func ExtractYear(path string) (int, error) {
	if m := trailingYear.FindStringSubmatch(path); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil {
			return year, nil
		}
	}

	if year, ok := yearFromStem(path); ok {
		return year, nil
	}

	return 0, &YearError{
		FilePath: path,
		Message:  "could not extract year from file name",
		Hint:     "expected a name ending in <YYYY>.csv",
		err:      egresos.ErrYearNotFound,
	}
}

// yearFromStem takes the base name up to its first '.', then its last four characters.
func yearFromStem(path string) (int, bool) {
	stem, _, _ := strings.Cut(filepath.Base(path), ".")
	if len(stem) < 4 {
		return 0, false
	}
	tail := stem[len(stem)-4:]
	for i := 0; i < len(tail); i++ {
		if tail[i] < '0' || tail[i] > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(tail)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Matcher reports which directory entries are yearly extracts.
type Matcher struct {
	pattern *regexp.Regexp
}

// NewMatcher compiles the file name pattern. An empty pattern selects the default.
func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		pattern = egresos.DefaultFilePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: file pattern %q: %v", egresos.ErrInvalidConfig, pattern, err)
	}
	return &Matcher{pattern: re}, nil
}

// Match reports whether the base name matches the pattern in full.
func (m *Matcher) Match(name string) bool {
	return m.pattern.MatchString(name)
}

// String returns the pattern source.
func (m *Matcher) String() string {
	return m.pattern.String()
}
