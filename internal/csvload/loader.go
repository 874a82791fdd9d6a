// Package csvload reads a yearly extract into a table.Table.
//
// Extracts are semicolon-delimited and Latin-1 encoded. The first record is
// the header; empty cells become nil. Records shorter than the header are
// padded, longer ones fail the whole file.
package csvload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/vvka-141/egresos/internal/checksum"
	"github.com/vvka-141/egresos/internal/files/filesystem"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Supported source encodings.
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"
)

// ErrEmptyFile is returned when a file has no header record.
var ErrEmptyFile = errors.New("file has no header")

// Options control how extracts are decoded.
type Options struct {
	Encoding  string // latin1 (default) or utf8
	Delimiter rune   // ';' when zero
}

// Result is a loaded file.
type Result struct {
	Table     *table.Table
	Checksum  string // SHA-256 of the raw file bytes
	BytesRead int64
}

// Loader reads extracts through a filesystem provider.
type Loader struct {
	fs         filesystem.FileSystemProvider
	calculator checksum.Calculator
	opts       Options
	logger     egresos.Logger
}

// NewLoader creates a Loader. Panics if any dependency is nil.
func NewLoader(fsProvider filesystem.FileSystemProvider, calculator checksum.Calculator, opts Options, logger egresos.Logger) *Loader {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingLatin1
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	return &Loader{fs: fsProvider, calculator: calculator, opts: opts, logger: logger}
}

// Load reads path and never fails: read errors are logged and yield an empty table.
func (l *Loader) Load(path string) Result {
	res, err := l.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("File not found: %s", path)
		} else {
			l.logger.Error("Failed to load %s: %v", path, err)
		}
		return Result{Table: table.New(), Checksum: res.Checksum}
	}
	l.logger.Info("Loaded %s: %d rows, %d columns", path, res.Table.Len(), len(res.Table.Columns))
	return res
}

// Read parses path and returns the first error encountered.
func (l *Loader) Read(path string) (Result, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	hr := l.calculator.Wrap(f)
	src, err := l.decoder(hr)
	if err != nil {
		return Result{}, err
	}

	t, err := parse(src, l.opts.Delimiter)
	if err != nil {
		return Result{}, err
	}
	// Drain anything the csv reader left unread so the checksum covers the whole file.
	if _, err := io.Copy(io.Discard, hr); err != nil {
		return Result{}, err
	}
	return Result{Table: t, Checksum: hr.Sum(), BytesRead: hr.BytesRead()}, nil
}

func (l *Loader) decoder(r io.Reader) (io.Reader, error) {
	switch l.opts.Encoding {
	case EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case EncodingUTF8:
		return &bomStripper{r: r}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", l.opts.Encoding)
	}
}

func parse(r io.Reader, delimiter rune) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	t := table.New(headerNames(header)...)

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(record))
		for i, cell := range record {
			if !utf8.ValidString(cell) {
				return nil, fmt.Errorf("record %d: invalid text encoding", line)
			}
			if cell != "" {
				row[i] = cell
			}
		}
		if err := t.Append(row); err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
	}
	return t, nil
}

// headerNames names blank header cells and disambiguates repeated ones.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = base + "." + strconv.Itoa(n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type bomStripper struct {
	r    io.Reader
	done bool
	buf  []byte
}

func (b *bomStripper) Read(p []byte) (int, error) {
	if !b.done {
		b.done = true
		head := make([]byte, len(utf8BOM))
		n, err := io.ReadFull(b.r, head)
		head = head[:n]
		if !bytes.Equal(head, utf8BOM) {
			b.buf = head
		}
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
	}
	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}
