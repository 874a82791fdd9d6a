package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Calculator computes content checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// Wrap returns a reader that hashes everything read through it.
	Wrap(r io.Reader) *HashingReader
}

// SHA256 implements Calculator using SHA-256. Zero-size and safe for concurrent use.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Wrap returns a HashingReader over r.
func (c SHA256) Wrap(r io.Reader) *HashingReader {
	h := sha256.New()
	return &HashingReader{r: io.TeeReader(r, h), h: h}
}

// HashingReader hashes bytes as they are consumed, so large extracts are read once.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	hr.n += int64(n)
	return n, err
}

// Sum returns the hex checksum of the bytes read so far.
func (hr *HashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}

// BytesRead returns the number of bytes consumed.
func (hr *HashingReader) BytesRead() int64 {
	return hr.n
}
