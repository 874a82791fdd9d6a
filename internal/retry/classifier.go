package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// StoreErrorClassifier recognizes transient failures from either store backend.
type StoreErrorClassifier struct{}

// NewStoreErrorClassifier creates a classifier for SQLite and PostgreSQL errors.
func NewStoreErrorClassifier() *StoreErrorClassifier {
	return &StoreErrorClassifier{}
}

// IsTransient reports whether err is worth another attempt.
func (c *StoreErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}

	return isNetworkError(err) || hasTransientMessage(err)
}

// isTransientPgCode covers classes 08 (connection), 53 (resources) and 57 (operator
// intervention) plus serialization, deadlock and lock-not-available failures.
func isTransientPgCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "53"),
		strings.HasPrefix(code, "57"):
		return true
	}
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}
	return false
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"i/o timeout",
	"broken pipe",
	"server closed the connection",
	"database is locked",
	"database is busy",
	"unexpected eof",
}

func hasTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
