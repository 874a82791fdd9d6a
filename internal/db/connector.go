package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vvka-141/egresos/internal/retry"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// SQLite DSN parameters. A single writer connection avoids SQLITE_BUSY inside the process.
const (
	sqliteBusyTimeout = "5000"
	sqliteJournalMode = "WAL"
	sqliteSynchronous = "NORMAL"
)

// Options configure Open.
type Options struct {
	ConnectTimeout time.Duration // Per-attempt ping timeout
	Retries        int           // Extra attempts for transient failures; 0 means none
	Logger         egresos.Logger
}

// Open creates the parent directory of a SQLite target, opens the store and
// verifies it answers a trivial query. Failures wrap egresos.ErrDatabaseDir
// or egresos.ErrConnectionFailed.
func Open(ctx context.Context, target string, opts Options) (*sql.DB, Dialect, error) {
	dialect := DetectDialect(target)
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = egresos.DefaultConnectTimeout
	}

	dsn := target
	if dialect == SQLite {
		if err := EnsureDir(target); err != nil {
			return nil, dialect, err
		}
		dsn = sqliteDSN(target)
	}

	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, dialect, fmt.Errorf("%w: %v", egresos.ErrConnectionFailed, err)
	}
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}
	conn.SetConnMaxLifetime(time.Hour)

	executor := retry.NewExecutor(retry.NewStoreErrorClassifier(), retry.NewExponentialBackoff(opts.Retries,
		retry.WithInitialDelay(egresos.DefaultRetryInitialDelay),
		retry.WithMaxDelay(egresos.DefaultRetryMaxDelay),
	))
	if opts.Logger != nil {
		executor = executor.WithLogger(opts.Logger)
	}

	err = executor.Execute(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
		var one int
		return conn.QueryRowContext(pingCtx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		_ = conn.Close()
		return nil, dialect, fmt.Errorf("%w: %s: %w", egresos.ErrConnectionFailed, Redact(target), wrapConnectionError(err))
	}
	return conn, dialect, nil
}

// EnsureDir creates the directory tree holding a SQLite file.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", egresos.ErrDatabaseDir, dir, err)
	}
	return nil
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", sqliteJournalMode)
	params.Set("_busy_timeout", sqliteBusyTimeout)
	params.Set("_synchronous", sqliteSynchronous)
	params.Set("_txlock", "immediate")
	return path + "?" + params.Encode()
}

// wrapConnectionError adds a hint for the failures users can act on.
func wrapConnectionError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return fmt.Errorf("connection refused (is the server running?): %w", err)
	case strings.Contains(msg, "password authentication failed"):
		return fmt.Errorf("authentication failed (check the credentials in the URL): %w", err)
	case strings.Contains(msg, "unable to open database file"):
		return fmt.Errorf("cannot open database file (check permissions): %w", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("connection timed out: %w", err)
	default:
		return err
	}
}
