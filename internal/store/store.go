// Package store persists cleaned batches and answers the questions the
// pipeline asks of the destination table.
//
// Every operation checks out its own connection from the pool and returns
// it before exiting. A batch and its manifest row are committed together.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/egresos/internal/db"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Options configure a Store.
type Options struct {
	YearColumn      string // Column holding the discharge year
	InsertBatchSize int    // Rows per INSERT statement
}

// Store wraps the destination database.
type Store struct {
	conn    *sql.DB
	dialect db.Dialect
	opts    Options
	logger  egresos.Logger
}

// Open connects to target and applies bookkeeping migrations.
func Open(ctx context.Context, target string, opts Options, connOpts db.Options, logger egresos.Logger) (*Store, error) {
	if connOpts.Logger == nil {
		connOpts.Logger = logger
	}
	conn, dialect, err := db.Open(ctx, target, connOpts)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(conn, dialect, logger); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %v", egresos.ErrConnectionFailed, err)
	}
	logger.Verbose("Connected to %s store at %s", dialect, db.Redact(target))
	return New(conn, dialect, opts, logger), nil
}

// New wraps an open, migrated database.
// Panics if conn or logger is nil.
func New(conn *sql.DB, dialect db.Dialect, opts Options, logger egresos.Logger) *Store {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.YearColumn == "" {
		opts.YearColumn = egresos.DefaultYearColumn
	}
	if opts.InsertBatchSize <= 0 {
		opts.InsertBatchSize = egresos.DefaultInsertBatchSize
	}
	return &Store{conn: conn, dialect: dialect, opts: opts, logger: logger}
}

// Dialect returns the SQL flavour of the store.
func (s *Store) Dialect() db.Dialect {
	return s.dialect
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.conn
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// YearExists reports whether name already holds at least one row for year.
// A nil year, a missing table and query failures all report false.
func (s *Store) YearExists(ctx context.Context, name string, year *int) bool {
	if year == nil {
		s.logger.Warn("No year provided for existence check, assuming data is not present")
		return false
	}
	if err := ValidateTableName(name); err != nil {
		s.logger.Error("Existence check skipped: %v", err)
		return false
	}
	yearCol, err := quoteIdent(s.opts.YearColumn)
	if err != nil {
		s.logger.Error("Existence check skipped: %v", err)
		return false
	}

	query := fmt.Sprintf(`SELECT 1 FROM "%s" WHERE %s = %s LIMIT 1`, name, yearCol, placeholder(s.dialect, 1))

	var found bool
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		var one int
		err := conn.QueryRowContext(ctx, query, *year).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})

	switch {
	case err == nil:
		return found
	case isMissingTable(err):
		s.logger.Info("Table %s does not exist yet, year %d is not present", name, *year)
	default:
		s.logger.Error("Existence check for year %d failed: %v", *year, err)
	}
	return false
}

// Append writes every row of t to the named table, creating the table or
// adding missing columns first. When entry is non-nil its manifest row is
// replaced in the same transaction. An empty batch returns egresos.ErrEmptyBatch.
func (s *Store) Append(ctx context.Context, name string, t *table.Table, entry *egresos.ManifestEntry) error {
	if t.Empty() {
		s.logger.Warn("Batch for %s is empty, nothing to save", name)
		return egresos.ErrEmptyBatch
	}
	if err := ValidateTableName(name); err != nil {
		return err
	}

	quoted := make([]string, len(t.Columns))
	kinds := make([]table.Kind, len(t.Columns))
	for i, c := range t.Columns {
		q, err := quoteIdent(c.Name)
		if err != nil {
			return err
		}
		quoted[i] = q
		kinds[i] = t.InferKind(i)
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := s.ensureSchema(ctx, tx, name, t, quoted, kinds); err != nil {
			return err
		}
		if err := s.insertRows(ctx, tx, name, t, quoted, kinds); err != nil {
			return err
		}
		if entry != nil {
			if err := s.putManifest(ctx, tx, *entry); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// ensureSchema creates the table or adds the batch columns it lacks.
// kinds is adjusted to the declared type of columns that already exist.
func (s *Store) ensureSchema(ctx context.Context, tx *sql.Tx, name string, t *table.Table, quoted []string, kinds []table.Kind) error {
	existing, err := existingColumns(ctx, tx, s.dialect, name)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		defs := make([]string, len(quoted))
		for i := range quoted {
			defs[i] = quoted[i] + " " + sqlType(s.dialect, kinds[i])
		}
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (%s)`, name, strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
		s.logger.Info("Created table %s with %d columns", name, len(defs))
		return nil
	}

	for i, c := range t.Columns {
		declared, ok := existing[columnKey(s.dialect, c.Name)]
		if ok {
			kinds[i] = storedKind(declared, kinds[i])
			continue
		}
		ddl := fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN %s %s`, name, quoted[i], sqlType(s.dialect, kinds[i]))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("add column %s: %w", c.Name, err)
		}
		s.logger.Info("Added column %s to table %s", c.Name, name)
	}
	return nil
}

// storedKind picks the representation used when writing into an existing column.
func storedKind(declared, inferred table.Kind) table.Kind {
	switch {
	case declared == table.KindText:
		return table.KindText
	case declared == table.KindReal && inferred != table.KindText:
		return table.KindReal
	default:
		return inferred
	}
}

func (s *Store) insertRows(ctx context.Context, tx *sql.Tx, name string, t *table.Table, quoted []string, kinds []table.Kind) error {
	ncols := len(quoted)
	perStmt := s.opts.InsertBatchSize
	if limit := maxParams(s.dialect) / ncols; limit < perStmt {
		perStmt = limit
	}
	if perStmt < 1 {
		return fmt.Errorf("table has too many columns (%d) for one statement", ncols)
	}

	prefix := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES `, name, strings.Join(quoted, ", "))
	args := make([]any, 0, perStmt*ncols)

	for start := 0; start < len(t.Rows); start += perStmt {
		end := start + perStmt
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		args = args[:0]
		for _, row := range t.Rows[start:end] {
			for i, v := range row {
				args = append(args, table.Convert(v, kinds[i]))
			}
		}
		if _, err := tx.ExecContext(ctx, prefix+s.valueTuples(end-start, ncols), args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}

func (s *Store) valueTuples(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholder(s.dialect, n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// CountsByYear returns the row count per year in ascending year order.
// A missing table yields an error wrapping egresos.ErrTableMissing.
func (s *Store) CountsByYear(ctx context.Context, name string) ([]egresos.YearCount, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	yearCol, err := quoteIdent(s.opts.YearColumn)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM "%[2]s" GROUP BY %[1]s ORDER BY %[1]s`, yearCol, name)

	var counts []egresos.YearCount
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var yc egresos.YearCount
			if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
				return err
			}
			counts = append(counts, yc)
		}
		return rows.Err()
	})
	if err != nil {
		if isMissingTable(err) {
			return nil, fmt.Errorf("%w: %s", egresos.ErrTableMissing, name)
		}
		return nil, fmt.Errorf("count rows by year: %w", err)
	}
	return counts, nil
}

func (s *Store) putManifest(ctx context.Context, tx *sql.Tx, e egresos.ManifestEntry) error {
	del := fmt.Sprintf(`DELETE FROM %s WHERE file_name = %s`, egresos.ManifestTable, placeholder(s.dialect, 1))
	if _, err := tx.ExecContext(ctx, del, e.FileName); err != nil {
		return fmt.Errorf("clear manifest for %s: %w", e.FileName, err)
	}

	ph := make([]string, 7)
	for i := range ph {
		ph[i] = placeholder(s.dialect, i+1)
	}
	ins := fmt.Sprintf(`INSERT INTO %s (file_name, year, checksum, row_count, dropped_rows, run_id, loaded_at) VALUES (%s)`,
		egresos.ManifestTable, strings.Join(ph, ", "))
	loadedAt := e.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx, ins, e.FileName, e.Year, e.Checksum, e.RowCount, e.DroppedRows, e.RunID,
		loadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record manifest for %s: %w", e.FileName, err)
	}
	return nil
}

// Manifest lists committed file loads ordered by year and file name.
func (s *Store) Manifest(ctx context.Context) ([]egresos.ManifestEntry, error) {
	query := fmt.Sprintf(`SELECT file_name, year, checksum, row_count, dropped_rows, run_id, loaded_at
		FROM %s ORDER BY year, file_name`, egresos.ManifestTable)

	var entries []egresos.ManifestEntry
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				e        egresos.ManifestEntry
				loadedAt string
			)
			if err := rows.Scan(&e.FileName, &e.Year, &e.Checksum, &e.RowCount, &e.DroppedRows, &e.RunID, &loadedAt); err != nil {
				return err
			}
			if ts, err := time.Parse(time.RFC3339, loadedAt); err == nil {
				e.LoadedAt = ts
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}
