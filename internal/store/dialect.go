package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/egresos/internal/db"
	"github.com/vvka-141/egresos/internal/table"
	"github.com/vvka-141/egresos/pkg/egresos"
)

// Bind parameter ceilings per statement.
const (
	sqliteMaxParams   = 32766
	postgresMaxParams = 65535
)

const pgUndefinedTable = "42P01"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// queryer is satisfied by *sql.Conn and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ValidateTableName rejects names that cannot be used as a bare identifier.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: table name %q", egresos.ErrInvalidIdentifier, name)
	}
	return nil
}

// quoteIdent quotes a column or table name for both dialects.
func quoteIdent(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: column name %q", egresos.ErrInvalidIdentifier, name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}

func placeholder(d db.Dialect, n int) string {
	if d == db.Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func maxParams(d db.Dialect) int {
	if d == db.Postgres {
		return postgresMaxParams
	}
	return sqliteMaxParams
}

func sqlType(d db.Dialect, k table.Kind) string {
	switch {
	case k == table.KindInteger && d == db.Postgres:
		return "BIGINT"
	case k == table.KindInteger:
		return "INTEGER"
	case k == table.KindReal && d == db.Postgres:
		return "DOUBLE PRECISION"
	case k == table.KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// kindFromDecl maps a declared column type back to a table.Kind.
func kindFromDecl(decl string) table.Kind {
	decl = strings.ToUpper(decl)
	switch {
	case strings.Contains(decl, "INT"):
		return table.KindInteger
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"),
		strings.Contains(decl, "DOUB"), strings.Contains(decl, "NUMERIC"):
		return table.KindReal
	default:
		return table.KindText
	}
}

// isMissingTable recognizes "table does not exist" from either backend.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

// columnKey normalizes a column name the way the backend compares
// identifiers. SQLite ignores case; quoted Postgres identifiers do not.
func columnKey(d db.Dialect, name string) string {
	if d == db.Postgres {
		return name
	}
	return strings.ToLower(name)
}

// existingColumns returns the declared kind of every column of name keyed by
// columnKey, or an empty map when the table does not exist.
func existingColumns(ctx context.Context, q queryer, d db.Dialect, name string) (map[string]table.Kind, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if d == db.Postgres {
		rows, err = q.QueryContext(ctx,
			`SELECT column_name, data_type FROM information_schema.columns
			 WHERE table_schema = current_schema() AND table_name = $1`, name)
	} else {
		rows, err = q.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?)`, name)
	}
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", name, err)
	}
	defer rows.Close()

	cols := make(map[string]table.Kind)
	for rows.Next() {
		var colName, decl string
		if err := rows.Scan(&colName, &decl); err != nil {
			return nil, err
		}
		cols[columnKey(d, colName)] = kindFromDecl(decl)
	}
	return cols, rows.Err()
}
