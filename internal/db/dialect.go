// Package db opens the destination store and keeps its bookkeeping schema current.
//
// A database target is either a file path (SQLite, the default) or a
// postgres:// / postgresql:// URL. Both are reached through database/sql.
package db

import (
	"net/url"
	"strings"
)

// Dialect identifies the SQL flavour of a store.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// DriverName returns the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

// DetectDialect chooses a dialect from a database target.
func DetectDialect(target string) Dialect {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Redact hides the password of a URL target for logging.
func Redact(target string) string {
	if DetectDialect(target) != Postgres {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "postgres://<unparseable>"
	}
	return u.Redacted()
}
