package db

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/vvka-141/egresos/pkg/egresos"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations applies pending migrations for the bookkeeping tables.
func RunMigrations(conn *sql.DB, dialect Dialect, logger egresos.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{logger})

	if err := goose.SetDialect(dialect.String()); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to the verbose log instead of stdout.
type gooseLogger struct {
	logger egresos.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Verbose("%s", strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	g.logger.Error("%s", msg)
	panic("goose: " + msg)
}
