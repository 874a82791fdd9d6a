package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestStoreErrorClassifier_IsTransient(t *testing.T) {
	c := NewStoreErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked wrapped", fmt.Errorf("ping: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), true},
		{"sqlite cantopen", sqlite3.Error{Code: sqlite3.ErrCantOpen}, false},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"pg cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"pg auth failed", &pgconn.PgError{Code: "28P01"}, false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"temporary dns", &net.DNSError{IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{IsNotFound: true}, false},
		{"message pattern", errors.New("database is locked"), true},
		{"plain error", errors.New("syntax error"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
