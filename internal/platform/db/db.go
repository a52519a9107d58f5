package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Open connects to PostgreSQL with pool defaults tuned for a
// request-per-worker service.
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(15 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	return conn, nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, which stores translate into sentinel.ErrConflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
