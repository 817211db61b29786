// Package sqlsink writes parsed records to a relational database through
// database/sql. SQLite (modernc.org/sqlite) and ClickHouse
// (clickhouse-go) are supported.
package sqlsink

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/cyra/proxylog/internal/record"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "modernc.org/sqlite"
)

// Sink inserts records of one format into one table.
type Sink struct {
	db      *sql.DB
	dialect Dialect
	table   string
	format  record.LogFormat
	insert  string
	rows    int64
}

// Open connects with the named driver and verifies the connection.
// An empty table selects DefaultTable(f).
func Open(ctx context.Context, driver, dsn, table string, f record.LogFormat) (*Sink, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlsink: open %s: %w", d.DriverName(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlsink: ping %s: %w", d.DriverName(), err)
	}
	s, err := New(db, d, table, f)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection.
func New(db *sql.DB, d Dialect, table string, f record.LogFormat) (*Sink, error) {
	if table == "" {
		table = DefaultTable(f)
	}
	stmt, err := InsertSQL(table, f)
	if err != nil {
		return nil, err
	}
	return &Sink{db: db, dialect: d, table: table, format: f, insert: stmt}, nil
}

// Table returns the target table name.
func (s *Sink) Table() string { return s.table }

// CreateTable issues the DDL for the sink's table if it does not exist.
func (s *Sink) CreateTable(ctx context.Context) error {
	ddl, err := CreateTableSQL(s.dialect, s.table, s.format)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlsink: create table %s: %w", s.table, err)
	}
	return nil
}

// Insert writes one record.
func (s *Sink) Insert(ctx context.Context, rec *record.Record) error {
	if _, err := s.db.ExecContext(ctx, s.insert, Values(s.dialect, s.format, rec)...); err != nil {
		return fmt.Errorf("sqlsink: insert into %s: %w", s.table, err)
	}
	s.rows++
	return nil
}

// InsertAll writes every record of seq in one transaction and returns the
// number of rows written. Nothing is counted when the transaction fails.
func (s *Sink) InsertAll(ctx context.Context, seq iter.Seq2[record.Key, *record.Record]) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlsink: begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insert)
	if err != nil {
		return 0, fmt.Errorf("sqlsink: prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range seq {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, Values(s.dialect, s.format, rec)...); err != nil {
			return 0, fmt.Errorf("sqlsink: insert into %s: %w", s.table, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlsink: commit: %w", err)
	}
	s.rows += int64(n)
	return n, nil
}

// RowsInserted returns the number of rows written so far.
func (s *Sink) RowsInserted() int64 { return s.rows }

// Close releases the connection.
func (s *Sink) Close() error {
	return s.db.Close()
}
