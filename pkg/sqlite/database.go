// Package sqlite implements the color catalog row store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"

	// sqlite3 dialect for goqu
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	// sqlite3 database driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/colorkeep/colorkeep/pkg/logger"
)

var dialect = goqu.Dialect("sqlite3")

// Database owns the sqlite connection. Construct one instance per process at
// startup and inject it into the stores that need it.
type Database struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the catalog database at path and brings
// the schema up to date.
func Open(path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_fk=true&_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

type txnKey struct{}

// WithTxn runs fn inside a read-write transaction, committing when fn
// returns nil and rolling back otherwise. The transaction is carried in the
// context passed to fn; store operations pick it up from there.
func (d *Database) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txnKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Errorf("sqlite: rollback failed: %v", rbErr)
		}
		return err
	}

	return tx.Commit()
}

// WithReadTxn runs fn inside a transaction used only for reads.
func (d *Database) WithReadTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.WithTxn(ctx, fn)
}

type queryer interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// handle returns the active transaction from ctx, or the bare connection when
// the caller did not open one.
func (d *Database) handle(ctx context.Context) queryer {
	if tx, ok := ctx.Value(txnKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.db
}
