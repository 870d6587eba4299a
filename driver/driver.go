// Package driver executes built statements against database/sql
// connections. It renders through the statement's ToSQL for the connection's
// dialect and forwards SQL text plus bindings to the driver, so callers
// never touch raw SQL. The MySQL, PostgreSQL, and SQLite drivers are
// registered by import.
package driver

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery"

	// Registered database/sql drivers for the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Statement is any builder that renders itself for a dialect. The four
// dbquery statement builders implement it.
type Statement interface {
	ToSQL(dialect string, opts ...dbquery.Option) (*dbquery.PreparedQuery, error)
}

// driverName maps a dialect identifier onto the registered driver name.
func driverName(dialect string) (string, error) {
	switch strings.ToLower(dialect) {
	case "mysql", "mariadb":
		return "mysql", nil
	case "pgsql", "postgres", "postgresql":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", errors.Newf("unknown dialect %q", dialect)
	}
}

// DB wraps a sql.DB with the dialect statements are rendered for.
type DB struct {
	db      *sql.DB
	dialect string
}

// Open opens a connection for a dialect ("mysql", "pgsql", "sqlite") and
// data source name.
func Open(dialect, dsn string) (*DB, error) {
	name, err := driverName(dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return &DB{db: db, dialect: dialect}, nil
}

// OpenDB wraps an existing sql.DB.
func OpenDB(dialect string, db *sql.DB) *DB {
	return &DB{db: db, dialect: dialect}
}

// DB returns the underlying sql.DB.
func (d *DB) DB() *sql.DB { return d.db }

// Dialect returns the dialect identifier statements are rendered for.
func (d *DB) Dialect() string { return d.dialect }

// Close closes the underlying connection.
func (d *DB) Close() error { return d.db.Close() }

// Exec renders and executes a statement, returning the driver result.
func (d *DB) Exec(ctx context.Context, stmt Statement, opts ...dbquery.Option) (sql.Result, error) {
	return execStmt(ctx, d.db, d.dialect, stmt, opts)
}

// Query renders and executes a statement, returning the row set.
func (d *DB) Query(ctx context.Context, stmt Statement, opts ...dbquery.Option) (*sql.Rows, error) {
	return queryStmt(ctx, d.db, d.dialect, stmt, opts)
}

// QueryRow renders and executes a statement expected to return one row.
func (d *DB) QueryRow(ctx context.Context, stmt Statement, opts ...dbquery.Option) (*sql.Row, error) {
	q, err := stmt.ToSQL(d.dialect, renderOpts(d.dialect, opts)...)
	if err != nil {
		return nil, err
	}
	return d.db.QueryRowContext(ctx, q.SQL(), q.Bindings()...), nil
}

// BeginTx starts a transaction carrying the same dialect.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	return &Tx{tx: tx, dialect: d.dialect}, nil
}

// Tx executes statements inside one transaction.
type Tx struct {
	tx      *sql.Tx
	dialect string
}

// Exec renders and executes a statement within the transaction.
func (t *Tx) Exec(ctx context.Context, stmt Statement, opts ...dbquery.Option) (sql.Result, error) {
	return execStmt(ctx, t.tx, t.dialect, stmt, opts)
}

// Query renders and executes a statement within the transaction.
func (t *Tx) Query(ctx context.Context, stmt Statement, opts ...dbquery.Option) (*sql.Rows, error) {
	return queryStmt(ctx, t.tx, t.dialect, stmt, opts)
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// execQuerier is the subset of sql.DB / sql.Tx the helpers need.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// renderOpts prepends the options a dialect's driver requires. lib/pq
// accepts only $N parameter markers, so the PostgreSQL path always renders
// numbered placeholders; caller options still apply on top.
func renderOpts(dialect string, opts []dbquery.Option) []dbquery.Option {
	switch strings.ToLower(dialect) {
	case "pgsql", "postgres", "postgresql":
		return append([]dbquery.Option{dbquery.WithNumberedPlaceholders()}, opts...)
	default:
		return opts
	}
}

func execStmt(ctx context.Context, ex execQuerier, dialect string, stmt Statement, opts []dbquery.Option) (sql.Result, error) {
	q, err := stmt.ToSQL(dialect, renderOpts(dialect, opts)...)
	if err != nil {
		return nil, err
	}
	res, err := ex.ExecContext(ctx, q.SQL(), q.Bindings()...)
	if err != nil {
		return nil, errors.Wrapf(err, "exec %s", q.Type())
	}
	return res, nil
}

func queryStmt(ctx context.Context, ex execQuerier, dialect string, stmt Statement, opts []dbquery.Option) (*sql.Rows, error) {
	q, err := stmt.ToSQL(dialect, renderOpts(dialect, opts)...)
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, q.SQL(), q.Bindings()...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", q.Type())
	}
	return rows, nil
}
