package dbquery

import (
	"strings"

	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
	"github.com/jardisPsr/dbquery/internal/render"
	"github.com/jardisPsr/dbquery/mysql"
	"github.com/jardisPsr/dbquery/pgsql"
	"github.com/jardisPsr/dbquery/sqlite"
)

// PreparedQuery is the immutable render output: SQL text, bindings in
// placeholder order, and the statement-type tag.
type PreparedQuery = render.PreparedQuery

// Renderer maps a completed statement to a prepared query for one dialect.
// The dialect packages mysql, pgsql, and sqlite provide implementations;
// ToSQL constructs them by name.
type Renderer interface {
	Render(stmt ir.Statement) (*render.PreparedQuery, error)
}

// Option adjusts how ToSQL configures the dialect renderer.
type Option func(*renderConfig)

type renderConfig struct {
	version  string
	numbered bool
	prepared bool
}

// WithVersion targets a specific dialect version, e.g. "5.7" for mysql or
// "11" for pgsql. Each dialect documents its default.
func WithVersion(version string) Option {
	return func(c *renderConfig) { c.version = version }
}

// WithoutPrepared renders values as inline escaped literals instead of
// placeholders; Bindings() on the result is empty.
func WithoutPrepared() Option {
	return func(c *renderConfig) { c.prepared = false }
}

// WithNumberedPlaceholders emits $1, $2, ... markers on pgsql instead of
// the default ?. Other dialects ignore it.
func WithNumberedPlaceholders() Option {
	return func(c *renderConfig) { c.numbered = true }
}

func toSQL(stmt ir.Statement, buildErr error, dialect string, opts []Option) (*PreparedQuery, error) {
	if buildErr != nil {
		return nil, buildErr
	}
	cfg := renderConfig{prepared: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	r, err := newRenderer(dialect, cfg)
	if err != nil {
		return nil, err
	}
	return r.Render(stmt)
}

func newRenderer(dialect string, cfg renderConfig) (Renderer, error) {
	switch strings.ToLower(dialect) {
	case "mysql", "mariadb":
		var opts []mysql.Option
		if cfg.version != "" {
			opts = append(opts, mysql.WithVersion(cfg.version))
		}
		if !cfg.prepared {
			opts = append(opts, mysql.Unprepared())
		}
		return mysql.New(opts...), nil
	case "pgsql", "postgres", "postgresql":
		var opts []pgsql.Option
		if cfg.version != "" {
			opts = append(opts, pgsql.WithVersion(cfg.version))
		}
		if !cfg.prepared {
			opts = append(opts, pgsql.Unprepared())
		}
		if cfg.numbered {
			opts = append(opts, pgsql.NumberedPlaceholders())
		}
		return pgsql.New(opts...), nil
	case "sqlite", "sqlite3":
		var opts []sqlite.Option
		if cfg.version != "" {
			opts = append(opts, sqlite.WithVersion(cfg.version))
		}
		if !cfg.prepared {
			opts = append(opts, sqlite.Unprepared())
		}
		return sqlite.New(opts...), nil
	default:
		return nil, errors.Newf("unknown dialect %q", dialect)
	}
}

// direction normalizes a sort direction; anything but DESC sorts ascending.
func direction(dir string) ir.Direction {
	if strings.EqualFold(dir, "DESC") {
		return ir.DESC
	}
	return ir.ASC
}
