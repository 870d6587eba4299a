// Package sqlite provides the SQLite dialect renderer for dbquery.
//
// SQLite quotes identifiers with double quotes and spells its conflict
// policies with OR: INSERT OR IGNORE, INSERT OR REPLACE, UPDATE OR IGNORE.
// Upserts use ON CONFLICT (...) DO UPDATE / DO NOTHING. Window functions
// are gated on 3.25, GROUPS frames on 3.28, and FULL JOIN on 3.39. JSON
// containment predicates have no SQLite equivalent and are rejected.
package sqlite

import (
	"github.com/jardisPsr/dbquery/internal/ir"
	"github.com/jardisPsr/dbquery/internal/render"
)

// DefaultVersion is the library version assumed when none is configured.
const DefaultVersion = "3.39"

// Option configures a Renderer.
type Option func(*Renderer)

// WithVersion targets a specific SQLite library version, e.g. "3.24".
// Version-gated syntax such as window functions and FULL JOIN is rejected
// with a descriptive error when the target version predates it.
func WithVersion(version string) Option {
	return func(r *Renderer) { r.version = version }
}

// Unprepared renders values as inline escaped literals instead of
// placeholders. Bindings() on the result is empty.
func Unprepared() Option {
	return func(r *Renderer) { r.prepared = false }
}

// Renderer renders statements as SQLite SQL.
type Renderer struct {
	dialect  *render.Dialect
	version  string
	prepared bool
}

// New creates a SQLite renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{version: DefaultVersion, prepared: true}
	for _, opt := range opts {
		opt(r)
	}
	r.dialect = newDialect(r.version)
	return r
}

// Render converts a statement to a prepared query with SQLite SQL.
func (r *Renderer) Render(stmt ir.Statement) (*render.PreparedQuery, error) {
	return render.Render(stmt, r.dialect, r.prepared)
}

// Name returns the dialect identifier.
func (r *Renderer) Name() string { return "sqlite" }

func newDialect(version string) *render.Dialect {
	return &render.Dialect{
		Name:                "sqlite",
		Version:             version,
		Quote:               `"`,
		UpdateIgnoreKeyword: "OR IGNORE",
		Placeholder:         render.PlaceholderQuestion,
		Ignore:              render.IgnoreOr,
		Replace:             render.ReplaceOr,
		Upsert:              render.UpsertConflictTarget,
		Features:            featuresFor(version),
		JSONExtract:         jsonExtract,
	}
}

// featuresFor gates version-dependent syntax. Window functions arrived in
// 3.25, GROUPS frames in 3.28, RIGHT and FULL JOIN in 3.39, recursive CTEs
// in 3.8.3.
func featuresFor(version string) render.Features {
	return render.Features{
		FullJoin:         render.VersionAtLeast(version, "3.39"),
		WindowFunctions:  render.VersionAtLeast(version, "3.25"),
		GroupsFrame:      render.VersionAtLeast(version, "3.28"),
		RecursiveCTE:     render.VersionAtLeast(version, "3.8.3"),
		UpdateOrderLimit: false,
		DeleteOrderLimit: false,
		UpdateJoin:       false,
		DeleteJoin:       false,
		UpdateIgnore:     true,
		JSONContains:     false,
	}
}

func jsonExtract(field, path string) string {
	return "json_extract(" + field + ", '" + path + "')"
}
