// Package mysql provides the MySQL dialect renderer for dbquery.
//
// MySQL quotes identifiers with backticks, speaks ON DUPLICATE KEY UPDATE
// as its native upsert grammar, and accepts REPLACE INTO, INSERT IGNORE,
// multi-table UPDATE/DELETE, and ORDER BY / LIMIT on UPDATE and DELETE.
// Window functions and common table expressions are gated on version 8.0.
package mysql

import (
	"strings"

	"github.com/jardisPsr/dbquery/internal/ir"
	"github.com/jardisPsr/dbquery/internal/render"
)

// DefaultVersion is the server version assumed when none is configured.
const DefaultVersion = "8.0"

// Option configures a Renderer.
type Option func(*Renderer)

// WithVersion targets a specific MySQL server version, e.g. "5.7" or "8.0".
// Version-gated syntax such as window functions and CTEs is rejected with a
// descriptive error when the target version predates it.
func WithVersion(version string) Option {
	return func(r *Renderer) { r.version = version }
}

// Unprepared renders values as inline escaped literals instead of
// placeholders. Bindings() on the result is empty.
func Unprepared() Option {
	return func(r *Renderer) { r.prepared = false }
}

// Renderer renders statements as MySQL SQL.
type Renderer struct {
	dialect  *render.Dialect
	version  string
	prepared bool
}

// New creates a MySQL renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{version: DefaultVersion, prepared: true}
	for _, opt := range opts {
		opt(r)
	}
	r.dialect = newDialect(r.version)
	return r
}

// Render converts a statement to a prepared query with MySQL SQL.
func (r *Renderer) Render(stmt ir.Statement) (*render.PreparedQuery, error) {
	return render.Render(stmt, r.dialect, r.prepared)
}

// Name returns the dialect identifier.
func (r *Renderer) Name() string { return "mysql" }

func newDialect(version string) *render.Dialect {
	return &render.Dialect{
		Name:                "mysql",
		Version:             version,
		Quote:               "`",
		UpdateIgnoreKeyword: "IGNORE",
		Placeholder:         render.PlaceholderQuestion,
		Ignore:              render.IgnoreKeyword,
		Replace:             render.ReplaceInto,
		Upsert:              render.UpsertDuplicateKey,
		Features:            featuresFor(version),
		JSONExtract:         jsonExtract,
		JSONContainsExpr:    jsonContains,
	}
}

// featuresFor gates version-dependent syntax. Window functions and CTEs
// arrived in 8.0; GROUPS frame mode and FULL JOIN do not exist in any
// MySQL version.
func featuresFor(version string) render.Features {
	v8 := render.VersionAtLeast(version, "8.0")
	return render.Features{
		FullJoin:         false,
		WindowFunctions:  v8,
		GroupsFrame:      false,
		RecursiveCTE:     v8,
		UpdateOrderLimit: true,
		DeleteOrderLimit: true,
		UpdateJoin:       true,
		DeleteJoin:       true,
		UpdateIgnore:     true,
		JSONContains:     true,
	}
}

// jsonExtract renders a text-valued path extraction. JSON_UNQUOTE keeps
// string comparisons free of embedded quote marks.
func jsonExtract(field, path string) string {
	return "JSON_UNQUOTE(JSON_EXTRACT(" + field + ", '" + path + "'))"
}

func jsonContains(field, path, placeholder string) string {
	var b strings.Builder
	b.WriteString("JSON_CONTAINS(" + field + ", " + placeholder)
	if path != "" {
		b.WriteString(", '" + path + "'")
	}
	b.WriteString(")")
	return b.String()
}
