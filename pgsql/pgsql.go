// Package pgsql provides the PostgreSQL dialect renderer for dbquery.
//
// PostgreSQL quotes identifiers with double quotes, speaks
// ON CONFLICT (...) DO UPDATE / DO NOTHING as its native upsert grammar,
// and supports FULL JOIN and GROUPS window frames. REPLACE INTO,
// ON DUPLICATE KEY UPDATE, JOINs inside UPDATE/DELETE, and ORDER BY /
// LIMIT on UPDATE and DELETE are rejected with descriptive errors.
package pgsql

import (
	"strings"

	"github.com/jardisPsr/dbquery/internal/ir"
	"github.com/jardisPsr/dbquery/internal/render"
)

// DefaultVersion is the server version assumed when none is configured.
const DefaultVersion = "13"

// Option configures a Renderer.
type Option func(*Renderer)

// WithVersion targets a specific PostgreSQL server version, e.g. "11".
// Version-gated syntax such as GROUPS window frames is rejected with a
// descriptive error when the target version predates it.
func WithVersion(version string) Option {
	return func(r *Renderer) { r.version = version }
}

// Unprepared renders values as inline escaped literals instead of
// placeholders. Bindings() on the result is empty.
func Unprepared() Option {
	return func(r *Renderer) { r.prepared = false }
}

// NumberedPlaceholders emits native $1, $2, ... markers instead of the
// default ?, for callers that skip driver-side rebinding.
func NumberedPlaceholders() Option {
	return func(r *Renderer) { r.numbered = true }
}

// Renderer renders statements as PostgreSQL SQL.
type Renderer struct {
	dialect  *render.Dialect
	version  string
	prepared bool
	numbered bool
}

// New creates a PostgreSQL renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{version: DefaultVersion, prepared: true}
	for _, opt := range opts {
		opt(r)
	}
	r.dialect = newDialect(r.version, r.numbered)
	return r
}

// Render converts a statement to a prepared query with PostgreSQL SQL.
func (r *Renderer) Render(stmt ir.Statement) (*render.PreparedQuery, error) {
	return render.Render(stmt, r.dialect, r.prepared)
}

// Name returns the dialect identifier.
func (r *Renderer) Name() string { return "pgsql" }

func newDialect(version string, numbered bool) *render.Dialect {
	placeholder := render.PlaceholderQuestion
	if numbered {
		placeholder = render.PlaceholderDollar
	}
	return &render.Dialect{
		Name:             "pgsql",
		Version:          version,
		Quote:            `"`,
		Placeholder:      placeholder,
		Ignore:           render.IgnoreConflictNothing,
		Replace:          render.ReplaceUnsupported,
		Upsert:           render.UpsertConflictTarget,
		Features:         featuresFor(version),
		JSONExtract:      jsonExtract,
		JSONContainsExpr: jsonContains,
	}
}

// featuresFor gates version-dependent syntax. Window functions and
// recursive CTEs arrived in 8.4, GROUPS frame mode in 11.
func featuresFor(version string) render.Features {
	return render.Features{
		FullJoin:         true,
		WindowFunctions:  render.VersionAtLeast(version, "8.4"),
		GroupsFrame:      render.VersionAtLeast(version, "11"),
		RecursiveCTE:     render.VersionAtLeast(version, "8.4"),
		UpdateOrderLimit: false,
		DeleteOrderLimit: false,
		UpdateJoin:       false,
		DeleteJoin:       false,
		UpdateIgnore:     false,
		JSONContains:     true,
	}
}

// jsonExtract renders a text-valued path extraction using the #>> operator.
// The parentheses keep the expression safe inside comparisons.
func jsonExtract(field, path string) string {
	return "(" + field + " #>> " + pathArray(path) + ")"
}

// jsonContains renders a jsonb containment test, descending to the path
// first when one is given. The candidate binding is cast to jsonb.
func jsonContains(field, path, placeholder string) string {
	target := field
	if path != "" && path != "$" {
		target = "(" + field + " #> " + pathArray(path) + ")"
	}
	return target + " @> " + placeholder + "::jsonb"
}

// pathArray converts a $.a.b[0] style path into the '{a,b,0}' text-array
// form the #> and #>> operators take.
func pathArray(path string) string {
	trimmed := strings.TrimPrefix(path, "$")
	trimmed = strings.TrimPrefix(trimmed, ".")
	trimmed = strings.ReplaceAll(trimmed, "[", ".")
	trimmed = strings.ReplaceAll(trimmed, "]", "")
	segs := strings.Split(trimmed, ".")
	return "'{" + strings.Join(segs, ",") + "}'"
}
