package render

import "github.com/jardisPsr/dbquery/internal/ir"

// PreparedQuery is the immutable output of a render: SQL text with
// placeholders, the bindings in textual placeholder order, and the
// statement-type tag. Only renderers construct it.
type PreparedQuery struct {
	sql      string
	bindings []any
	op       ir.Operation
}

// NewPreparedQuery wraps a finished render. Called by the walker only.
func NewPreparedQuery(sql string, bindings []any, op ir.Operation) *PreparedQuery {
	return &PreparedQuery{sql: sql, bindings: bindings, op: op}
}

// SQL returns the rendered statement text.
func (q *PreparedQuery) SQL() string { return q.sql }

// Bindings returns the parameter values in the exact left-to-right order of
// their placeholders in SQL(). The returned slice is a copy.
func (q *PreparedQuery) Bindings() []any {
	out := make([]any, len(q.bindings))
	copy(out, q.bindings)
	return out
}

// Type returns the statement kind: SELECT, INSERT, UPDATE, or DELETE.
func (q *PreparedQuery) Type() string { return string(q.op) }
