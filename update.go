package dbquery

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// UpdateBuilder accumulates an UPDATE statement. Assignments keep insertion
// order; later Set calls for the same field overwrite earlier ones. Joins,
// IGNORE, and ORDER BY / LIMIT are accepted here and validated against the
// target dialect at render time.
type UpdateBuilder struct {
	stmt ir.UpdateStmt
	err  error
	last *[]ir.Predicate
}

// Update starts an UPDATE on a table, with an optional alias.
func Update(table string, alias ...string) *UpdateBuilder {
	b := &UpdateBuilder{}
	b.stmt.Table = table
	if len(alias) > 0 {
		b.stmt.Alias = alias[0]
	}
	return b
}

func (b *UpdateBuilder) fail(err error) *UpdateBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the pending construction error, if any.
func (b *UpdateBuilder) Err() error { return b.err }

// Set adds one field = value assignment. A later write to the same field
// overwrites the earlier value in place.
func (b *UpdateBuilder) Set(field string, v any) *UpdateBuilder {
	b.stmt.Sets = ir.SetAssignment(b.stmt.Sets, field, coerce(v))
	return b
}

// SetMultiple merges a mapping of assignments. Keys are applied in sorted
// order so the rendered SET order is deterministic.
func (b *UpdateBuilder) SetMultiple(data map[string]any) *UpdateBuilder {
	for _, field := range sortedKeys(data) {
		b.Set(field, data[field])
	}
	return b
}

// Ignore renders the statement as UPDATE IGNORE (MySQL) or UPDATE OR
// IGNORE (SQLite). PostgreSQL rejects it at render time.
func (b *UpdateBuilder) Ignore() *UpdateBuilder {
	b.stmt.Ignore = true
	return b
}

// Join adds an INNER JOIN. Dialects without multi-table UPDATE reject it
// at render time.
func (b *UpdateBuilder) Join(table string, alias ...string) *UpdateBuilder {
	return b.join(ir.InnerJoin, table, alias)
}

// LeftJoin adds a LEFT JOIN.
func (b *UpdateBuilder) LeftJoin(table string, alias ...string) *UpdateBuilder {
	return b.join(ir.LeftJoin, table, alias)
}

func (b *UpdateBuilder) join(kind ir.JoinKind, table string, alias []string) *UpdateBuilder {
	j := ir.Join{Kind: kind, Table: table}
	if len(alias) > 0 {
		j.Alias = alias[0]
	}
	b.stmt.Joins = append(b.stmt.Joins, j)
	return b
}

// On opens the join condition of the most recent JOIN.
func (b *UpdateBuilder) On(field string, openBracket ...string) *Cond[*UpdateBuilder] {
	return newCond(b, &b.err, b.lastJoinOn(), field, ir.AND, openBracket)
}

func (b *UpdateBuilder) lastJoinOn() *[]ir.Predicate {
	if len(b.stmt.Joins) == 0 {
		b.fail(errors.New("ON requires a preceding JOIN"))
		return new([]ir.Predicate)
	}
	on := &b.stmt.Joins[len(b.stmt.Joins)-1].On
	b.last = on
	return on
}

// Where opens a WHERE condition on a field.
func (b *UpdateBuilder) Where(field string, openBracket ...string) *Cond[*UpdateBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.AND, openBracket)
}

// And opens an AND-connected WHERE condition.
func (b *UpdateBuilder) And(field string, openBracket ...string) *Cond[*UpdateBuilder] {
	return b.Where(field, openBracket...)
}

// Or opens an OR-connected WHERE condition.
func (b *UpdateBuilder) Or(field string, openBracket ...string) *Cond[*UpdateBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.OR, openBracket)
}

// WhereJSON opens a WHERE condition on a JSON path within a column.
func (b *UpdateBuilder) WhereJSON(field, path string, openBracket ...string) *JSONCond[*UpdateBuilder] {
	b.last = &b.stmt.Where
	return newJSONCond(b, &b.err, &b.stmt.Where, field, path, ir.AND, openBracket)
}

// WhereExists adds an EXISTS (subquery) entry to the WHERE clause.
func (b *UpdateBuilder) WhereExists(sub *SelectBuilder) *UpdateBuilder {
	return b.exists(ir.AND, false, sub)
}

// WhereNotExists adds a NOT EXISTS (subquery) entry to the WHERE clause.
func (b *UpdateBuilder) WhereNotExists(sub *SelectBuilder) *UpdateBuilder {
	return b.exists(ir.AND, true, sub)
}

func (b *UpdateBuilder) exists(conn ir.Connector, negated bool, sub *SelectBuilder) *UpdateBuilder {
	if sub.err != nil {
		return b.fail(sub.err)
	}
	if b.err == nil {
		b.stmt.Where = append(b.stmt.Where, existsPredicate(b.stmt.Where, conn, negated, sub))
	}
	b.last = &b.stmt.Where
	return b
}

// CloseBracket appends a close-bracket marker (")" by default) after the
// most recently completed condition.
func (b *UpdateBuilder) CloseBracket(marker ...string) *UpdateBuilder {
	if b.last != nil {
		closeLast(*b.last, marker)
	}
	return b
}

// OrderBy appends an ORDER BY term. Dialects without ORDER BY on UPDATE
// reject it at render time.
func (b *UpdateBuilder) OrderBy(field, dir string) *UpdateBuilder {
	b.stmt.OrderBy = append(b.stmt.OrderBy, ir.OrderTerm{Field: field, Dir: direction(dir)})
	return b
}

// Limit sets the LIMIT row count. Dialects without LIMIT on UPDATE reject
// it at render time.
func (b *UpdateBuilder) Limit(n int) *UpdateBuilder {
	b.stmt.Limit = &n
	return b
}

// ToSQL renders the statement for a dialect ("mysql", "pgsql", "sqlite").
func (b *UpdateBuilder) ToSQL(dialect string, opts ...Option) (*PreparedQuery, error) {
	return toSQL(&b.stmt, b.err, dialect, opts)
}

// Render renders the statement with an already-configured dialect renderer.
func (b *UpdateBuilder) Render(r Renderer) (*PreparedQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	return r.Render(&b.stmt)
}
