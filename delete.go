package dbquery

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// DeleteBuilder accumulates a DELETE statement: table, joins, conditions,
// and the dialect-conditional ORDER BY / LIMIT tail.
type DeleteBuilder struct {
	stmt ir.DeleteStmt
	err  error
	last *[]ir.Predicate
}

// Delete starts a DELETE. Set the target with From.
func Delete() *DeleteBuilder {
	return &DeleteBuilder{}
}

func (b *DeleteBuilder) fail(err error) *DeleteBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the pending construction error, if any.
func (b *DeleteBuilder) Err() error { return b.err }

// From sets the target table.
func (b *DeleteBuilder) From(table string) *DeleteBuilder {
	b.stmt.Table = table
	return b
}

// Join adds an INNER JOIN. Dialects without multi-table DELETE reject it
// at render time.
func (b *DeleteBuilder) Join(table string, alias ...string) *DeleteBuilder {
	return b.join(ir.InnerJoin, table, alias)
}

// LeftJoin adds a LEFT JOIN.
func (b *DeleteBuilder) LeftJoin(table string, alias ...string) *DeleteBuilder {
	return b.join(ir.LeftJoin, table, alias)
}

func (b *DeleteBuilder) join(kind ir.JoinKind, table string, alias []string) *DeleteBuilder {
	j := ir.Join{Kind: kind, Table: table}
	if len(alias) > 0 {
		j.Alias = alias[0]
	}
	b.stmt.Joins = append(b.stmt.Joins, j)
	return b
}

// On opens the join condition of the most recent JOIN.
func (b *DeleteBuilder) On(field string, openBracket ...string) *Cond[*DeleteBuilder] {
	return newCond(b, &b.err, b.lastJoinOn(), field, ir.AND, openBracket)
}

func (b *DeleteBuilder) lastJoinOn() *[]ir.Predicate {
	if len(b.stmt.Joins) == 0 {
		b.fail(errors.New("ON requires a preceding JOIN"))
		return new([]ir.Predicate)
	}
	on := &b.stmt.Joins[len(b.stmt.Joins)-1].On
	b.last = on
	return on
}

// Where opens a WHERE condition on a field.
func (b *DeleteBuilder) Where(field string, openBracket ...string) *Cond[*DeleteBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.AND, openBracket)
}

// And opens an AND-connected WHERE condition.
func (b *DeleteBuilder) And(field string, openBracket ...string) *Cond[*DeleteBuilder] {
	return b.Where(field, openBracket...)
}

// Or opens an OR-connected WHERE condition.
func (b *DeleteBuilder) Or(field string, openBracket ...string) *Cond[*DeleteBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.OR, openBracket)
}

// WhereJSON opens a WHERE condition on a JSON path within a column.
func (b *DeleteBuilder) WhereJSON(field, path string, openBracket ...string) *JSONCond[*DeleteBuilder] {
	b.last = &b.stmt.Where
	return newJSONCond(b, &b.err, &b.stmt.Where, field, path, ir.AND, openBracket)
}

// WhereExists adds an EXISTS (subquery) entry to the WHERE clause.
func (b *DeleteBuilder) WhereExists(sub *SelectBuilder) *DeleteBuilder {
	return b.exists(ir.AND, false, sub)
}

// WhereNotExists adds a NOT EXISTS (subquery) entry to the WHERE clause.
func (b *DeleteBuilder) WhereNotExists(sub *SelectBuilder) *DeleteBuilder {
	return b.exists(ir.AND, true, sub)
}

func (b *DeleteBuilder) exists(conn ir.Connector, negated bool, sub *SelectBuilder) *DeleteBuilder {
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
func (b *DeleteBuilder) CloseBracket(marker ...string) *DeleteBuilder {
	if b.last != nil {
		closeLast(*b.last, marker)
	}
	return b
}

// OrderBy appends an ORDER BY term. Dialects without ORDER BY on DELETE
// reject it at render time.
func (b *DeleteBuilder) OrderBy(field, dir string) *DeleteBuilder {
	b.stmt.OrderBy = append(b.stmt.OrderBy, ir.OrderTerm{Field: field, Dir: direction(dir)})
	return b
}

// Limit sets the LIMIT row count. Dialects without LIMIT on DELETE reject
// it at render time.
func (b *DeleteBuilder) Limit(n int) *DeleteBuilder {
	b.stmt.Limit = &n
	return b
}

// ToSQL renders the statement for a dialect ("mysql", "pgsql", "sqlite").
func (b *DeleteBuilder) ToSQL(dialect string, opts ...Option) (*PreparedQuery, error) {
	return toSQL(&b.stmt, b.err, dialect, opts)
}

// Render renders the statement with an already-configured dialect renderer.
func (b *DeleteBuilder) Render(r Renderer) (*PreparedQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	return r.Render(&b.stmt)
}
