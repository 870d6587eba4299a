package dbquery

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// SelectBuilder accumulates a SELECT statement. Obtain one with Select,
// chain clause calls, then call ToSQL or Render. The zero builder is not
// usable; a FROM source is required before rendering.
type SelectBuilder struct {
	stmt ir.SelectStmt
	err  error
	last *[]ir.Predicate
}

// Select starts a SELECT with the given projections. Each argument is a raw
// projection entry ("id", "COUNT(*) AS total", "u.name"); with no arguments
// the statement projects *.
func Select(columns ...string) *SelectBuilder {
	b := &SelectBuilder{}
	for _, col := range columns {
		b.stmt.Columns = append(b.stmt.Columns, ir.SelectColumn{Raw: col})
	}
	return b
}

// fail records the first construction error; later calls keep chaining but
// the error surfaces at ToSQL.
func (b *SelectBuilder) fail(err error) *SelectBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// adopt propagates a construction error out of an attached subquery.
func (b *SelectBuilder) adopt(sub *SelectBuilder) {
	if sub.err != nil {
		b.fail(sub.err)
	}
}

// Err returns the pending construction error, if any.
func (b *SelectBuilder) Err() error { return b.err }

// From sets the source table, with an optional alias.
func (b *SelectBuilder) From(table string, alias ...string) *SelectBuilder {
	b.stmt.From = ir.TableExpr{Name: table}
	if len(alias) > 0 {
		b.stmt.From.Alias = alias[0]
	}
	return b
}

// FromSelect sets a subquery as the source. The alias is mandatory.
func (b *SelectBuilder) FromSelect(sub *SelectBuilder, alias string) *SelectBuilder {
	if alias == "" {
		return b.fail(errors.New("subquery in FROM requires an alias"))
	}
	b.adopt(sub)
	b.stmt.From = ir.TableExpr{Query: &sub.stmt, Alias: alias}
	return b
}

// With registers a common table expression. Registration order is kept; a
// duplicate name overwrites the earlier query in place.
func (b *SelectBuilder) With(name string, sub *SelectBuilder) *SelectBuilder {
	return b.withCTE(name, sub, false)
}

// WithRecursive registers a recursive common table expression. If any
// registered CTE is recursive, the whole WITH clause is rendered RECURSIVE.
func (b *SelectBuilder) WithRecursive(name string, sub *SelectBuilder) *SelectBuilder {
	return b.withCTE(name, sub, true)
}

func (b *SelectBuilder) withCTE(name string, sub *SelectBuilder, recursive bool) *SelectBuilder {
	b.adopt(sub)
	for i := range b.stmt.CTEs {
		if b.stmt.CTEs[i].Name == name {
			b.stmt.CTEs[i].Query = &sub.stmt
			b.stmt.CTEs[i].Recursive = recursive
			return b
		}
	}
	b.stmt.CTEs = append(b.stmt.CTEs, ir.CTE{Name: name, Query: &sub.stmt, Recursive: recursive})
	return b
}

// Distinct marks the projection DISTINCT.
func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.stmt.Distinct = true
	return b
}

// SelectSubquery adds an aliased subquery to the projection list. The alias
// is mandatory.
func (b *SelectBuilder) SelectSubquery(sub *SelectBuilder, alias string) *SelectBuilder {
	if alias == "" {
		return b.fail(errors.New("subquery in SELECT list requires an alias"))
	}
	b.adopt(sub)
	b.stmt.Columns = append(b.stmt.Columns, ir.SelectColumn{Query: &sub.stmt, Alias: alias})
	return b
}

// SelectWindow starts a window-function projection, e.g.
//
//	SelectWindow("ROW_NUMBER", "rn").PartitionBy("dept").
//		WindowOrderBy("salary", "DESC").EndWindow()
//
// The optional arg is the function argument ("salary" in SUM(salary)).
func (b *SelectBuilder) SelectWindow(fn, alias string, arg ...string) *WindowBuilder {
	w := &WindowBuilder{host: b, alias: alias}
	w.col.Func = fn
	if len(arg) > 0 {
		w.col.Arg = arg[0]
	}
	return w
}

// Window starts a named trailing WINDOW declaration; projections reference
// it via Over(name).
func (b *SelectBuilder) Window(name string) *NamedWindowBuilder {
	return &NamedWindowBuilder{host: b, win: ir.NamedWindow{Name: name}}
}

// Join adds an INNER JOIN on a named table, with an optional alias. Chain
// On to attach the join condition.
func (b *SelectBuilder) Join(table string, alias ...string) *SelectBuilder {
	return b.join(ir.InnerJoin, table, alias)
}

// LeftJoin adds a LEFT JOIN on a named table.
func (b *SelectBuilder) LeftJoin(table string, alias ...string) *SelectBuilder {
	return b.join(ir.LeftJoin, table, alias)
}

// RightJoin adds a RIGHT JOIN on a named table.
func (b *SelectBuilder) RightJoin(table string, alias ...string) *SelectBuilder {
	return b.join(ir.RightJoin, table, alias)
}

// FullJoin adds a FULL JOIN on a named table. Dialects without FULL JOIN
// reject it at render time.
func (b *SelectBuilder) FullJoin(table string, alias ...string) *SelectBuilder {
	return b.join(ir.FullJoin, table, alias)
}

// CrossJoin adds a CROSS JOIN on a named table. Cross joins carry no ON
// condition.
func (b *SelectBuilder) CrossJoin(table string, alias ...string) *SelectBuilder {
	return b.join(ir.CrossJoin, table, alias)
}

func (b *SelectBuilder) join(kind ir.JoinKind, table string, alias []string) *SelectBuilder {
	j := ir.Join{Kind: kind, Table: table}
	if len(alias) > 0 {
		j.Alias = alias[0]
	}
	b.stmt.Joins = append(b.stmt.Joins, j)
	return b
}

// JoinSub adds an INNER JOIN on a subquery. The alias is mandatory.
func (b *SelectBuilder) JoinSub(sub *SelectBuilder, alias string) *SelectBuilder {
	return b.joinSub(ir.InnerJoin, sub, alias)
}

// LeftJoinSub adds a LEFT JOIN on a subquery. The alias is mandatory.
func (b *SelectBuilder) LeftJoinSub(sub *SelectBuilder, alias string) *SelectBuilder {
	return b.joinSub(ir.LeftJoin, sub, alias)
}

func (b *SelectBuilder) joinSub(kind ir.JoinKind, sub *SelectBuilder, alias string) *SelectBuilder {
	if alias == "" {
		return b.fail(errors.New("subquery in JOIN requires an alias"))
	}
	b.adopt(sub)
	b.stmt.Joins = append(b.stmt.Joins, ir.Join{Kind: kind, Query: &sub.stmt, Alias: alias})
	return b
}

// On opens the join condition of the most recent JOIN. Use Col for the
// right-hand side of column-to-column comparisons:
//
//	Join("orders", "o").On("o.user_id").Equals(Col("u.id"))
func (b *SelectBuilder) On(field string, openBracket ...string) *Cond[*SelectBuilder] {
	return newCond(b, &b.err, b.lastJoinOn(), field, ir.AND, openBracket)
}

// OrOn adds an OR-connected condition to the most recent JOIN.
func (b *SelectBuilder) OrOn(field string, openBracket ...string) *Cond[*SelectBuilder] {
	return newCond(b, &b.err, b.lastJoinOn(), field, ir.OR, openBracket)
}

func (b *SelectBuilder) lastJoinOn() *[]ir.Predicate {
	if len(b.stmt.Joins) == 0 {
		b.fail(errors.New("ON requires a preceding JOIN"))
		return new([]ir.Predicate)
	}
	on := &b.stmt.Joins[len(b.stmt.Joins)-1].On
	b.last = on
	return on
}

// Where opens a WHERE condition on a field. An optional open-bracket marker
// is emitted verbatim before the condition.
func (b *SelectBuilder) Where(field string, openBracket ...string) *Cond[*SelectBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.AND, openBracket)
}

// And opens an AND-connected WHERE condition.
func (b *SelectBuilder) And(field string, openBracket ...string) *Cond[*SelectBuilder] {
	return b.Where(field, openBracket...)
}

// Or opens an OR-connected WHERE condition.
func (b *SelectBuilder) Or(field string, openBracket ...string) *Cond[*SelectBuilder] {
	b.last = &b.stmt.Where
	return newCond(b, &b.err, &b.stmt.Where, field, ir.OR, openBracket)
}

// WhereJSON opens a WHERE condition on a JSON path within a column.
func (b *SelectBuilder) WhereJSON(field, path string, openBracket ...string) *JSONCond[*SelectBuilder] {
	b.last = &b.stmt.Where
	return newJSONCond(b, &b.err, &b.stmt.Where, field, path, ir.AND, openBracket)
}

// AndJSON opens an AND-connected JSON condition.
func (b *SelectBuilder) AndJSON(field, path string, openBracket ...string) *JSONCond[*SelectBuilder] {
	return b.WhereJSON(field, path, openBracket...)
}

// OrJSON opens an OR-connected JSON condition.
func (b *SelectBuilder) OrJSON(field, path string, openBracket ...string) *JSONCond[*SelectBuilder] {
	b.last = &b.stmt.Where
	return newJSONCond(b, &b.err, &b.stmt.Where, field, path, ir.OR, openBracket)
}

// WhereExists adds an EXISTS (subquery) entry to the WHERE clause.
func (b *SelectBuilder) WhereExists(sub *SelectBuilder) *SelectBuilder {
	return b.exists(ir.AND, false, sub)
}

// WhereNotExists adds a NOT EXISTS (subquery) entry to the WHERE clause.
func (b *SelectBuilder) WhereNotExists(sub *SelectBuilder) *SelectBuilder {
	return b.exists(ir.AND, true, sub)
}

// OrExists adds an OR-connected EXISTS entry.
func (b *SelectBuilder) OrExists(sub *SelectBuilder) *SelectBuilder {
	return b.exists(ir.OR, false, sub)
}

// OrNotExists adds an OR-connected NOT EXISTS entry.
func (b *SelectBuilder) OrNotExists(sub *SelectBuilder) *SelectBuilder {
	return b.exists(ir.OR, true, sub)
}

func (b *SelectBuilder) exists(conn ir.Connector, negated bool, sub *SelectBuilder) *SelectBuilder {
	b.adopt(sub)
	if b.err == nil {
		b.stmt.Where = append(b.stmt.Where, existsPredicate(b.stmt.Where, conn, negated, sub))
	}
	b.last = &b.stmt.Where
	return b
}

// CloseBracket appends a close-bracket marker (")" by default) after the
// most recently completed condition. Markers pass through verbatim; balance
// against open markers is the caller's responsibility.
func (b *SelectBuilder) CloseBracket(marker ...string) *SelectBuilder {
	if b.last != nil {
		closeLast(*b.last, marker)
	}
	return b
}

// GroupBy appends GROUP BY fields.
func (b *SelectBuilder) GroupBy(fields ...string) *SelectBuilder {
	b.stmt.GroupBy = append(b.stmt.GroupBy, fields...)
	return b
}

// Having opens a HAVING condition on a field.
func (b *SelectBuilder) Having(field string, openBracket ...string) *Cond[*SelectBuilder] {
	b.last = &b.stmt.Having
	return newCond(b, &b.err, &b.stmt.Having, field, ir.AND, openBracket)
}

// OrHaving opens an OR-connected HAVING condition.
func (b *SelectBuilder) OrHaving(field string, openBracket ...string) *Cond[*SelectBuilder] {
	b.last = &b.stmt.Having
	return newCond(b, &b.err, &b.stmt.Having, field, ir.OR, openBracket)
}

// HavingJSON opens a HAVING condition on a JSON path within a column.
func (b *SelectBuilder) HavingJSON(field, path string, openBracket ...string) *JSONCond[*SelectBuilder] {
	b.last = &b.stmt.Having
	return newJSONCond(b, &b.err, &b.stmt.Having, field, path, ir.AND, openBracket)
}

// OrderBy appends an ORDER BY term. Direction is "ASC" or "DESC",
// case-insensitive; anything else sorts ascending.
func (b *SelectBuilder) OrderBy(field, dir string) *SelectBuilder {
	b.stmt.OrderBy = append(b.stmt.OrderBy, ir.OrderTerm{Field: field, Dir: direction(dir)})
	return b
}

// Limit sets the LIMIT row count.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.stmt.Limit = &n
	return b
}

// Offset sets the OFFSET row count.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.stmt.Offset = &n
	return b
}

// Union appends a UNION operand.
func (b *SelectBuilder) Union(sub *SelectBuilder) *SelectBuilder {
	b.adopt(sub)
	b.stmt.Compound = append(b.stmt.Compound, ir.Compound{Query: &sub.stmt})
	return b
}

// UnionAll appends a UNION ALL operand.
func (b *SelectBuilder) UnionAll(sub *SelectBuilder) *SelectBuilder {
	b.adopt(sub)
	b.stmt.Compound = append(b.stmt.Compound, ir.Compound{Query: &sub.stmt, All: true})
	return b
}

// ToSQL renders the statement for a dialect ("mysql", "pgsql", "sqlite").
// Pending construction errors surface here. Rendering never mutates the
// builder, so the same statement may be rendered again for other dialects.
func (b *SelectBuilder) ToSQL(dialect string, opts ...Option) (*PreparedQuery, error) {
	return toSQL(&b.stmt, b.err, dialect, opts)
}

// Render renders the statement with an already-configured dialect renderer.
func (b *SelectBuilder) Render(r Renderer) (*PreparedQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	return r.Render(&b.stmt)
}

// WindowBuilder accumulates one window-function projection. Complete it
// with EndWindow, which appends the column and returns the host SELECT.
type WindowBuilder struct {
	host  *SelectBuilder
	alias string
	col   ir.WindowColumn
}

// PartitionBy appends PARTITION BY fields to the window.
func (w *WindowBuilder) PartitionBy(fields ...string) *WindowBuilder {
	w.col.Spec.PartitionBy = append(w.col.Spec.PartitionBy, fields...)
	return w
}

// WindowOrderBy appends an ORDER BY term to the window.
func (w *WindowBuilder) WindowOrderBy(field, dir string) *WindowBuilder {
	w.col.Spec.OrderBy = append(w.col.Spec.OrderBy, ir.OrderTerm{Field: field, Dir: direction(dir)})
	return w
}

// FrameRows sets a ROWS frame. Bounds are raw phrases such as "UNBOUNDED
// PRECEDING" or "CURRENT ROW"; with both given the frame renders as
// BETWEEN start AND end.
func (w *WindowBuilder) FrameRows(start string, end ...string) *WindowBuilder {
	return w.frame(ir.FrameRows, start, end)
}

// FrameRange sets a RANGE frame.
func (w *WindowBuilder) FrameRange(start string, end ...string) *WindowBuilder {
	return w.frame(ir.FrameRange, start, end)
}

// FrameGroups sets a GROUPS frame. Dialects and versions without GROUPS
// mode reject it at render time.
func (w *WindowBuilder) FrameGroups(start string, end ...string) *WindowBuilder {
	return w.frame(ir.FrameGroups, start, end)
}

func (w *WindowBuilder) frame(unit ir.FrameUnit, start string, end []string) *WindowBuilder {
	f := &ir.Frame{Unit: unit, Start: start}
	if len(end) > 0 {
		f.End = end[0]
	}
	w.col.Spec.Frame = f
	return w
}

// Over references a named WINDOW declaration instead of an inline spec.
func (w *WindowBuilder) Over(name string) *WindowBuilder {
	w.col.Over = name
	return w
}

// EndWindow appends the window column to the projection list and returns
// the host SELECT builder.
func (w *WindowBuilder) EndWindow() *SelectBuilder {
	col := w.col
	w.host.stmt.Columns = append(w.host.stmt.Columns, ir.SelectColumn{Alias: w.alias, Window: &col})
	return w.host
}

// NamedWindowBuilder accumulates one trailing WINDOW name AS (...) clause.
type NamedWindowBuilder struct {
	host *SelectBuilder
	win  ir.NamedWindow
}

// PartitionBy appends PARTITION BY fields to the named window.
func (w *NamedWindowBuilder) PartitionBy(fields ...string) *NamedWindowBuilder {
	w.win.Spec.PartitionBy = append(w.win.Spec.PartitionBy, fields...)
	return w
}

// WindowOrderBy appends an ORDER BY term to the named window.
func (w *NamedWindowBuilder) WindowOrderBy(field, dir string) *NamedWindowBuilder {
	w.win.Spec.OrderBy = append(w.win.Spec.OrderBy, ir.OrderTerm{Field: field, Dir: direction(dir)})
	return w
}

// FrameRows sets a ROWS frame on the named window.
func (w *NamedWindowBuilder) FrameRows(start string, end ...string) *NamedWindowBuilder {
	return w.frame(ir.FrameRows, start, end)
}

// FrameRange sets a RANGE frame on the named window.
func (w *NamedWindowBuilder) FrameRange(start string, end ...string) *NamedWindowBuilder {
	return w.frame(ir.FrameRange, start, end)
}

// FrameGroups sets a GROUPS frame on the named window.
func (w *NamedWindowBuilder) FrameGroups(start string, end ...string) *NamedWindowBuilder {
	return w.frame(ir.FrameGroups, start, end)
}

func (w *NamedWindowBuilder) frame(unit ir.FrameUnit, start string, end []string) *NamedWindowBuilder {
	f := &ir.Frame{Unit: unit, Start: start}
	if len(end) > 0 {
		f.End = end[0]
	}
	w.win.Spec.Frame = f
	return w
}

// EndWindow appends the declaration, in order, and returns the host SELECT.
func (w *NamedWindowBuilder) EndWindow() *SelectBuilder {
	w.host.stmt.Windows = append(w.host.stmt.Windows, w.win)
	return w.host
}
