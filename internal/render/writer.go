package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// Render maps a completed statement plus one dialect configuration to a
// PreparedQuery. It is stateless and side-effect-free with respect to the
// statement: repeated calls yield byte-identical output, and the same
// statement may be rendered for several dialects.
func Render(stmt ir.Statement, d *Dialect, prepared bool) (*PreparedQuery, error) {
	if err := stmt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement: %w", err)
	}

	w := &writer{d: d, prepared: prepared}

	var err error
	switch s := stmt.(type) {
	case *ir.SelectStmt:
		err = w.selectStmt(s)
	case *ir.InsertStmt:
		err = w.insertStmt(s)
	case *ir.UpdateStmt:
		err = w.updateStmt(s)
	case *ir.DeleteStmt:
		err = w.deleteStmt(s)
	default:
		err = fmt.Errorf("unsupported statement type %T", stmt)
	}
	if err != nil {
		return nil, err
	}

	return NewPreparedQuery(w.sql.String(), w.bindings, stmt.Op()), nil
}

// writer accumulates SQL text and the parallel bindings list. Bindings are
// appended in emission order, which keeps them aligned with the left-to-right
// placeholder order in the text.
type writer struct {
	d        *Dialect
	bindings []any
	sql      strings.Builder
	prepared bool
}

// bind emits the marker for one scalar binding, or an inline literal when
// prepared-statement output is disabled.
func (w *writer) bind(v any) string {
	if !w.prepared {
		return literal(v)
	}
	w.bindings = append(w.bindings, v)
	return w.d.FormatPlaceholder(len(w.bindings))
}

// literal renders a scalar as an inline SQL literal for non-prepared output.
func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + escapeString(t) + "'"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// escapeString escapes single quotes and backslashes for inline literals.
func escapeString(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}

func (w *writer) value(v ir.Value) error {
	switch v.Kind {
	case ir.KindRaw:
		w.sql.WriteString(v.Raw)
		return nil
	case ir.KindSubquery:
		w.sql.WriteString("(")
		if err := w.selectStmt(v.Query); err != nil {
			return err
		}
		w.sql.WriteString(")")
		return nil
	default:
		w.sql.WriteString(w.bind(v.Scalar))
		return nil
	}
}

// predicates renders an ordered predicate list. Connectors join siblings;
// bracket markers pass through verbatim with no balance validation.
func (w *writer) predicates(list []ir.Predicate) error {
	for i := range list {
		p := &list[i]
		if i > 0 {
			c := p.Connector
			if c == ir.NoConnector {
				c = ir.AND
			}
			w.sql.WriteString(" " + string(c) + " ")
		}
		w.sql.WriteString(p.Open)
		if err := w.predicate(p); err != nil {
			return err
		}
		w.sql.WriteString(p.Close)
	}
	return nil
}

func (w *writer) predicate(p *ir.Predicate) error {
	switch p.Kind {
	case ir.PredCompare:
		w.sql.WriteString(p.Field.Name + " " + p.Op + " ")
		return w.value(p.Value)
	case ir.PredBetween:
		kw := " BETWEEN "
		if p.Negated {
			kw = " NOT BETWEEN "
		}
		w.sql.WriteString(p.Field.Name + kw)
		if err := w.value(p.Low); err != nil {
			return err
		}
		w.sql.WriteString(" AND ")
		return w.value(p.High)
	case ir.PredIn:
		kw := " IN ("
		if p.Negated {
			kw = " NOT IN ("
		}
		w.sql.WriteString(p.Field.Name + kw)
		if p.Query != nil {
			if err := w.selectStmt(p.Query); err != nil {
				return err
			}
		} else {
			for i := range p.List {
				if i > 0 {
					w.sql.WriteString(", ")
				}
				if err := w.value(p.List[i]); err != nil {
					return err
				}
			}
		}
		w.sql.WriteString(")")
		return nil
	case ir.PredNull:
		if p.Negated {
			w.sql.WriteString(p.Field.Name + " IS NOT NULL")
		} else {
			w.sql.WriteString(p.Field.Name + " IS NULL")
		}
		return nil
	case ir.PredExists:
		if p.Negated {
			w.sql.WriteString("NOT ")
		}
		w.sql.WriteString("EXISTS (")
		if err := w.selectStmt(p.Query); err != nil {
			return err
		}
		w.sql.WriteString(")")
		return nil
	case ir.PredJSON:
		return w.jsonPredicate(p)
	default:
		return fmt.Errorf("unknown predicate kind %d", p.Kind)
	}
}

func (w *writer) jsonPredicate(p *ir.Predicate) error {
	if p.JSONHas {
		if !w.d.Features.JSONContains {
			return NewUnsupportedFeatureError(w.d.Name, "JSON containment predicates")
		}
		var operand string
		switch p.Value.Kind {
		case ir.KindScalar:
			operand = w.bind(p.Value.Scalar)
		case ir.KindRaw:
			operand = p.Value.Raw
		default:
			return fmt.Errorf("JSON containment requires a scalar or raw value")
		}
		w.sql.WriteString(w.d.JSONContainsExpr(p.Field.Name, p.JSONPath, operand))
		return nil
	}
	w.sql.WriteString(w.d.JSONExtract(p.Field.Name, p.JSONPath) + " " + p.Op + " ")
	return w.value(p.Value)
}

func (w *writer) selectStmt(s *ir.SelectStmt) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid statement: %w", err)
	}

	if len(s.CTEs) > 0 {
		w.sql.WriteString("WITH ")
		if s.HasRecursiveCTE() {
			if !w.d.Features.RecursiveCTE {
				return NewUnsupportedFeatureError(w.d.Name, "RECURSIVE common table expressions",
					"requires "+w.d.Name+" version with recursive CTE support")
			}
			w.sql.WriteString("RECURSIVE ")
		}
		for i := range s.CTEs {
			if i > 0 {
				w.sql.WriteString(", ")
			}
			w.sql.WriteString(s.CTEs[i].Name + " AS (")
			if err := w.selectStmt(s.CTEs[i].Query); err != nil {
				return err
			}
			w.sql.WriteString(")")
		}
		w.sql.WriteString(" ")
	}

	w.sql.WriteString("SELECT ")
	if s.Distinct {
		w.sql.WriteString("DISTINCT ")
	}
	if len(s.Columns) == 0 {
		w.sql.WriteString("*")
	} else {
		for i := range s.Columns {
			if i > 0 {
				w.sql.WriteString(", ")
			}
			if err := w.selectColumn(&s.Columns[i]); err != nil {
				return err
			}
		}
	}

	w.sql.WriteString(" FROM ")
	if err := w.tableExpr(&s.From); err != nil {
		return err
	}

	if err := w.joins(s.Joins); err != nil {
		return err
	}

	if len(s.Where) > 0 {
		w.sql.WriteString(" WHERE ")
		if err := w.predicates(s.Where); err != nil {
			return err
		}
	}

	if len(s.GroupBy) > 0 {
		w.sql.WriteString(" GROUP BY " + strings.Join(s.GroupBy, ", "))
	}

	if len(s.Having) > 0 {
		w.sql.WriteString(" HAVING ")
		if err := w.predicates(s.Having); err != nil {
			return err
		}
	}

	if len(s.Windows) > 0 {
		if !w.d.Features.WindowFunctions {
			return NewUnsupportedFeatureError(w.d.Name, "window functions",
				windowHint(w.d))
		}
		w.sql.WriteString(" WINDOW ")
		for i := range s.Windows {
			if i > 0 {
				w.sql.WriteString(", ")
			}
			w.sql.WriteString(s.Windows[i].Name + " AS (")
			if err := w.windowSpec(&s.Windows[i].Spec); err != nil {
				return err
			}
			w.sql.WriteString(")")
		}
	}

	for i := range s.Compound {
		if s.Compound[i].All {
			w.sql.WriteString(" UNION ALL ")
		} else {
			w.sql.WriteString(" UNION ")
		}
		if err := w.selectStmt(s.Compound[i].Query); err != nil {
			return err
		}
	}

	w.orderBy(s.OrderBy)
	w.limitOffset(s.Limit, s.Offset)
	return nil
}

func (w *writer) selectColumn(c *ir.SelectColumn) error {
	switch {
	case c.Window != nil:
		if !w.d.Features.WindowFunctions {
			return NewUnsupportedFeatureError(w.d.Name, "window functions", windowHint(w.d))
		}
		wc := c.Window
		w.sql.WriteString(wc.Func + "(" + wc.Arg + ") OVER ")
		if wc.Over != "" {
			w.sql.WriteString(wc.Over)
		} else {
			w.sql.WriteString("(")
			if err := w.windowSpec(&wc.Spec); err != nil {
				return err
			}
			w.sql.WriteString(")")
		}
	case c.Query != nil:
		w.sql.WriteString("(")
		if err := w.selectStmt(c.Query); err != nil {
			return err
		}
		w.sql.WriteString(")")
	default:
		w.sql.WriteString(c.Raw)
	}
	if c.Alias != "" {
		w.sql.WriteString(" AS " + c.Alias)
	}
	return nil
}

func (w *writer) windowSpec(spec *ir.WindowSpec) error {
	var parts []string
	if len(spec.PartitionBy) > 0 {
		parts = append(parts, "PARTITION BY "+strings.Join(spec.PartitionBy, ", "))
	}
	if len(spec.OrderBy) > 0 {
		terms := make([]string, len(spec.OrderBy))
		for i, o := range spec.OrderBy {
			terms[i] = o.Field + " " + string(o.Dir)
		}
		parts = append(parts, "ORDER BY "+strings.Join(terms, ", "))
	}
	if spec.Frame != nil {
		f := spec.Frame
		if f.Unit == ir.FrameGroups && !w.d.Features.GroupsFrame {
			return NewUnsupportedFeatureError(w.d.Name, "GROUPS frame mode")
		}
		frame := string(f.Unit) + " "
		if f.End != "" {
			frame += "BETWEEN " + f.Start + " AND " + f.End
		} else {
			frame += f.Start
		}
		parts = append(parts, frame)
	}
	w.sql.WriteString(strings.Join(parts, " "))
	return nil
}

func (w *writer) tableExpr(t *ir.TableExpr) error {
	if t.Query != nil {
		w.sql.WriteString("(")
		if err := w.selectStmt(t.Query); err != nil {
			return err
		}
		w.sql.WriteString(") AS " + t.Alias)
		return nil
	}
	w.sql.WriteString(t.Name)
	if t.Alias != "" {
		w.sql.WriteString(" " + t.Alias)
	}
	return nil
}

func (w *writer) joins(list []ir.Join) error {
	for i := range list {
		j := &list[i]
		if j.Kind == ir.FullJoin && !w.d.Features.FullJoin {
			return NewUnsupportedFeatureError(w.d.Name, "FULL JOIN",
				"emulate with a LEFT JOIN / RIGHT JOIN union")
		}
		w.sql.WriteString(" " + string(j.Kind) + " ")
		if j.Query != nil {
			w.sql.WriteString("(")
			if err := w.selectStmt(j.Query); err != nil {
				return err
			}
			w.sql.WriteString(") AS " + j.Alias)
		} else {
			w.sql.WriteString(j.Table)
			if j.Alias != "" {
				w.sql.WriteString(" " + j.Alias)
			}
		}
		if j.Kind != ir.CrossJoin && len(j.On) > 0 {
			w.sql.WriteString(" ON ")
			if err := w.predicates(j.On); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) orderBy(list []ir.OrderTerm) {
	if len(list) == 0 {
		return
	}
	w.sql.WriteString(" ORDER BY ")
	for i, o := range list {
		if i > 0 {
			w.sql.WriteString(", ")
		}
		w.sql.WriteString(o.Field + " " + string(o.Dir))
	}
}

func (w *writer) limitOffset(limit, offset *int) {
	if limit != nil {
		w.sql.WriteString(" LIMIT " + strconv.Itoa(*limit))
	}
	if offset != nil {
		w.sql.WriteString(" OFFSET " + strconv.Itoa(*offset))
	}
}

func (w *writer) assignments(list []ir.Assignment) error {
	for i := range list {
		if i > 0 {
			w.sql.WriteString(", ")
		}
		w.sql.WriteString(w.d.QuoteIdent(list[i].Field) + " = ")
		if err := w.value(list[i].Value); err != nil {
			return err
		}
	}
	return nil
}

// conflictPlan resolves an abstract conflict policy against the dialect's
// upsert grammar up front, so the INSERT verb and trailing clause agree.
type conflictPlan struct {
	target    *ir.Conflict
	odku      []ir.Assignment
	verb      string
	doNothing bool
}

func (w *writer) planConflict(c *ir.Conflict) (conflictPlan, error) {
	p := conflictPlan{verb: "INSERT INTO"}
	switch c.Kind {
	case ir.ConflictNone:
	case ir.ConflictIgnore:
		switch w.d.Ignore {
		case IgnoreKeyword:
			p.verb = "INSERT IGNORE INTO"
		case IgnoreOr:
			p.verb = "INSERT OR IGNORE INTO"
		case IgnoreConflictNothing:
			p.doNothing = true
		default:
			return p, NewUnsupportedFeatureError(w.d.Name, "INSERT IGNORE")
		}
	case ir.ConflictReplace:
		switch w.d.Replace {
		case ReplaceInto:
			p.verb = "REPLACE INTO"
		case ReplaceOr:
			p.verb = "INSERT OR REPLACE INTO"
		default:
			return p, NewUnsupportedFeatureError(w.d.Name, "REPLACE INTO",
				"use onConflict with DO UPDATE instead")
		}
	case ir.ConflictDuplicateKey:
		if w.d.Upsert != UpsertDuplicateKey {
			return p, NewUnsupportedFeatureError(w.d.Name, "ON DUPLICATE KEY UPDATE",
				"use onConflict with a conflict target instead")
		}
		p.odku = c.Updates
	case ir.ConflictTarget:
		if w.d.Upsert == UpsertConflictTarget {
			p.target = c
		} else if c.Action == ir.DoNothing {
			// The closest ON DUPLICATE KEY dialect equivalent of DO NOTHING.
			p.verb = "INSERT IGNORE INTO"
		} else {
			p.odku = c.Updates
		}
	}
	return p, nil
}

func (w *writer) insertStmt(s *ir.InsertStmt) error {
	fields := s.Fields
	rows := s.Rows
	if len(s.SetRow) > 0 {
		fields = make([]string, len(s.SetRow))
		row := make([]ir.Value, len(s.SetRow))
		for i, a := range s.SetRow {
			fields[i] = a.Field
			row[i] = a.Value
		}
		rows = [][]ir.Value{row}
	}

	plan, err := w.planConflict(&s.Conflict)
	if err != nil {
		return err
	}

	w.sql.WriteString(plan.verb + " " + s.Table)
	if len(fields) > 0 {
		w.sql.WriteString(" (")
		for i, f := range fields {
			if i > 0 {
				w.sql.WriteString(", ")
			}
			w.sql.WriteString(w.d.QuoteIdent(f))
		}
		w.sql.WriteString(")")
	}

	if s.FromSelect != nil {
		w.sql.WriteString(" ")
		if err := w.selectStmt(s.FromSelect); err != nil {
			return err
		}
	} else {
		w.sql.WriteString(" VALUES ")
		for ri := range rows {
			if ri > 0 {
				w.sql.WriteString(", ")
			}
			w.sql.WriteString("(")
			for vi := range rows[ri] {
				if vi > 0 {
					w.sql.WriteString(", ")
				}
				if err := w.value(rows[ri][vi]); err != nil {
					return err
				}
			}
			w.sql.WriteString(")")
		}
	}

	switch {
	case plan.doNothing:
		w.sql.WriteString(" ON CONFLICT DO NOTHING")
	case plan.odku != nil:
		w.sql.WriteString(" ON DUPLICATE KEY UPDATE ")
		if err := w.assignments(plan.odku); err != nil {
			return err
		}
	case plan.target != nil:
		w.sql.WriteString(" ON CONFLICT (")
		for i, col := range plan.target.Columns {
			if i > 0 {
				w.sql.WriteString(", ")
			}
			w.sql.WriteString(w.d.QuoteIdent(col))
		}
		w.sql.WriteString(") " + string(plan.target.Action))
		if plan.target.Action == ir.DoUpdate {
			w.sql.WriteString(" SET ")
			if err := w.assignments(plan.target.Updates); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) updateStmt(s *ir.UpdateStmt) error {
	w.sql.WriteString("UPDATE ")
	if s.Ignore {
		if !w.d.Features.UpdateIgnore {
			return NewUnsupportedFeatureError(w.d.Name, "UPDATE IGNORE")
		}
		w.sql.WriteString(w.d.UpdateIgnoreKeyword + " ")
	}
	w.sql.WriteString(s.Table)
	if s.Alias != "" {
		w.sql.WriteString(" " + s.Alias)
	}

	if len(s.Joins) > 0 {
		if !w.d.Features.UpdateJoin {
			return NewUnsupportedFeatureError(w.d.Name, "JOIN in UPDATE",
				"use a correlated subquery in the WHERE clause")
		}
		if err := w.joins(s.Joins); err != nil {
			return err
		}
	}

	w.sql.WriteString(" SET ")
	if err := w.assignments(s.Sets); err != nil {
		return err
	}

	if len(s.Where) > 0 {
		w.sql.WriteString(" WHERE ")
		if err := w.predicates(s.Where); err != nil {
			return err
		}
	}

	if len(s.OrderBy) > 0 || s.Limit != nil {
		if !w.d.Features.UpdateOrderLimit {
			return NewUnsupportedFeatureError(w.d.Name, "ORDER BY / LIMIT on UPDATE")
		}
		w.orderBy(s.OrderBy)
		w.limitOffset(s.Limit, nil)
	}
	return nil
}

func (w *writer) deleteStmt(s *ir.DeleteStmt) error {
	if len(s.Joins) > 0 {
		if !w.d.Features.DeleteJoin {
			return NewUnsupportedFeatureError(w.d.Name, "JOIN in DELETE",
				"use a subquery in the WHERE clause")
		}
		// Multi-table form: DELETE t FROM t JOIN ...
		w.sql.WriteString("DELETE " + s.Table + " FROM " + s.Table)
		if err := w.joins(s.Joins); err != nil {
			return err
		}
	} else {
		w.sql.WriteString("DELETE FROM " + s.Table)
	}

	if len(s.Where) > 0 {
		w.sql.WriteString(" WHERE ")
		if err := w.predicates(s.Where); err != nil {
			return err
		}
	}

	if len(s.OrderBy) > 0 || s.Limit != nil {
		if !w.d.Features.DeleteOrderLimit {
			return NewUnsupportedFeatureError(w.d.Name, "ORDER BY / LIMIT on DELETE")
		}
		w.orderBy(s.OrderBy)
		w.limitOffset(s.Limit, nil)
	}
	return nil
}

func windowHint(d *Dialect) string {
	return "not available on " + d.Name + " " + d.Version
}
