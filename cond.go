package dbquery

import (
	"strings"

	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// Cond is the condition sub-builder returned by Where, And, Or, and On. It
// is scoped to one field and must be completed with exactly one terminal
// operator call, which appends the finished predicate and returns control to
// the host builder. There is no way back to the host without a terminal, so
// half-built conditions cannot reach a render.
type Cond[H any] struct {
	host H
	err  *error
	list *[]ir.Predicate
	node ir.Predicate
}

func newCond[H any](host H, err *error, list *[]ir.Predicate, field string, conn ir.Connector, open []string) *Cond[H] {
	c := &Cond[H]{host: host, err: err, list: list}
	c.node.Field = ir.FieldRef{Name: field}
	if len(*list) > 0 {
		c.node.Connector = conn
	}
	c.node.Open = strings.Join(open, "")
	return c
}

// push appends the completed node unless a construction error is pending.
func (c *Cond[H]) push() H {
	if *c.err == nil {
		*c.list = append(*c.list, c.node)
	}
	return c.host
}

func (c *Cond[H]) compare(op string, v any) H {
	c.node.Kind = ir.PredCompare
	c.node.Op = op
	c.node.Value = coerce(v)
	return c.push()
}

// Equals completes the condition as field = value.
func (c *Cond[H]) Equals(v any) H { return c.compare(ir.OpEQ, v) }

// NotEquals completes the condition as field != value.
func (c *Cond[H]) NotEquals(v any) H { return c.compare(ir.OpNE, v) }

// Greater completes the condition as field > value.
func (c *Cond[H]) Greater(v any) H { return c.compare(ir.OpGT, v) }

// GreaterEquals completes the condition as field >= value.
func (c *Cond[H]) GreaterEquals(v any) H { return c.compare(ir.OpGE, v) }

// Lower completes the condition as field < value.
func (c *Cond[H]) Lower(v any) H { return c.compare(ir.OpLT, v) }

// LowerEquals completes the condition as field <= value.
func (c *Cond[H]) LowerEquals(v any) H { return c.compare(ir.OpLE, v) }

// Like completes the condition as field LIKE value.
func (c *Cond[H]) Like(v any) H { return c.compare(ir.OpLike, v) }

// NotLike completes the condition as field NOT LIKE value.
func (c *Cond[H]) NotLike(v any) H { return c.compare(ir.OpNotLike, v) }

// In completes the condition as field IN (...). A single *SelectBuilder
// argument renders as a nested SELECT; any other arguments become a
// comma-joined placeholder list.
func (c *Cond[H]) In(values ...any) H { return c.in(false, values) }

// NotIn completes the condition as field NOT IN (...).
func (c *Cond[H]) NotIn(values ...any) H { return c.in(true, values) }

func (c *Cond[H]) in(negated bool, values []any) H {
	c.node.Kind = ir.PredIn
	c.node.Negated = negated
	if len(values) == 1 {
		if sub, ok := values[0].(*SelectBuilder); ok {
			c.node.Query = &sub.stmt
			return c.push()
		}
	}
	if len(values) == 0 {
		if *c.err == nil {
			*c.err = errors.New("IN requires at least one value or a subquery")
		}
		return c.host
	}
	c.node.List = make([]ir.Value, len(values))
	for i, v := range values {
		c.node.List[i] = coerce(v)
	}
	return c.push()
}

// Between completes the condition as field BETWEEN min AND max.
func (c *Cond[H]) Between(min, max any) H { return c.between(false, min, max) }

// NotBetween completes the condition as field NOT BETWEEN min AND max.
func (c *Cond[H]) NotBetween(min, max any) H { return c.between(true, min, max) }

func (c *Cond[H]) between(negated bool, min, max any) H {
	c.node.Kind = ir.PredBetween
	c.node.Negated = negated
	c.node.Low = coerce(min)
	c.node.High = coerce(max)
	return c.push()
}

// IsNull completes the condition as field IS NULL.
func (c *Cond[H]) IsNull() H {
	c.node.Kind = ir.PredNull
	return c.push()
}

// IsNotNull completes the condition as field IS NOT NULL.
func (c *Cond[H]) IsNotNull() H {
	c.node.Kind = ir.PredNull
	c.node.Negated = true
	return c.push()
}

// JSONCond is the JSON-specialized condition sub-builder returned by
// WhereJSON and friends. Comparison terminals test the extracted path value;
// Contains tests containment where the dialect supports it. Connector and
// bracket semantics match Cond.
type JSONCond[H any] struct {
	cond *Cond[H]
}

func newJSONCond[H any](host H, err *error, list *[]ir.Predicate, field, path string, conn ir.Connector, open []string) *JSONCond[H] {
	c := newCond(host, err, list, field, conn, open)
	c.node.Kind = ir.PredJSON
	c.node.JSONPath = path
	return &JSONCond[H]{cond: c}
}

func (j *JSONCond[H]) compare(op string, v any) H {
	j.cond.node.Op = op
	j.cond.node.Value = coerce(v)
	return j.cond.push()
}

// Equals completes the condition as extract(field, path) = value.
func (j *JSONCond[H]) Equals(v any) H { return j.compare(ir.OpEQ, v) }

// NotEquals completes the condition as extract(field, path) != value.
func (j *JSONCond[H]) NotEquals(v any) H { return j.compare(ir.OpNE, v) }

// Greater completes the condition as extract(field, path) > value.
func (j *JSONCond[H]) Greater(v any) H { return j.compare(ir.OpGT, v) }

// GreaterEquals completes the condition as extract(field, path) >= value.
func (j *JSONCond[H]) GreaterEquals(v any) H { return j.compare(ir.OpGE, v) }

// Lower completes the condition as extract(field, path) < value.
func (j *JSONCond[H]) Lower(v any) H { return j.compare(ir.OpLT, v) }

// LowerEquals completes the condition as extract(field, path) <= value.
func (j *JSONCond[H]) LowerEquals(v any) H { return j.compare(ir.OpLE, v) }

// Like completes the condition as extract(field, path) LIKE value.
func (j *JSONCond[H]) Like(v any) H { return j.compare(ir.OpLike, v) }

// NotLike completes the condition as extract(field, path) NOT LIKE value.
func (j *JSONCond[H]) NotLike(v any) H { return j.compare(ir.OpNotLike, v) }

// Contains completes the condition as a JSON containment test of value at
// path (the whole document when path is "$" or empty). Dialects without a
// containment operator reject it at render time.
func (j *JSONCond[H]) Contains(v any) H {
	j.cond.node.JSONHas = true
	j.cond.node.Value = coerce(v)
	return j.cond.push()
}

// existsPredicate builds a standalone EXISTS / NOT EXISTS entry.
func existsPredicate(list []ir.Predicate, conn ir.Connector, negated bool, sub *SelectBuilder) ir.Predicate {
	p := ir.Predicate{Kind: ir.PredExists, Negated: negated, Query: &sub.stmt}
	if len(list) > 0 {
		p.Connector = conn
	}
	return p
}

// closeLast appends a close-bracket marker to the most recent predicate.
func closeLast(list []ir.Predicate, markers []string) {
	if len(list) == 0 {
		return
	}
	m := ")"
	if len(markers) > 0 {
		m = strings.Join(markers, "")
	}
	list[len(list)-1].Close += m
}
