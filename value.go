package dbquery

import "github.com/jardisPsr/dbquery/internal/ir"

// Value is one bindable operand: a scalar that renders as a placeholder, a
// raw SQL fragment rendered verbatim, or a subquery rendered parenthesized.
// Builder methods taking any coerce plain Go values to scalar Values, so
// explicit construction is only needed for Raw and Col operands.
type Value struct {
	node ir.Value
}

// Bind wraps a scalar. It renders as a placeholder with the value appended
// to the bindings list.
func Bind(v any) Value {
	return Value{node: ir.ScalarValue(v)}
}

// Raw wraps a SQL fragment that renders verbatim, never as a placeholder.
// The text is trusted literally; callers own its safety.
func Raw(sql string) Value {
	return Value{node: ir.RawValue(sql)}
}

// Col references a column by name, enabling column-to-column comparisons:
//
//	Where("o.user_id").Equals(Col("u.id"))
//
// It renders verbatim like Raw; the distinct constructor states intent.
func Col(name string) Value {
	return Value{node: ir.RawValue(name)}
}

// coerce maps an operand of any supported kind onto the value union.
func coerce(v any) ir.Value {
	switch t := v.(type) {
	case Value:
		return t.node
	case *SelectBuilder:
		return ir.SubqueryValue(&t.stmt)
	default:
		return ir.ScalarValue(v)
	}
}
