package ir

// ValueKind discriminates the cases of the Value union.
type ValueKind int

const (
	// KindScalar is a bindable value emitted as a placeholder.
	KindScalar ValueKind = iota
	// KindRaw is a trusted SQL fragment inserted verbatim.
	KindRaw
	// KindSubquery is a nested SELECT rendered in parentheses.
	KindSubquery
)

// Value is the tagged union behind every bindable position in a statement.
// Scalar values are always emitted as placeholders with tracked bindings;
// Raw fragments are never parameterized.
type Value struct {
	Scalar any
	Query  *SelectStmt
	Raw    string
	Kind   ValueKind
}

// ScalarValue wraps a bindable scalar (string, number, bool, or nil).
func ScalarValue(v any) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

// RawValue wraps a verbatim SQL fragment.
func RawValue(sql string) Value {
	return Value{Kind: KindRaw, Raw: sql}
}

// SubqueryValue wraps a nested SELECT statement.
func SubqueryValue(q *SelectStmt) Value {
	return Value{Kind: KindSubquery, Query: q}
}

// Assignment is one field = value pair in an INSERT row, UPDATE SET list,
// or upsert update list. Insertion order is preserved by the containing slice.
type Assignment struct {
	Value Value
	Field string
}

// SetAssignment merges an assignment into an ordered list, overwriting the
// value in place when the field is already present (last write wins).
func SetAssignment(list []Assignment, field string, v Value) []Assignment {
	for i := range list {
		if list[i].Field == field {
			list[i].Value = v
			return list
		}
	}
	return append(list, Assignment{Field: field, Value: v})
}
