package ir

import "fmt"

// Operation tags the statement kind carried into the prepared query.
type Operation string

const (
	OpSelect Operation = "SELECT"
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Statement is implemented by the four statement IRs consumed by renderers.
type Statement interface {
	Op() Operation
	Validate() error
}

// Direction is an ORDER BY sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// OrderTerm is one (field, direction) pair of an ORDER BY list.
type OrderTerm struct {
	Field string
	Dir   Direction
}

// JoinKind is the SQL join keyword.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	FullJoin  JoinKind = "FULL JOIN"
	CrossJoin JoinKind = "CROSS JOIN"
)

// Join is one entry of a statement's join list. Either Table or Query is
// set; a subquery source carries a mandatory alias, enforced at build time.
type Join struct {
	Table string
	Alias string
	Query *SelectStmt
	On    []Predicate
	Kind  JoinKind
}

// TableExpr is a FROM source: a named table or an aliased subquery.
type TableExpr struct {
	Name  string
	Alias string
	Query *SelectStmt
}

// CTE is one WITH entry. Registration order is preserved; a duplicate name
// overwrites the earlier query in place.
type CTE struct {
	Name      string
	Query     *SelectStmt
	Recursive bool
}

// FrameUnit is the window frame mode.
type FrameUnit string

const (
	FrameRows   FrameUnit = "ROWS"
	FrameRange  FrameUnit = "RANGE"
	FrameGroups FrameUnit = "GROUPS"
)

// Frame bounds a window partition. Start and End are raw bound phrases such
// as "UNBOUNDED PRECEDING" or "CURRENT ROW", rendered verbatim.
type Frame struct {
	Unit  FrameUnit
	Start string
	End   string
}

// WindowSpec is a window definition shared by inline OVER clauses and
// named WINDOW declarations.
type WindowSpec struct {
	PartitionBy []string
	OrderBy     []OrderTerm
	Frame       *Frame
}

// NamedWindow is one trailing WINDOW name AS (...) declaration.
type NamedWindow struct {
	Name string
	Spec WindowSpec
}

// WindowColumn is a window-function projection: FUNC(arg) OVER (...) or
// FUNC(arg) OVER name when Over references a named window.
type WindowColumn struct {
	Func string
	Arg  string
	Over string
	Spec WindowSpec
}

// SelectColumn is one projection entry: a raw column expression, an aliased
// subquery, or a window-function column.
type SelectColumn struct {
	Raw    string
	Alias  string
	Query  *SelectStmt
	Window *WindowColumn
}

// Compound is one UNION / UNION ALL operand, in registration order.
type Compound struct {
	Query *SelectStmt
	All   bool
}

// SelectStmt accumulates every clause of a SELECT.
type SelectStmt struct {
	From     TableExpr
	CTEs     []CTE
	Columns  []SelectColumn
	Joins    []Join
	Where    []Predicate
	GroupBy  []string
	Having   []Predicate
	Windows  []NamedWindow
	OrderBy  []OrderTerm
	Compound []Compound
	Limit    *int
	Offset   *int
	Distinct bool
}

// Op implements Statement.
func (*SelectStmt) Op() Operation { return OpSelect }

// Validate checks the structural invariants not already rejected at build time.
func (s *SelectStmt) Validate() error {
	if s.From.Name == "" && s.From.Query == nil {
		return fmt.Errorf("SELECT requires a FROM source")
	}
	if s.From.Query != nil && s.From.Alias == "" {
		return fmt.Errorf("subquery in FROM requires an alias")
	}
	for i := range s.Joins {
		if s.Joins[i].Query != nil && s.Joins[i].Alias == "" {
			return fmt.Errorf("subquery in JOIN requires an alias")
		}
	}
	for i := range s.Columns {
		if s.Columns[i].Query != nil && s.Columns[i].Alias == "" {
			return fmt.Errorf("subquery in SELECT list requires an alias")
		}
	}
	return nil
}

// HasRecursiveCTE reports whether any registered CTE is recursive. The
// RECURSIVE keyword is a whole-statement flag by dialect convention.
func (s *SelectStmt) HasRecursiveCTE() bool {
	for i := range s.CTEs {
		if s.CTEs[i].Recursive {
			return true
		}
	}
	return false
}

// ConflictKind is the INSERT conflict-resolution policy. At most one policy
// may be active per statement, enforced at build time.
type ConflictKind int

const (
	ConflictNone ConflictKind = iota
	ConflictIgnore
	ConflictReplace
	ConflictDuplicateKey
	ConflictTarget
)

// ConflictAction is the ON CONFLICT action for ConflictTarget policies.
type ConflictAction string

const (
	DoUpdate  ConflictAction = "DO UPDATE"
	DoNothing ConflictAction = "DO NOTHING"
)

// Conflict carries the active policy and its payload: Updates for
// ConflictDuplicateKey and DO UPDATE targets, Columns for ConflictTarget.
type Conflict struct {
	Updates []Assignment
	Columns []string
	Action  ConflictAction
	Kind    ConflictKind
}

// InsertStmt accumulates an INSERT. Exactly one value source is populated:
// Rows (fields+values path), SetRow (merged set path), or FromSelect.
type InsertStmt struct {
	Table      string
	Fields     []string
	Rows       [][]Value
	SetRow     []Assignment
	FromSelect *SelectStmt
	Conflict   Conflict
}

// Op implements Statement.
func (*InsertStmt) Op() Operation { return OpInsert }

// Validate checks that the statement has a target and a value source.
func (s *InsertStmt) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("INSERT requires a target table")
	}
	if len(s.Rows) == 0 && len(s.SetRow) == 0 && s.FromSelect == nil {
		return fmt.Errorf("INSERT requires values or a source query")
	}
	if s.FromSelect != nil && len(s.Fields) == 0 {
		return fmt.Errorf("INSERT from a SELECT requires an explicit field list")
	}
	return nil
}

// UpdateStmt accumulates an UPDATE. Sets preserves insertion order with
// last-write-wins per field. ORDER BY / LIMIT are dialect-conditional and
// rejected by renderers, not here.
type UpdateStmt struct {
	Table   string
	Alias   string
	Sets    []Assignment
	Joins   []Join
	Where   []Predicate
	OrderBy []OrderTerm
	Limit   *int
	Ignore  bool
}

// Op implements Statement.
func (*UpdateStmt) Op() Operation { return OpUpdate }

// Validate checks that the statement has a target and assignments.
func (s *UpdateStmt) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("UPDATE requires a target table")
	}
	if len(s.Sets) == 0 {
		return fmt.Errorf("UPDATE requires at least one assignment")
	}
	return nil
}

// DeleteStmt accumulates a DELETE.
type DeleteStmt struct {
	Table   string
	Joins   []Join
	Where   []Predicate
	OrderBy []OrderTerm
	Limit   *int
}

// Op implements Statement.
func (*DeleteStmt) Op() Operation { return OpDelete }

// Validate checks that the statement has a target table.
func (s *DeleteStmt) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("DELETE requires a target table")
	}
	return nil
}
