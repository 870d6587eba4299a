package ir

// Connector joins a predicate to its preceding sibling.
type Connector string

const (
	// NoConnector marks the first predicate of a clause.
	NoConnector Connector = ""
	AND         Connector = "AND"
	OR          Connector = "OR"
)

// PredicateKind discriminates the predicate node variants.
type PredicateKind int

const (
	PredCompare PredicateKind = iota
	PredBetween
	PredIn
	PredNull
	PredExists
	PredJSON
)

// Comparison operator lexemes shared by every dialect.
const (
	OpEQ      = "="
	OpNE      = "!="
	OpGT      = ">"
	OpGE      = ">="
	OpLT      = "<"
	OpLE      = "<="
	OpLike    = "LIKE"
	OpNotLike = "NOT LIKE"
)

// FieldRef is the left-hand side of a predicate: either a plain identifier
// ("column" or "table.column") or a raw SQL expression such as LOWER(name).
// Both render verbatim; the distinction exists for callers and validators.
type FieldRef struct {
	Name string
	Expr bool
}

// Predicate is one node of a WHERE/HAVING/ON clause. Nodes form an ordered
// list; Connector binds each node to the previous one. Open and Close hold
// caller-supplied bracket markers rendered verbatim around the condition.
// Balance is the caller's responsibility and is never validated here.
type Predicate struct {
	Value     Value
	Low       Value
	High      Value
	Field     FieldRef
	Connector Connector
	Open      string
	Close     string
	Op        string
	JSONPath  string
	List      []Value
	Query     *SelectStmt
	Kind      PredicateKind
	Negated   bool
	JSONHas   bool
}
