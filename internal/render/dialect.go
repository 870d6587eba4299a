package render

import (
	"strconv"
	"strings"
)

// PlaceholderStyle defines how scalar bindings appear in the SQL text.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite, and the
	// PostgreSQL default for driver-side rebinding).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, ... (native PostgreSQL).
	PlaceholderDollar
)

// IgnoreStyle maps the orIgnore conflict policy onto dialect syntax.
type IgnoreStyle int

const (
	IgnoreUnsupported IgnoreStyle = iota
	IgnoreKeyword                 // INSERT IGNORE INTO
	IgnoreOr                      // INSERT OR IGNORE INTO
	IgnoreConflictNothing         // INSERT INTO ... ON CONFLICT DO NOTHING
)

// ReplaceStyle maps the orReplace conflict policy onto dialect syntax.
type ReplaceStyle int

const (
	ReplaceUnsupported ReplaceStyle = iota
	ReplaceInto                     // REPLACE INTO
	ReplaceOr                       // INSERT OR REPLACE INTO
)

// UpsertStyle is the native upsert grammar the dialect speaks.
type UpsertStyle int

const (
	UpsertConflictTarget UpsertStyle = iota // ON CONFLICT (...) DO ...
	UpsertDuplicateKey                      // ON DUPLICATE KEY UPDATE
)

// Features flags the version-gated constructs a dialect accepts. Dialect
// packages populate this from a (dialect, version) lookup; the walker
// rejects anything flagged off with a descriptive error.
type Features struct {
	FullJoin         bool
	WindowFunctions  bool
	GroupsFrame      bool
	RecursiveCTE     bool
	UpdateOrderLimit bool
	DeleteOrderLimit bool
	UpdateJoin       bool
	DeleteJoin       bool
	UpdateIgnore     bool
	JSONContains     bool
}

// Dialect is the pure-data configuration consumed by the shared walker.
// One instance describes one (dialect, version) pair.
type Dialect struct {
	// JSONExtract renders a path-extraction expression for a JSON column.
	JSONExtract func(field, path string) string
	// JSONContainsExpr renders a containment predicate; placeholder is the
	// already-emitted binding marker for the candidate value.
	JSONContainsExpr func(field, path, placeholder string) string

	Name                string
	Version             string
	Quote               string // identifier quote character: ` or "
	UpdateIgnoreKeyword string // IGNORE or OR IGNORE, when UpdateIgnore is set

	Placeholder PlaceholderStyle
	Ignore      IgnoreStyle
	Replace     ReplaceStyle
	Upsert      UpsertStyle
	Features    Features
}

// QuoteIdent quotes a plain identifier, escaping embedded quote characters
// by doubling. Compound references (dotted, aliased, or expressions) pass
// through verbatim; the builder surface accepts them as raw SQL.
func (d *Dialect) QuoteIdent(name string) string {
	if strings.ContainsAny(name, " .(") {
		return name
	}
	escaped := strings.ReplaceAll(name, d.Quote, d.Quote+d.Quote)
	return d.Quote + escaped + d.Quote
}

// FormatPlaceholder returns the marker for the n-th binding (1-based).
func (d *Dialect) FormatPlaceholder(n int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// VersionAtLeast reports whether version is >= min, comparing dot-separated
// numeric segments. Missing segments compare as zero.
func VersionAtLeast(version, min string) bool {
	vs := strings.Split(version, ".")
	ms := strings.Split(min, ".")
	for i := 0; i < len(vs) || i < len(ms); i++ {
		var v, m int
		if i < len(vs) {
			v, _ = strconv.Atoi(vs[i])
		}
		if i < len(ms) {
			m, _ = strconv.Atoi(ms[i])
		}
		if v != m {
			return v > m
		}
	}
	return true
}
