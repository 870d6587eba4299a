package dbquery

import (
	"sort"

	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery/internal/ir"
)

// InsertBuilder accumulates an INSERT statement. Values are populated one
// of three mutually exclusive ways: Fields plus Values rows, Set /
// SetMultiple merging into a single row, or FromSelect. At most one
// conflict policy (OrIgnore, OrReplace, OnDuplicateKeyUpdate, OnConflict)
// may be active; combining them is a construction error.
type InsertBuilder struct {
	stmt ir.InsertStmt
	err  error
}

// Insert starts an INSERT.
func Insert() *InsertBuilder {
	return &InsertBuilder{}
}

func (b *InsertBuilder) fail(err error) *InsertBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the pending construction error, if any.
func (b *InsertBuilder) Err() error { return b.err }

// Into sets the target table.
func (b *InsertBuilder) Into(table string) *InsertBuilder {
	b.stmt.Table = table
	return b
}

// Fields sets the explicit field list for the Values row path.
func (b *InsertBuilder) Fields(fields ...string) *InsertBuilder {
	if len(b.stmt.SetRow) > 0 {
		return b.fail(errors.New("cannot mix Fields/Values with Set on the same INSERT"))
	}
	b.stmt.Fields = fields
	return b
}

// Values appends one value row. Row length must match the field list when
// one is set, and the first row otherwise; a mismatch fails immediately.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	if len(b.stmt.SetRow) > 0 {
		return b.fail(errors.New("cannot mix Fields/Values with Set on the same INSERT"))
	}
	if b.stmt.FromSelect != nil {
		return b.fail(errors.New("cannot mix Values with FromSelect on the same INSERT"))
	}
	if len(b.stmt.Fields) > 0 && len(values) != len(b.stmt.Fields) {
		return b.fail(errors.Newf("value row has %d values for %d fields", len(values), len(b.stmt.Fields)))
	}
	if len(b.stmt.Fields) == 0 && len(b.stmt.Rows) > 0 && len(values) != len(b.stmt.Rows[0]) {
		return b.fail(errors.Newf("value row has %d values, previous rows have %d", len(values), len(b.stmt.Rows[0])))
	}
	row := make([]ir.Value, len(values))
	for i, v := range values {
		row[i] = coerce(v)
	}
	b.stmt.Rows = append(b.stmt.Rows, row)
	return b
}

// Set merges one field = value pair into the single accumulated row. Later
// writes to the same field overwrite earlier ones.
func (b *InsertBuilder) Set(field string, v any) *InsertBuilder {
	if len(b.stmt.Rows) > 0 || len(b.stmt.Fields) > 0 {
		return b.fail(errors.New("cannot mix Set with Fields/Values on the same INSERT"))
	}
	if b.stmt.FromSelect != nil {
		return b.fail(errors.New("cannot mix Set with FromSelect on the same INSERT"))
	}
	b.stmt.SetRow = ir.SetAssignment(b.stmt.SetRow, field, coerce(v))
	return b
}

// SetMultiple merges a mapping into the accumulated row. Keys are applied
// in sorted order so the rendered field order is deterministic.
func (b *InsertBuilder) SetMultiple(data map[string]any) *InsertBuilder {
	for _, field := range sortedKeys(data) {
		b.Set(field, data[field])
	}
	return b
}

// FromSelect sources the inserted rows from a SELECT. An explicit field
// list is required before rendering. Accumulated Values rows or Set
// assignments are incompatible with a source query.
func (b *InsertBuilder) FromSelect(sub *SelectBuilder) *InsertBuilder {
	if len(b.stmt.Rows) > 0 || len(b.stmt.SetRow) > 0 {
		return b.fail(errors.New("cannot mix FromSelect with Values or Set on the same INSERT"))
	}
	if sub.err != nil {
		return b.fail(sub.err)
	}
	b.stmt.FromSelect = &sub.stmt
	return b
}

// OrIgnore sets the ignore-conflicts policy: INSERT IGNORE on MySQL,
// INSERT OR IGNORE on SQLite, ON CONFLICT DO NOTHING on PostgreSQL.
func (b *InsertBuilder) OrIgnore() *InsertBuilder {
	return b.policy(ir.Conflict{Kind: ir.ConflictIgnore})
}

// OrReplace sets the replace-on-conflict policy: REPLACE INTO on MySQL,
// INSERT OR REPLACE on SQLite. PostgreSQL rejects it at render time.
func (b *InsertBuilder) OrReplace() *InsertBuilder {
	return b.policy(ir.Conflict{Kind: ir.ConflictReplace})
}

// OnDuplicateKeyUpdate sets the MySQL-native upsert policy. Keys are
// applied in sorted order. Dialects speaking ON CONFLICT reject it at
// render time.
func (b *InsertBuilder) OnDuplicateKeyUpdate(updates map[string]any) *InsertBuilder {
	if len(updates) == 0 {
		return b.fail(errors.New("ON DUPLICATE KEY UPDATE requires at least one assignment"))
	}
	return b.policy(ir.Conflict{Kind: ir.ConflictDuplicateKey, Updates: sortedAssignments(updates)})
}

// OnConflict opens an ON CONFLICT (columns...) policy; complete it with
// DoUpdate or DoNothing. On MySQL the policy maps to ON DUPLICATE KEY
// UPDATE (the conflict target has no MySQL spelling) or INSERT IGNORE.
func (b *InsertBuilder) OnConflict(columns ...string) *ConflictBuilder {
	return &ConflictBuilder{host: b, columns: columns}
}

// policy activates a conflict policy, enforcing that only one is set.
func (b *InsertBuilder) policy(c ir.Conflict) *InsertBuilder {
	if b.stmt.Conflict.Kind != ir.ConflictNone {
		return b.fail(errors.New("conflicting INSERT conflict policies"))
	}
	b.stmt.Conflict = c
	return b
}

// ToSQL renders the statement for a dialect ("mysql", "pgsql", "sqlite").
// Pending construction errors surface here.
func (b *InsertBuilder) ToSQL(dialect string, opts ...Option) (*PreparedQuery, error) {
	return toSQL(&b.stmt, b.err, dialect, opts)
}

// Render renders the statement with an already-configured dialect renderer.
func (b *InsertBuilder) Render(r Renderer) (*PreparedQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	return r.Render(&b.stmt)
}

// ConflictBuilder completes an ON CONFLICT policy.
type ConflictBuilder struct {
	host    *InsertBuilder
	columns []string
}

// DoUpdate resolves conflicts by updating the given fields. Keys are
// applied in sorted order.
func (c *ConflictBuilder) DoUpdate(updates map[string]any) *InsertBuilder {
	if len(updates) == 0 {
		return c.host.fail(errors.New("DO UPDATE requires at least one assignment"))
	}
	return c.host.policy(ir.Conflict{
		Kind:    ir.ConflictTarget,
		Columns: c.columns,
		Action:  ir.DoUpdate,
		Updates: sortedAssignments(updates),
	})
}

// DoNothing resolves conflicts by skipping the conflicting rows.
func (c *ConflictBuilder) DoNothing() *InsertBuilder {
	return c.host.policy(ir.Conflict{
		Kind:    ir.ConflictTarget,
		Columns: c.columns,
		Action:  ir.DoNothing,
	})
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAssignments(m map[string]any) []ir.Assignment {
	var list []ir.Assignment
	for _, field := range sortedKeys(m) {
		list = ir.SetAssignment(list, field, coerce(m[field]))
	}
	return list
}
