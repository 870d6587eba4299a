// Package dbquery is a fluent, dialect-aware SQL query and command builder.
//
// Builders accumulate SELECT, INSERT, UPDATE, and DELETE statements through
// chained calls, then render them for a target dialect into a PreparedQuery:
// SQL text with placeholders plus the bindings in placeholder order.
//
//	q, err := dbquery.Select("id, name").
//		From("users").
//		Where("status").Equals("active").
//		And("age").Greater(18).
//		OrderBy("name", "ASC").
//		Limit(10).
//		ToSQL("mysql")
//
// A built statement is reusable: rendering is read-only, so the same builder
// may be rendered for several dialects, and repeated renders are
// byte-identical. Builders are not safe for concurrent mutation; concurrent
// renders of a no-longer-mutated builder are safe.
//
// Construction problems (value-row arity mismatches, missing subquery
// aliases, conflicting INSERT policies) are recorded at the offending call
// and surfaced by ToSQL, keeping chains fluent while still failing fast.
// Dialect gaps (FULL JOIN on MySQL, REPLACE INTO on PostgreSQL, window
// functions on an old version) surface at render time with an error naming
// the dialect.
package dbquery
