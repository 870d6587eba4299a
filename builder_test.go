package dbquery_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jardisPsr/dbquery"
)

var dialects = []string{"mysql", "pgsql", "sqlite"}

func TestInsertArityEnforcement(t *testing.T) {
	b := dbquery.Insert().Into("t").Fields("a", "b").Values(1)
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "1 values for 2 fields")

	_, err := b.ToSQL("mysql")
	assert.Equal(t, b.Err(), err)
}

func TestInsertRowLengthConsistency(t *testing.T) {
	b := dbquery.Insert().Into("t").Values(1, 2).Values(3)
	require.Error(t, b.Err())
}

func TestSubqueryAliasEnforcement(t *testing.T) {
	sub := dbquery.Select("id").From("users")

	b := dbquery.Select("s.id").FromSelect(sub, "")
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "alias")

	q, err := dbquery.Select("s.id").FromSelect(sub, "s").ToSQL("pgsql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT s.id FROM (SELECT id FROM users) AS s", q.SQL())

	assert.Error(t, dbquery.Select("*").From("a").JoinSub(sub, "").Err())
	assert.Error(t, dbquery.Select("n").SelectSubquery(sub, "").Err())
}

func TestConflictPolicyExclusivity(t *testing.T) {
	b := dbquery.Insert().Into("t").Set("email", "a@b.com").
		OrIgnore().
		OnConflict("email").DoNothing()
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "conflicting INSERT conflict policies")

	b = dbquery.Insert().Into("t").Set("email", "a@b.com").
		OnDuplicateKeyUpdate(map[string]any{"email": "x"}).
		OrReplace()
	require.Error(t, b.Err())
}

func TestInsertValuePathExclusivity(t *testing.T) {
	b := dbquery.Insert().Into("t").Fields("a").Values(1).Set("b", 2)
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "mix")

	b = dbquery.Insert().Into("t").Set("b", 2).Fields("a")
	require.Error(t, b.Err())
}

func buildComplexSelect() *dbquery.SelectBuilder {
	return dbquery.Select("id").From("users", "u").
		Join("orders", "o").On("o.user_id").Equals(dbquery.Col("u.id")).
		Where("status").Equals("active").
		And("age").Between(18, 65).
		And("region").In("na", "eu").
		And("score").Greater(4.5).
		GroupBy("region").
		Having("COUNT(*)").Greater(10).
		OrderBy("id", "ASC").
		Limit(5).
		Offset(2)
}

func TestBindingOrderAcrossDialects(t *testing.T) {
	want := []any{"active", 18, 65, "na", "eu", 4.5, 10}
	b := buildComplexSelect()

	for _, d := range dialects {
		q, err := b.ToSQL(d)
		require.NoError(t, err, d)
		assert.Equal(t, want, q.Bindings(), d)
		assert.Equal(t, len(want), strings.Count(q.SQL(), "?"), d)
	}
}

func TestIdempotentRender(t *testing.T) {
	b := buildComplexSelect()
	for _, d := range dialects {
		q1, err := b.ToSQL(d)
		require.NoError(t, err)
		q2, err := b.ToSQL(d)
		require.NoError(t, err)
		assert.Equal(t, q1.SQL(), q2.SQL(), d)
		assert.Equal(t, q1.Bindings(), q2.Bindings(), d)
	}
}

func TestClauseOrderingAcrossDialects(t *testing.T) {
	b := buildComplexSelect()
	for _, d := range dialects {
		q, err := b.ToSQL(d)
		require.NoError(t, err, d)
		sql := q.SQL()
		where := strings.Index(sql, "WHERE")
		group := strings.Index(sql, "GROUP BY")
		having := strings.Index(sql, "HAVING")
		order := strings.Index(sql, "ORDER BY")
		limit := strings.Index(sql, "LIMIT")
		assert.True(t, where < group && group < having && having < order && order < limit,
			"%s clause ordering: %s", d, sql)
	}
}

func TestBracketGrouping(t *testing.T) {
	q, err := dbquery.Select("id").From("t").
		Where("a", "(").Equals(1).
		Or("b").Equals(2).
		CloseBracket().
		And("c").Equals(3).
		ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE (a = ? OR b = ?) AND c = ?", q.SQL())
	assert.Equal(t, []any{1, 2, 3}, q.Bindings())
}

func TestUnbalancedBracketsPassThrough(t *testing.T) {
	// Bracket markers are verbatim and never balance-checked.
	q, err := dbquery.Select("id").From("t").
		Where("a", "(").Equals(1).
		ToSQL("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE (a = ?", q.SQL())
}

func TestCTEOverwriteAndRecursiveFlag(t *testing.T) {
	q, err := dbquery.Select("*").From("c").
		With("c", dbquery.Select("id").From("a")).
		With("c", dbquery.Select("id").From("b")).
		ToSQL("pgsql")
	require.NoError(t, err)
	assert.Equal(t, "WITH c AS (SELECT id FROM b) SELECT * FROM c", q.SQL())

	q, err = dbquery.Select("*").From("c").
		With("c", dbquery.Select("id").From("a")).
		WithRecursive("r", dbquery.Select("id").From("r")).
		ToSQL("pgsql")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q.SQL(), "WITH RECURSIVE c AS ("), q.SQL())
}

func TestOnWithoutJoin(t *testing.T) {
	b := dbquery.Select("*").From("t").On("a").Equals(1)
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "ON requires a preceding JOIN")
}

func TestUnknownDialect(t *testing.T) {
	_, err := dbquery.Select("id").From("t").ToSQL("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dialect "oracle"`)
}

func TestUnionOrdering(t *testing.T) {
	q, err := dbquery.Select("id").From("a").
		UnionAll(dbquery.Select("id").From("b")).
		Union(dbquery.Select("id").From("c")).
		OrderBy("id", "DESC").
		ToSQL("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM a UNION ALL SELECT id FROM b UNION SELECT id FROM c ORDER BY id DESC", q.SQL())
}

func TestExistsEntries(t *testing.T) {
	sub := dbquery.Select("1").From("orders").Where("orders.user_id").Equals(dbquery.Col("users.id"))

	q, err := dbquery.Select("id").From("users").WhereExists(sub).ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE EXISTS (SELECT 1 FROM orders WHERE orders.user_id = users.id)", q.SQL())

	q, err = dbquery.Select("id").From("users").
		Where("active").Equals(true).
		OrNotExists(sub).
		ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE active = ? OR NOT EXISTS (SELECT 1 FROM orders WHERE orders.user_id = users.id)", q.SQL())
}

func TestInSubquery(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		Where("id").In(dbquery.Select("user_id").From("orders")).
		ToSQL("pgsql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id IN (SELECT user_id FROM orders)", q.SQL())
	assert.Empty(t, q.Bindings())
}

func TestSubqueryAsValue(t *testing.T) {
	max := dbquery.Select("MAX(total)").From("orders")
	q, err := dbquery.Select("id").From("orders").
		Where("total").Equals(max).
		ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM orders WHERE total = (SELECT MAX(total) FROM orders)", q.SQL())
}

func TestNamedWindow(t *testing.T) {
	q, err := dbquery.Select("name").
		SelectWindow("RANK", "r").Over("w").EndWindow().
		From("emp").
		Window("w").PartitionBy("dept").WindowOrderBy("salary", "DESC").EndWindow().
		ToSQL("pgsql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name, RANK() OVER w AS r FROM emp WINDOW w AS (PARTITION BY dept ORDER BY salary DESC)", q.SQL())
}

func TestWithoutPreparedOption(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		Where("id").Equals(7).
		ToSQL("sqlite", dbquery.WithoutPrepared())
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = 7", q.SQL())
	assert.Empty(t, q.Bindings())
}

func TestUpdateSetLastWriteWins(t *testing.T) {
	q, err := dbquery.Update("t").
		Set("a", 1).
		Set("a", 2).
		Set("b", 3).
		ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET `a` = ?, `b` = ?", q.SQL())
	assert.Equal(t, []any{2, 3}, q.Bindings())
}

func TestSetMultipleSortedOrder(t *testing.T) {
	q, err := dbquery.Insert().Into("t").
		SetMultiple(map[string]any{"b": 2, "a": 1}).
		ToSQL("mysql")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (`a`, `b`) VALUES (?, ?)", q.SQL())
	assert.Equal(t, []any{1, 2}, q.Bindings())
}

func TestDistinctAndOffset(t *testing.T) {
	q, err := dbquery.Select("region").Distinct().From("users").Limit(10).Offset(20).ToSQL("pgsql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT region FROM users LIMIT 10 OFFSET 20", q.SQL())
}

func TestMissingFromRejected(t *testing.T) {
	_, err := dbquery.Select("id").ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FROM")
}

func TestVersionOption(t *testing.T) {
	b := dbquery.Select("n").
		SelectWindow("ROW_NUMBER", "rn").WindowOrderBy("n", "ASC").EndWindow().
		From("t")

	_, err := b.ToSQL("mysql", dbquery.WithVersion("5.7"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")

	_, err = b.ToSQL("mysql", dbquery.WithVersion("8.0"))
	require.NoError(t, err)
}

func TestInsertFromSelectExclusivity(t *testing.T) {
	src := dbquery.Select("id, name").From("staging")

	_, err := dbquery.Insert().Into("users").Fields("id", "name").
		Values(1, "alice").
		FromSelect(src).
		ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mix")

	_, err = dbquery.Insert().Into("users").
		Set("name", "alice").
		FromSelect(src).
		ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mix")

	_, err = dbquery.Insert().Into("users").Fields("id", "name").
		FromSelect(src).
		Values(1, "alice").
		ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mix")

	_, err = dbquery.Insert().Into("users").Fields("name").
		FromSelect(src).
		Set("name", "alice").
		ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mix")
}

func TestEmptyConflictUpdateRejected(t *testing.T) {
	_, err := dbquery.Insert().Into("users").
		Set("name", "alice").
		OnConflict("id").DoUpdate(nil).
		ToSQL("pgsql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one assignment")

	_, err = dbquery.Insert().Into("users").
		Set("name", "alice").
		OnDuplicateKeyUpdate(map[string]any{}).
		ToSQL("mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one assignment")
}

func TestEmptyInRejected(t *testing.T) {
	for _, dialect := range dialects {
		_, err := dbquery.Select("id").From("users").
			Where("status").In().
			ToSQL(dialect)
		require.Error(t, err, dialect)
		assert.Contains(t, err.Error(), "IN requires at least one value")
	}
}

func TestJSONNotLike(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		WhereJSON("meta", "$.name").NotLike("a%").
		ToSQL("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE json_extract(meta, '$.name') NOT LIKE ?", q.SQL())
	assert.Equal(t, []any{"a%"}, q.Bindings())
}
