package pgsql_test

import (
	"strings"
	"testing"

	"github.com/jardisPsr/dbquery"
	"github.com/jardisPsr/dbquery/pgsql"
)

func TestNew(t *testing.T) {
	r := pgsql.New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.Name() != "pgsql" {
		t.Errorf("Name() = %q, want %q", r.Name(), "pgsql")
	}
}

func TestRender_UpsertDoUpdate(t *testing.T) {
	q, err := dbquery.Insert().Into("t").
		Set("email", "a@b.com").
		OnConflict("email").DoUpdate(map[string]any{"email": "a@b.com"}).
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `INSERT INTO t ("email") VALUES (?) ON CONFLICT ("email") DO UPDATE SET "email" = ?`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
	bindings := q.Bindings()
	if len(bindings) != 2 || bindings[0] != "a@b.com" || bindings[1] != "a@b.com" {
		t.Errorf("Bindings = %v", bindings)
	}
}

func TestRender_UpsertDoNothing(t *testing.T) {
	q, err := dbquery.Insert().Into("t").
		Set("email", "a@b.com").
		OnConflict("email").DoNothing().
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `INSERT INTO t ("email") VALUES (?) ON CONFLICT ("email") DO NOTHING`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_OrIgnoreMapsToConflictNothing(t *testing.T) {
	q, err := dbquery.Insert().Into("t").Set("email", "a@b.com").OrIgnore().Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `INSERT INTO t ("email") VALUES (?) ON CONFLICT DO NOTHING`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_OrReplaceRejected(t *testing.T) {
	_, err := dbquery.Insert().Into("t").Set("email", "a@b.com").OrReplace().Render(pgsql.New())
	if err == nil {
		t.Fatal("expected error for REPLACE INTO on pgsql")
	}
	if !strings.Contains(err.Error(), "pgsql") || !strings.Contains(err.Error(), "REPLACE INTO") {
		t.Errorf("error = %v, want dialect-naming REPLACE error", err)
	}
}

func TestRender_DuplicateKeyRejected(t *testing.T) {
	_, err := dbquery.Insert().Into("t").
		Set("email", "a@b.com").
		OnDuplicateKeyUpdate(map[string]any{"email": "a@b.com"}).
		Render(pgsql.New())
	if err == nil {
		t.Fatal("expected error for ON DUPLICATE KEY UPDATE on pgsql")
	}
	if !strings.Contains(err.Error(), "ON DUPLICATE KEY UPDATE") {
		t.Errorf("error = %v", err)
	}
}

func TestRender_NumberedPlaceholders(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		Where("status").Equals("active").
		And("age").Greater(18).
		Render(pgsql.New(pgsql.NumberedPlaceholders()))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "SELECT id FROM users WHERE status = $1 AND age > $2"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
	bindings := q.Bindings()
	if len(bindings) != 2 || bindings[0] != "active" || bindings[1] != 18 {
		t.Errorf("Bindings = %v, want [active 18]", bindings)
	}
}

func TestRender_FullJoin(t *testing.T) {
	q, err := dbquery.Select("*").From("a").
		FullJoin("b").On("a.id").Equals(dbquery.Col("b.id")).
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "SELECT * FROM a FULL JOIN b ON a.id = b.id"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_UpdateOrderLimitRejected(t *testing.T) {
	_, err := dbquery.Update("users").Set("name", "x").Limit(5).Render(pgsql.New())
	if err == nil {
		t.Fatal("expected error for LIMIT on UPDATE for pgsql")
	}
	if !strings.Contains(err.Error(), "pgsql") {
		t.Errorf("error = %v, want dialect-naming error", err)
	}
}

func TestRender_UpdateJoinRejected(t *testing.T) {
	_, err := dbquery.Update("users").
		Join("orders", "o").On("o.user_id").Equals(dbquery.Col("users.id")).
		Set("flagged", true).
		Render(pgsql.New())
	if err == nil {
		t.Fatal("expected error for JOIN in UPDATE on pgsql")
	}
	if !strings.Contains(err.Error(), "JOIN in UPDATE") {
		t.Errorf("error = %v", err)
	}
}

func TestRender_JSONPredicates(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		WhereJSON("meta", "$.role").Equals("admin").
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := "SELECT id FROM users WHERE (meta #>> '{role}') = ?"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}

	q, err = dbquery.Select("id").From("users").
		WhereJSON("meta", "$.prefs").Contains(`{"beta":true}`).
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected = "SELECT id FROM users WHERE (meta #> '{prefs}') @> ?::jsonb"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}

	q, err = dbquery.Select("id").From("users").
		WhereJSON("meta", "$").Contains(`{"beta":true}`).
		Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected = "SELECT id FROM users WHERE meta @> ?::jsonb"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_GroupsFrameGated(t *testing.T) {
	b := dbquery.Select("name").
		SelectWindow("SUM", "running", "amount").
		WindowOrderBy("id", "ASC").
		FrameGroups("UNBOUNDED PRECEDING", "CURRENT ROW").
		EndWindow().
		From("ledger")

	q, err := b.Render(pgsql.New())
	if err != nil {
		t.Fatalf("Render() on 13 error = %v", err)
	}
	expected := "SELECT name, SUM(amount) OVER (ORDER BY id ASC GROUPS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS running FROM ledger"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}

	_, err = b.Render(pgsql.New(pgsql.WithVersion("10")))
	if err == nil {
		t.Fatal("expected error for GROUPS frame on pgsql 10")
	}
	if !strings.Contains(err.Error(), "GROUPS frame") {
		t.Errorf("error = %v", err)
	}
}
