package sqlite_test

import (
	"strings"
	"testing"

	"github.com/jardisPsr/dbquery"
	"github.com/jardisPsr/dbquery/sqlite"
)

func TestNew(t *testing.T) {
	r := sqlite.New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.Name() != "sqlite" {
		t.Errorf("Name() = %q, want %q", r.Name(), "sqlite")
	}
}

func TestRender_SimpleDelete(t *testing.T) {
	q, err := dbquery.Delete().From("users").Where("id").Equals(5).Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "DELETE FROM users WHERE id = ?"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
	bindings := q.Bindings()
	if len(bindings) != 1 || bindings[0] != 5 {
		t.Errorf("Bindings = %v, want [5]", bindings)
	}
	if q.Type() != "DELETE" {
		t.Errorf("Type = %q, want DELETE", q.Type())
	}
}

func TestRender_InsertOrIgnore(t *testing.T) {
	q, err := dbquery.Insert().Into("t").Set("email", "a@b.com").OrIgnore().Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `INSERT OR IGNORE INTO t ("email") VALUES (?)`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_InsertOrReplace(t *testing.T) {
	q, err := dbquery.Insert().Into("t").Set("email", "a@b.com").OrReplace().Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `INSERT OR REPLACE INTO t ("email") VALUES (?)`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_UpsertDoUpdate(t *testing.T) {
	q, err := dbquery.Insert().Into("t").
		Set("email", "a@b.com").
		OnConflict("email").DoUpdate(map[string]any{"email": "a@b.com"}).
		Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `INSERT INTO t ("email") VALUES (?) ON CONFLICT ("email") DO UPDATE SET "email" = ?`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_UpdateOrIgnore(t *testing.T) {
	q, err := dbquery.Update("users").Ignore().Set("name", "x").Where("id").Equals(1).Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `UPDATE OR IGNORE users SET "name" = ? WHERE id = ?`
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_DeleteLimitRejected(t *testing.T) {
	_, err := dbquery.Delete().From("logs").OrderBy("id", "ASC").Limit(100).Render(sqlite.New())
	if err == nil {
		t.Fatal("expected error for ORDER BY / LIMIT on DELETE for sqlite")
	}
	if !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("error = %v, want dialect-naming error", err)
	}
}

func TestRender_WindowVersionGates(t *testing.T) {
	b := dbquery.Select("name").
		SelectWindow("ROW_NUMBER", "rn").PartitionBy("dept").WindowOrderBy("salary", "DESC").EndWindow().
		From("employees")

	q, err := b.Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() on default version error = %v", err)
	}
	expected := "SELECT name, ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) AS rn FROM employees"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}

	_, err = b.Render(sqlite.New(sqlite.WithVersion("3.24")))
	if err == nil {
		t.Fatal("expected error for window functions on sqlite 3.24")
	}
}

func TestRender_FullJoinVersionGate(t *testing.T) {
	b := dbquery.Select("*").From("a").FullJoin("b").On("a.id").Equals(dbquery.Col("b.id"))

	if _, err := b.Render(sqlite.New()); err != nil {
		t.Fatalf("Render() on 3.39 error = %v", err)
	}
	if _, err := b.Render(sqlite.New(sqlite.WithVersion("3.38"))); err == nil {
		t.Fatal("expected error for FULL JOIN on sqlite 3.38")
	}
}

func TestRender_JSONExtract(t *testing.T) {
	q, err := dbquery.Select("id").From("users").
		WhereJSON("meta", "$.role").Equals("admin").
		Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := "SELECT id FROM users WHERE json_extract(meta, '$.role') = ?"
	if q.SQL() != expected {
		t.Errorf("SQL = %q, want %q", q.SQL(), expected)
	}
}

func TestRender_JSONContainsRejected(t *testing.T) {
	_, err := dbquery.Select("id").From("users").
		WhereJSON("meta", "$.tags").Contains(`["go"]`).
		Render(sqlite.New())
	if err == nil {
		t.Fatal("expected error for JSON containment on sqlite")
	}
	if !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("error = %v, want dialect-naming error", err)
	}
}
