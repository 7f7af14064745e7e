package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectToSQL(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id", "name").
		From("leagues").
		Where(Eq("id", int64(42))).
		OrderBy("id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT id, name FROM leagues WHERE id = $1 ORDER BY id ASC LIMIT 1"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(42)}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectInCondition(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("team_id").
		From("league_standings").
		Where(Eq("league_id", int64(7)), In("team_id", int64(1), int64(2))).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT team_id FROM league_standings WHERE league_id = $1 AND team_id IN ($2, $3)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertModelWithConflictSuffix(t *testing.T) {
	t.Parallel()

	type row struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
		Skip string `db:"-"`
	}

	sql, args, err := InsertModel("teams", row{ID: 5, Name: "Castle FC"}, "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "INSERT INTO teams (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestUpdateToSQL(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("gameweek_snapshots").
		Set("final", true).
		Where(Eq("team_id", int64(3)), Eq("gameweek", 12)).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "UPDATE gameweek_snapshots SET final = $1 WHERE team_id = $2 AND gameweek = $3"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectRequiresTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}
