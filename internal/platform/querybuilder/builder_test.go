package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "participant_id").
		From("draft_allocations").
		Where(Eq("draft_id", "main"), IsNull("released_at")).
		OrderBy("overall_pick").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, participant_id FROM draft_allocations WHERE draft_id = $1 AND released_at IS NULL ORDER BY overall_pick LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "main" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InAndForUpdate(t *testing.T) {
	query, args, err := Select("*").
		From("participants").
		Where(In("id", []string{"a", "b"})).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM participants WHERE id IN ($1, $2) FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, _, err := Select("id").From("players").Where(In[string]("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM players WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestUpdateBuilder_ConditionalWrite(t *testing.T) {
	query, args, err := Update("chips").
		Set("used", true).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "c1"), Expr("used = ?", false)).
		Returning("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE chips SET used = $1, updated_at = NOW() WHERE id = $2 AND used = $3 RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != true || args[1] != "c1" || args[2] != false {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := Update("players").Set("available", true).ToSQL(); err == nil {
		t.Fatalf("expected error for update without where")
	}
}
