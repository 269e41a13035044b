package review

import "testing"

func TestParseCompetenciesRoundTrip(t *testing.T) {
	raw := `[{"id":"c1","name":"Ownership","description":"Sees it through","selfRating":3},{"id":"c2","name":"Communication","description":""}]`
	items := ParseCompetencies(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 competencies, got %d", len(items))
	}
	if items[0].SelfRating == nil || *items[0].SelfRating != 3 {
		t.Fatalf("expected selfRating 3, got %v", items[0].SelfRating)
	}
	if items[1].SelfRating != nil {
		t.Fatal("absent rating must stay nil, not zero")
	}

	encoded := EncodeList(items)
	again := ParseCompetencies(encoded)
	if EncodeList(again) != encoded {
		t.Fatalf("round trip not stable:\n%s\n%s", encoded, EncodeList(again))
	}
}

func TestParseMalformedListDefaultsToEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"name":"x"}`, "null", ""} {
		items := ParseGoals(raw)
		if items == nil || len(items) != 0 {
			t.Fatalf("expected empty list for %q, got %v", raw, items)
		}
	}
}

func TestGoalIDBackfill(t *testing.T) {
	raw := `[{"title":"Ship the pipeline","status":"not_achieved"},{"id":"g2","title":"Mentor","status":"achieved"}]`
	items := ParseGoals(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(items))
	}
	if items[0].ID == "" {
		t.Fatal("missing goal id should be backfilled")
	}
	if items[1].ID != "g2" {
		t.Fatalf("existing goal id must be preserved, got %s", items[1].ID)
	}
}

func TestCompetencyIDBackfill(t *testing.T) {
	items := ParseCompetencies(`[{"name":"Ownership","description":""}]`)
	if len(items) != 1 || items[0].ID == "" {
		t.Fatalf("competency should get a surrogate id, got %+v", items)
	}
}

func TestBackfilledIDStableForSession(t *testing.T) {
	doc := Rehydrate(Row{
		ID:            "r1",
		AssignedGoals: `[{"title":"Ship","status":"not_achieved"}]`,
	})
	first := doc.AssignedGoals[0].ID
	if first == "" {
		t.Fatal("expected backfilled id")
	}
	// Rendering again must not reassign the id.
	if doc.Clone().AssignedGoals[0].ID != first {
		t.Fatal("snapshot changed the backfilled id")
	}
	if doc.AssignedGoals[0].ID != first {
		t.Fatal("id not stable across renders")
	}
}

func TestCloneDoesNotAliasRatings(t *testing.T) {
	doc := Rehydrate(Row{
		ID:           "r1",
		Competencies: `[{"id":"c1","name":"Ownership","description":"","selfRating":2}]`,
	})
	snapshot := doc.Clone()
	*snapshot.Competencies[0].SelfRating = 4
	if *doc.Competencies[0].SelfRating != 2 {
		t.Fatal("clone aliases the live document")
	}
}
