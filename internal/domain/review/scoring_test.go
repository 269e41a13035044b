package review

import "testing"

func intp(v int) *int { return &v }

func TestCompetencyAverageEmptyIsNil(t *testing.T) {
	if avg := CompetencyAverage(nil, RatingSelf); avg != nil {
		t.Fatalf("expected nil average for empty list, got %v", *avg)
	}
	// Unrated items do not count as zero.
	items := []Competency{{Name: "Ownership"}, {Name: "Communication"}}
	if avg := CompetencyAverage(items, RatingSelf); avg != nil {
		t.Fatalf("expected nil average when no item is rated, got %v", *avg)
	}
}

func TestCompetencyAverageSingleItem(t *testing.T) {
	items := []Competency{{Name: "Ownership", SelfRating: intp(3)}}
	avg := CompetencyAverage(items, RatingSelf)
	if avg == nil || *avg != 3 {
		t.Fatalf("expected average 3, got %v", avg)
	}
}

func TestAveragesSkipUnratedItems(t *testing.T) {
	items := []Competency{
		{Name: "Ownership", SelfRating: intp(3)},
		{Name: "Communication", SelfRating: intp(4)},
		{Name: "Craft"},
	}
	avg := CompetencyAverage(items, RatingSelf)
	if avg == nil || *avg != 3.5 {
		t.Fatalf("expected average 3.5 over rated items only, got %v", avg)
	}
}

func TestCombinedAverageBlendsFiftyFifty(t *testing.T) {
	competencies := []Competency{
		{Name: "Ownership", SelfRating: intp(3)},
		{Name: "Communication", SelfRating: intp(4)},
	}
	goals := []AssignedGoal{{ID: "g1", Title: "Ship", SelfRating: intp(4)}}

	compAvg := CompetencyAverage(competencies, RatingSelf)
	if compAvg == nil || *compAvg != 3.5 {
		t.Fatalf("expected competency average 3.5, got %v", compAvg)
	}
	goalAvg := GoalAverage(goals, RatingSelf)
	if goalAvg == nil || *goalAvg != 4 {
		t.Fatalf("expected goal average 4, got %v", goalAvg)
	}
	combined := CombinedAverage(competencies, goals, RatingSelf)
	if combined == nil || *combined != 3.75 {
		t.Fatalf("expected combined average 3.75, got %v", combined)
	}
}

func TestCombinedAverageNilWhenOneCategoryUnrated(t *testing.T) {
	competencies := []Competency{
		{Name: "Ownership", SelfRating: intp(3)},
		{Name: "Communication", SelfRating: intp(4)},
	}
	goals := []AssignedGoal{{ID: "g1", Title: "Ship"}}
	if combined := CombinedAverage(competencies, goals, RatingSelf); combined != nil {
		t.Fatalf("expected nil combined average with unrated goals, got %v", *combined)
	}
}

func TestCombinedAverageKeepsFieldsSeparate(t *testing.T) {
	competencies := []Competency{{Name: "Ownership", SelfRating: intp(1), ManagerRating: intp(4)}}
	goals := []AssignedGoal{{ID: "g1", Title: "Ship", ManagerRating: intp(2)}}
	if combined := CombinedAverage(competencies, goals, RatingSelf); combined != nil {
		t.Fatalf("expected nil self combined, got %v", *combined)
	}
	combined := CombinedAverage(competencies, goals, RatingManager)
	if combined == nil || *combined != 3 {
		t.Fatalf("expected manager combined 3, got %v", combined)
	}
}

func TestItemWeight(t *testing.T) {
	if w := ItemWeight(4); w != 25.0 {
		t.Fatalf("expected weight 25.0 for 4 items, got %v", w)
	}
	if w := ItemWeight(0); w != 0 {
		t.Fatalf("expected weight 0 for empty category, got %v", w)
	}
	if w := ItemWeight(3); w < 33.33 || w > 33.34 {
		t.Fatalf("expected weight ~33.33 for 3 items, got %v", w)
	}
}

func TestRatingLabelRoundsToNearest(t *testing.T) {
	cases := map[float64]string{
		1.0:  "least effective",
		2.4:  "somewhat effective",
		2.5:  "effective",
		3.49: "effective",
		3.75: "most effective",
		4.0:  "most effective",
	}
	for avg, want := range cases {
		if got := RatingLabel(avg); got != want {
			t.Fatalf("RatingLabel(%v) = %q, want %q", avg, got, want)
		}
	}
}

func TestValidRating(t *testing.T) {
	for _, rating := range []int{1, 2, 3, 4} {
		if !ValidRating(rating) {
			t.Fatalf("expected %d to be valid", rating)
		}
	}
	for _, rating := range []int{0, -1, 5, 100} {
		if ValidRating(rating) {
			t.Fatalf("expected %d to be rejected", rating)
		}
	}
}
