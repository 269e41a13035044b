package review

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Rehydration decodes the serialized list columns into in-memory lists.
// A malformed column is logged and degrades to an empty list so one bad
// row never blocks the editing screen.

func ParseCompetencies(raw string) []Competency {
	items, _ := parseCompetencies(raw)
	return items
}

func ParseGoals(raw string) []AssignedGoal {
	items, _ := parseGoals(raw)
	return items
}

func parseCompetencies(raw string) ([]Competency, bool) {
	items := parseList[Competency](raw, "competencies")
	assigned := false
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
			assigned = true
		}
	}
	return items, assigned
}

func parseGoals(raw string) ([]AssignedGoal, bool) {
	items := parseList[AssignedGoal](raw, "assignedGoals")
	assigned := false
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
			assigned = true
		}
	}
	return items, assigned
}

func ParseReflections(raw string) []SelfReflection {
	return parseList[SelfReflection](raw, "selfReflections")
}

func parseList[T any](raw, field string) []T {
	if raw == "" {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("review list parse failed, defaulting to empty", "field", field, "err", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func EncodeList(items any) string {
	encoded, err := json.Marshal(items)
	if err != nil {
		slog.Warn("review list encode failed", "err", err)
		return "[]"
	}
	return string(encoded)
}
