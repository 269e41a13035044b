package review

// Rating aggregation. All functions are pure over the current in-memory
// lists; a nil result means "no data", which is distinct from any numeric
// score. Zero is never returned for an unrated category.

type RatingField int

const (
	RatingSelf RatingField = iota
	RatingManager
)

func (f RatingField) String() string {
	if f == RatingManager {
		return "managerRating"
	}
	return "selfRating"
}

func CompetencyAverage(items []Competency, field RatingField) *float64 {
	values := make([]int, 0, len(items))
	for _, item := range items {
		if rating := pick(item.SelfRating, item.ManagerRating, field); rating != nil {
			values = append(values, *rating)
		}
	}
	return mean(values)
}

func GoalAverage(items []AssignedGoal, field RatingField) *float64 {
	values := make([]int, 0, len(items))
	for _, item := range items {
		if rating := pick(item.SelfRating, item.ManagerRating, field); rating != nil {
			values = append(values, *rating)
		}
	}
	return mean(values)
}

// CombinedAverage blends the two category averages 50/50. Partial data
// never yields a partial score: if either category has no rated item the
// combined result is nil.
func CombinedAverage(competencies []Competency, goals []AssignedGoal, field RatingField) *float64 {
	compAvg := CompetencyAverage(competencies, field)
	goalAvg := GoalAverage(goals, field)
	if compAvg == nil || goalAvg == nil {
		return nil
	}
	combined := (*compAvg + *goalAvg) / 2
	return &combined
}

// ItemWeight is the display weight of one item within its category,
// 100/count. An empty category weighs 0 rather than dividing by zero.
func ItemWeight(count int) float64 {
	if count <= 0 {
		return 0
	}
	return 100 / float64(count)
}

var ratingLabels = map[int]string{
	1: "least effective",
	2: "somewhat effective",
	3: "effective",
	4: "most effective",
}

// RatingLabel picks the qualitative label for an average by nearest-integer
// rounding. The numeric average itself is shown unrounded to two decimals;
// only the label selection rounds.
func RatingLabel(avg float64) string {
	rounded := int(avg + 0.5)
	if rounded < MinRating {
		rounded = MinRating
	}
	if rounded > MaxRating {
		rounded = MaxRating
	}
	return ratingLabels[rounded]
}

func pick(self, manager *int, field RatingField) *int {
	if field == RatingManager {
		return manager
	}
	return self
}

func mean(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := float64(sum) / float64(len(values))
	return &avg
}
