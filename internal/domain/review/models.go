package review

import "time"

const (
	StatusDraft            = "draft"
	StatusSelfInProgress   = "self_in_progress"
	StatusManagerInReview  = "manager_in_review"
	StatusShared           = "shared"
	StatusFinalized        = "finalized"

	GoalNotAchieved       = "not_achieved"
	GoalPartiallyAchieved = "partially_achieved"
	GoalAlmostDone        = "almost_done"
	GoalAchieved          = "achieved"

	AuthorRoleEmployee = "EMPLOYEE"
	AuthorRoleManager  = "MANAGER"

	MinRating = 1
	MaxRating = 4
)

// Review is the in-memory document for one (reviewee, cycle, reviewer)
// triple. The list fields are stored as serialized JSON columns on the
// review row and rehydrated once per editing session.
type Review struct {
	ID              string           `json:"id"`
	CycleID         string           `json:"cycleId"`
	EmployeeID      string           `json:"employeeId"`
	ManagerID       string           `json:"managerId"`
	Status          string           `json:"status"`
	Competencies    []Competency     `json:"competencies"`
	AssignedGoals   []AssignedGoal   `json:"assignedGoals"`
	SelfReflections []SelfReflection `json:"selfReflections"`
	SummaryComments SummaryComments  `json:"summaryComments"`

	// Set when rehydration assigned ids the stored row does not have
	// yet. Comments key threads by these ids, so the lists must be
	// written back before the ids are handed out.
	CompetencyIDsAssigned bool `json:"-"`
	GoalIDsAssigned       bool `json:"-"`
}

// Competency carries a stable surrogate id so comment threads survive a
// rename. Rows written before ids existed get one backfilled on load.
type Competency struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	SelfRating    *int   `json:"selfRating,omitempty"`
	ManagerRating *int   `json:"managerRating,omitempty"`
}

type AssignedGoal struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	DueDate       string `json:"dueDate,omitempty"`
	SelfRating    *int   `json:"selfRating,omitempty"`
	ManagerRating *int   `json:"managerRating,omitempty"`
}

type SelfReflection struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SummaryComments struct {
	EmployeeComment string `json:"employeeComment,omitempty"`
	ManagerComment  string `json:"managerComment,omitempty"`
}

// Comment threads are append-only. Competency threads are keyed by the
// competency surrogate id; goal threads by the goal id.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorRole string    `json:"authorRole"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

var goalStatuses = map[string]bool{
	GoalNotAchieved:       true,
	GoalPartiallyAchieved: true,
	GoalAlmostDone:        true,
	GoalAchieved:          true,
}

func ValidGoalStatus(status string) bool {
	return goalStatuses[status]
}

// ValidRating reports whether a submitted rating is an integer inside the
// four-point scale. Absence is expressed by a nil pointer, never by zero.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Clone deep-copies the document so a render snapshot cannot alias the
// session's live lists.
func (r *Review) Clone() *Review {
	copied := *r
	copied.Competencies = make([]Competency, len(r.Competencies))
	for i, c := range r.Competencies {
		c.SelfRating = cloneRating(c.SelfRating)
		c.ManagerRating = cloneRating(c.ManagerRating)
		copied.Competencies[i] = c
	}
	copied.AssignedGoals = make([]AssignedGoal, len(r.AssignedGoals))
	for i, g := range r.AssignedGoals {
		g.SelfRating = cloneRating(g.SelfRating)
		g.ManagerRating = cloneRating(g.ManagerRating)
		copied.AssignedGoals[i] = g
	}
	copied.SelfReflections = append([]SelfReflection(nil), r.SelfReflections...)
	return &copied
}

func cloneRating(rating *int) *int {
	if rating == nil {
		return nil
	}
	value := *rating
	return &value
}
