package review

import "context"

// Row is the persisted shape of a review: identity columns plus the
// serialized list fields, each paired with the sequence number of the
// last applied write.
type Row struct {
	ID              string
	CycleID         string
	EmployeeID      string
	ManagerID       string
	Status          string
	Competencies    string
	AssignedGoals   string
	SelfReflections string
	EmployeeSummary string
	ManagerSummary  string
}

// The replace writes are tagged with the writing session's id and a
// per-field sequence number. A write is stale, and gets discarded, only
// when the same writer already applied a newer sequence; writes from a
// different session always land (last writer wins).
type StoreAPI interface {
	GetReview(ctx context.Context, reviewID string) (Row, error)
	ReplaceCompetencies(ctx context.Context, reviewID, encoded, writer string, seq uint64) error
	ReplaceGoals(ctx context.Context, reviewID, encoded, writer string, seq uint64) error
	ReplaceReflections(ctx context.Context, reviewID, encoded, writer string, seq uint64) error
	UpdateEmployeeSummary(ctx context.Context, reviewID, text, writer string, seq uint64) error
	UpdateManagerSummary(ctx context.Context, reviewID, text, writer string, seq uint64) error
	ListCompetencyComments(ctx context.Context, reviewID, competencyKey string) ([]Comment, error)
	CreateCompetencyComment(ctx context.Context, reviewID, competencyKey string, comment Comment) error
	ListGoalComments(ctx context.Context, reviewID, goalID string) ([]Comment, error)
	CreateGoalComment(ctx context.Context, reviewID, goalID string, comment Comment) error
	ListReviewsForUser(ctx context.Context, userID string) ([]Row, error)
	CreateReview(ctx context.Context, row Row) error
}
