package review

import (
	"context"
	"fmt"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Store() StoreAPI {
	return s.store
}

// Load rehydrates the serialized row into the in-memory document. This
// happens once per review open; all edits afterwards operate on the
// in-memory lists by index.
func (s *Service) Load(ctx context.Context, reviewID string) (*Review, error) {
	row, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("load review %s: %w", reviewID, err)
	}
	return Rehydrate(row), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Review, error) {
	rows, err := s.store.ListReviewsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	reviews := make([]*Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, Rehydrate(row))
	}
	return reviews, nil
}

func (s *Service) Create(ctx context.Context, doc *Review) error {
	return s.store.CreateReview(ctx, Row{
		ID:              doc.ID,
		CycleID:         doc.CycleID,
		EmployeeID:      doc.EmployeeID,
		ManagerID:       doc.ManagerID,
		Status:          doc.Status,
		Competencies:    EncodeList(doc.Competencies),
		AssignedGoals:   EncodeList(doc.AssignedGoals),
		SelfReflections: EncodeList(doc.SelfReflections),
		EmployeeSummary: doc.SummaryComments.EmployeeComment,
		ManagerSummary:  doc.SummaryComments.ManagerComment,
	})
}

func Rehydrate(row Row) *Review {
	competencies, compAssigned := parseCompetencies(row.Competencies)
	goals, goalAssigned := parseGoals(row.AssignedGoals)
	return &Review{
		ID:              row.ID,
		CycleID:         row.CycleID,
		EmployeeID:      row.EmployeeID,
		ManagerID:       row.ManagerID,
		Status:          row.Status,
		Competencies:    competencies,
		AssignedGoals:   goals,
		SelfReflections: ParseReflections(row.SelfReflections),
		SummaryComments: SummaryComments{
			EmployeeComment: row.EmployeeSummary,
			ManagerComment:  row.ManagerSummary,
		},
		CompetencyIDsAssigned: compAssigned,
		GoalIDsAssigned:       goalAssigned,
	}
}

// Summary is what the screen renders above the lists. It is recomputed
// from the in-memory document on every request, never read back from the
// server.
type Summary struct {
	CompetencyWeight     float64  `json:"competencyWeight"`
	GoalWeight           float64  `json:"goalWeight"`
	SelfCompetencyAvg    *float64 `json:"selfCompetencyAvg"`
	SelfGoalAvg          *float64 `json:"selfGoalAvg"`
	SelfCombined         *float64 `json:"selfCombined"`
	SelfLabel            string   `json:"selfLabel,omitempty"`
	ManagerCompetencyAvg *float64 `json:"managerCompetencyAvg"`
	ManagerGoalAvg       *float64 `json:"managerGoalAvg"`
	ManagerCombined      *float64 `json:"managerCombined"`
	ManagerLabel         string   `json:"managerLabel,omitempty"`
}

func Summarize(doc *Review) Summary {
	summary := Summary{
		CompetencyWeight:     ItemWeight(len(doc.Competencies)),
		GoalWeight:           ItemWeight(len(doc.AssignedGoals)),
		SelfCompetencyAvg:    CompetencyAverage(doc.Competencies, RatingSelf),
		SelfGoalAvg:          GoalAverage(doc.AssignedGoals, RatingSelf),
		SelfCombined:         CombinedAverage(doc.Competencies, doc.AssignedGoals, RatingSelf),
		ManagerCompetencyAvg: CompetencyAverage(doc.Competencies, RatingManager),
		ManagerGoalAvg:       GoalAverage(doc.AssignedGoals, RatingManager),
		ManagerCombined:      CombinedAverage(doc.Competencies, doc.AssignedGoals, RatingManager),
	}
	if summary.SelfCombined != nil {
		summary.SelfLabel = RatingLabel(*summary.SelfCombined)
	}
	if summary.ManagerCombined != nil {
		summary.ManagerLabel = RatingLabel(*summary.ManagerCombined)
	}
	return summary
}
