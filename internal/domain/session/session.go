// Package session holds the live editing state for an open review: the
// rehydrated in-memory document, the policy guard in front of every
// mutation, and the per-field debounced flushes that push the document
// back to storage list-by-list.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"perfdesk/internal/domain/notice"
	"perfdesk/internal/domain/review"
	"perfdesk/internal/platform/debounce"
	"perfdesk/internal/platform/metrics"
)

const (
	fieldCompetencies    = "competencies"
	fieldGoals           = "assignedGoals"
	fieldReflections     = "selfReflections"
	fieldEmployeeSummary = "employeeSummary"
	fieldManagerSummary  = "managerSummary"
)

type Session struct {
	ReviewID string
	UserID   string
	Role     review.Role

	// writer tags every flush from this session so the store can tell
	// this session's out-of-order flushes apart from another session's
	// legitimate writes.
	writer string

	mu       sync.Mutex
	doc      *review.Review
	store    review.StoreAPI
	comments *review.CommentStore
	deb      *debounce.Coordinator
	notices  *notice.Center
	metrics  *metrics.Collector
}

// Every mutation follows the same shape: policy check, validation,
// optimistic in-memory update, then a debounced flush of the whole list
// the field lives in. The flush carries the list as it is at fire time,
// not a diff.

func (s *Session) SetCompetencySelfRating(index, rating int) error {
	return s.setCompetencyRating(index, rating, review.FieldSelfRating)
}

func (s *Session) SetCompetencyManagerRating(index, rating int) error {
	return s.setCompetencyRating(index, rating, review.FieldManagerRating)
}

func (s *Session) setCompetencyRating(index, rating int, field review.Field) error {
	if !review.Allowed(field, s.Role) {
		return review.ErrNotPermitted
	}
	if !review.ValidRating(rating) {
		return review.ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Competencies) {
		return review.ErrIndexOutOfRange
	}
	value := rating
	if field == review.FieldManagerRating {
		s.doc.Competencies[index].ManagerRating = &value
	} else {
		s.doc.Competencies[index].SelfRating = &value
	}
	s.scheduleLocked(fieldCompetencies)
	return nil
}

func (s *Session) AddCompetency(name, description string) error {
	if !review.Allowed(review.FieldCompetencyEdit, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Competencies = append(s.doc.Competencies, review.Competency{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	})
	s.scheduleLocked(fieldCompetencies)
	return nil
}

func (s *Session) UpdateCompetency(index int, name, description string) error {
	if !review.Allowed(review.FieldCompetencyEdit, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Competencies) {
		return review.ErrIndexOutOfRange
	}
	s.doc.Competencies[index].Name = name
	s.doc.Competencies[index].Description = description
	s.scheduleLocked(fieldCompetencies)
	return nil
}

func (s *Session) RemoveCompetency(index int) error {
	if !review.Allowed(review.FieldCompetencyEdit, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Competencies) {
		return review.ErrIndexOutOfRange
	}
	s.doc.Competencies = append(s.doc.Competencies[:index], s.doc.Competencies[index+1:]...)
	s.scheduleLocked(fieldCompetencies)
	return nil
}

func (s *Session) SetGoalSelfRating(index, rating int) error {
	return s.setGoalRating(index, rating, review.FieldSelfRating)
}

func (s *Session) SetGoalManagerRating(index, rating int) error {
	return s.setGoalRating(index, rating, review.FieldManagerRating)
}

func (s *Session) setGoalRating(index, rating int, field review.Field) error {
	if !review.Allowed(field, s.Role) {
		return review.ErrNotPermitted
	}
	if !review.ValidRating(rating) {
		return review.ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.AssignedGoals) {
		return review.ErrIndexOutOfRange
	}
	value := rating
	if field == review.FieldManagerRating {
		s.doc.AssignedGoals[index].ManagerRating = &value
	} else {
		s.doc.AssignedGoals[index].SelfRating = &value
	}
	s.scheduleLocked(fieldGoals)
	return nil
}

func (s *Session) AddGoal(title, description, status, dueDate string) error {
	if !review.Allowed(review.FieldGoalEdit, s.Role) {
		return review.ErrNotPermitted
	}
	if status == "" {
		status = review.GoalNotAchieved
	}
	if !review.ValidGoalStatus(status) {
		return review.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.AssignedGoals = append(s.doc.AssignedGoals, review.AssignedGoal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
	})
	s.scheduleLocked(fieldGoals)
	return nil
}

func (s *Session) UpdateGoal(index int, title, description, status, dueDate string) error {
	if !review.Allowed(review.FieldGoalEdit, s.Role) {
		return review.ErrNotPermitted
	}
	if status != "" && !review.ValidGoalStatus(status) {
		return review.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.AssignedGoals) {
		return review.ErrIndexOutOfRange
	}
	goal := &s.doc.AssignedGoals[index]
	goal.Title = title
	goal.Description = description
	if status != "" {
		goal.Status = status
	}
	goal.DueDate = dueDate
	s.scheduleLocked(fieldGoals)
	return nil
}

func (s *Session) RemoveGoal(index int) error {
	if !review.Allowed(review.FieldGoalEdit, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.AssignedGoals) {
		return review.ErrIndexOutOfRange
	}
	s.doc.AssignedGoals = append(s.doc.AssignedGoals[:index], s.doc.AssignedGoals[index+1:]...)
	s.scheduleLocked(fieldGoals)
	return nil
}

func (s *Session) AddReflectionQuestion(question string) error {
	if !review.Allowed(review.FieldReflectionQuestion, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SelfReflections = append(s.doc.SelfReflections, review.SelfReflection{Question: question})
	s.scheduleLocked(fieldReflections)
	return nil
}

func (s *Session) UpdateReflectionQuestion(index int, question string) error {
	if !review.Allowed(review.FieldReflectionQuestion, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.SelfReflections) {
		return review.ErrIndexOutOfRange
	}
	s.doc.SelfReflections[index].Question = question
	s.scheduleLocked(fieldReflections)
	return nil
}

func (s *Session) RemoveReflection(index int) error {
	if !review.Allowed(review.FieldReflectionQuestion, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.SelfReflections) {
		return review.ErrIndexOutOfRange
	}
	s.doc.SelfReflections = append(s.doc.SelfReflections[:index], s.doc.SelfReflections[index+1:]...)
	s.scheduleLocked(fieldReflections)
	return nil
}

func (s *Session) SetReflectionAnswer(index int, answer string) error {
	if !review.Allowed(review.FieldReflectionAnswer, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.SelfReflections) {
		return review.ErrIndexOutOfRange
	}
	s.doc.SelfReflections[index].Answer = answer
	s.scheduleLocked(fieldReflections)
	return nil
}

// SetSummaryComment writes the summary comment owned by the session's
// role; each role can only touch its own.
func (s *Session) SetSummaryComment(text string) error {
	field := review.SummaryField(s.Role)
	if !review.Allowed(field, s.Role) {
		return review.ErrNotPermitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if field == review.FieldManagerSummary {
		s.doc.SummaryComments.ManagerComment = text
		s.scheduleLocked(fieldManagerSummary)
	} else {
		s.doc.SummaryComments.EmployeeComment = text
		s.scheduleLocked(fieldEmployeeSummary)
	}
	return nil
}

// Snapshot returns a deep copy of the in-memory document for rendering.
func (s *Session) Snapshot() *review.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Summary recomputes the aggregates from the current in-memory lists on
// every call; it never consults the server.
func (s *Session) Summary() review.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return review.Summarize(s.doc)
}

func (s *Session) CompetencyComments(ctx context.Context, index int) ([]review.Comment, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.doc.Competencies) {
		s.mu.Unlock()
		return nil, review.ErrIndexOutOfRange
	}
	comp := s.doc.Competencies[index]
	s.mu.Unlock()

	thread, err := s.comments.CompetencyThread(ctx, s.ReviewID, comp.ID)
	if err != nil {
		return nil, err
	}
	if len(thread) == 0 && comp.Name != "" {
		// Rows written before surrogate ids keyed threads by name.
		return s.comments.CompetencyThread(ctx, s.ReviewID, comp.Name)
	}
	return thread, nil
}

func (s *Session) AddCompetencyComment(ctx context.Context, index int, content string) (review.Comment, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.doc.Competencies) {
		s.mu.Unlock()
		return review.Comment{}, review.ErrIndexOutOfRange
	}
	competencyID := s.doc.Competencies[index].ID
	s.mu.Unlock()
	return s.comments.AddCompetencyComment(ctx, s.ReviewID, competencyID, s.UserID, s.Role, content)
}

func (s *Session) GoalComments(ctx context.Context, index int) ([]review.Comment, error) {
	goalID, err := s.goalID(index)
	if err != nil {
		return nil, err
	}
	return s.comments.GoalThread(ctx, s.ReviewID, goalID)
}

func (s *Session) AddGoalComment(ctx context.Context, index int, content string) (review.Comment, error) {
	goalID, err := s.goalID(index)
	if err != nil {
		return review.Comment{}, err
	}
	return s.comments.AddGoalComment(ctx, s.ReviewID, goalID, s.UserID, s.Role, content)
}

func (s *Session) goalID(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.AssignedGoals) {
		return "", review.ErrIndexOutOfRange
	}
	return s.doc.AssignedGoals[index].ID, nil
}

// Close flushes any armed timers synchronously so eviction or shutdown
// does not drop the last edits.
func (s *Session) Close() {
	s.deb.Close()
}

func (s *Session) scheduleLocked(field string) {
	s.metrics.FlushScheduled()
	s.deb.Schedule(field, func(seq uint64) {
		s.flush(field, seq)
	})
}

// flush snapshots the field's current in-memory value and issues exactly
// one replace write for it. On failure the value stays in memory and the
// next edit re-arms the timer; there is no retry queue.
func (s *Session) flush(field string, seq uint64) {
	s.mu.Lock()
	var payload string
	switch field {
	case fieldCompetencies:
		payload = review.EncodeList(s.doc.Competencies)
	case fieldGoals:
		payload = review.EncodeList(s.doc.AssignedGoals)
	case fieldReflections:
		payload = review.EncodeList(s.doc.SelfReflections)
	case fieldEmployeeSummary:
		payload = s.doc.SummaryComments.EmployeeComment
	case fieldManagerSummary:
		payload = s.doc.SummaryComments.ManagerComment
	}
	s.mu.Unlock()

	ctx := context.Background()
	var err error
	switch field {
	case fieldCompetencies:
		err = s.store.ReplaceCompetencies(ctx, s.ReviewID, payload, s.writer, seq)
	case fieldGoals:
		err = s.store.ReplaceGoals(ctx, s.ReviewID, payload, s.writer, seq)
	case fieldReflections:
		err = s.store.ReplaceReflections(ctx, s.ReviewID, payload, s.writer, seq)
	case fieldEmployeeSummary:
		err = s.store.UpdateEmployeeSummary(ctx, s.ReviewID, payload, s.writer, seq)
	case fieldManagerSummary:
		err = s.store.UpdateManagerSummary(ctx, s.ReviewID, payload, s.writer, seq)
	}

	scope := Key(s.ReviewID, s.UserID)
	switch {
	case errors.Is(err, review.ErrStaleWrite):
		// A newer flush for this field already landed; nothing lost.
		s.metrics.StaleWrite()
	case err != nil:
		slog.Warn("field flush failed", "review", s.ReviewID, "field", field, "err", err)
		s.metrics.FlushFailed()
		s.notices.Post(scope, field, notice.LevelError, "failed to save")
	default:
		s.metrics.FlushCompleted()
		s.notices.Post(scope, field, notice.LevelSaved, "saved")
	}
}
