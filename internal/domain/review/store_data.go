package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) GetReview(ctx context.Context, reviewID string) (Row, error) {
	var row Row
	err := s.DB.QueryRow(ctx, `
    SELECT id, cycle_id, employee_id, manager_id, status,
           competencies, assigned_goals, self_reflections,
           employee_summary, manager_summary
    FROM reviews
    WHERE id = $1
  `, reviewID).Scan(
		&row.ID, &row.CycleID, &row.EmployeeID, &row.ManagerID, &row.Status,
		&row.Competencies, &row.AssignedGoals, &row.SelfReflections,
		&row.EmployeeSummary, &row.ManagerSummary,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, err
	}
	return row, nil
}

func (s *Store) ListReviewsForUser(ctx context.Context, userID string) ([]Row, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, cycle_id, employee_id, manager_id, status,
           competencies, assigned_goals, self_reflections,
           employee_summary, manager_summary
    FROM reviews
    WHERE employee_id = $1 OR manager_id = $1
    ORDER BY created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.CycleID, &row.EmployeeID, &row.ManagerID, &row.Status,
			&row.Competencies, &row.AssignedGoals, &row.SelfReflections,
			&row.EmployeeSummary, &row.ManagerSummary,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) CreateReview(ctx context.Context, row Row) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO reviews (id, cycle_id, employee_id, manager_id, status,
                         competencies, assigned_goals, self_reflections,
                         employee_summary, manager_summary)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
  `, row.ID, row.CycleID, row.EmployeeID, row.ManagerID, row.Status,
		row.Competencies, row.AssignedGoals, row.SelfReflections,
		row.EmployeeSummary, row.ManagerSummary)
	return err
}

// The replace writes overwrite the whole serialized list with the
// session's current value. Each carries the writing session's id and a
// per-field sequence number; a write is discarded only when the same
// writer already applied a newer sequence, so a slow flush cannot land
// on top of a faster, newer one from the same session.

func (s *Store) ReplaceCompetencies(ctx context.Context, reviewID, encoded, writer string, seq uint64) error {
	return s.replaceField(ctx, reviewID, "competencies", encoded, writer, seq)
}

func (s *Store) ReplaceGoals(ctx context.Context, reviewID, encoded, writer string, seq uint64) error {
	return s.replaceField(ctx, reviewID, "assigned_goals", encoded, writer, seq)
}

func (s *Store) ReplaceReflections(ctx context.Context, reviewID, encoded, writer string, seq uint64) error {
	return s.replaceField(ctx, reviewID, "self_reflections", encoded, writer, seq)
}

func (s *Store) UpdateEmployeeSummary(ctx context.Context, reviewID, text, writer string, seq uint64) error {
	return s.replaceField(ctx, reviewID, "employee_summary", text, writer, seq)
}

func (s *Store) UpdateManagerSummary(ctx context.Context, reviewID, text, writer string, seq uint64) error {
	return s.replaceField(ctx, reviewID, "manager_summary", text, writer, seq)
}

func (s *Store) replaceField(ctx context.Context, reviewID, column, value, writer string, seq uint64) error {
	seqColumn := column + "_seq"
	writerColumn := column + "_writer"
	tag, err := s.DB.Exec(ctx, `
    UPDATE reviews
    SET `+column+` = $2, `+seqColumn+` = $3, `+writerColumn+` = $4, updated_at = now()
    WHERE id = $1 AND (`+writerColumn+` <> $4 OR `+seqColumn+` < $3)
  `, reviewID, value, seq, writer)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)", reviewID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStaleWrite
	}
	return nil
}

func (s *Store) ListCompetencyComments(ctx context.Context, reviewID, competencyKey string) ([]Comment, error) {
	return s.listComments(ctx, `
    SELECT id, author_id, author_role, content, created_at
    FROM competency_comments
    WHERE review_id = $1 AND competency_key = $2
    ORDER BY created_at ASC
  `, reviewID, competencyKey)
}

func (s *Store) CreateCompetencyComment(ctx context.Context, reviewID, competencyKey string, comment Comment) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO competency_comments (id, review_id, competency_key, author_id, author_role, content, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, comment.ID, reviewID, competencyKey, comment.AuthorID, comment.AuthorRole, comment.Content, comment.CreatedAt)
	return err
}

func (s *Store) ListGoalComments(ctx context.Context, reviewID, goalID string) ([]Comment, error) {
	return s.listComments(ctx, `
    SELECT id, author_id, author_role, content, created_at
    FROM goal_comments
    WHERE review_id = $1 AND goal_id = $2
    ORDER BY created_at ASC
  `, reviewID, goalID)
}

func (s *Store) CreateGoalComment(ctx context.Context, reviewID, goalID string, comment Comment) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO goal_comments (id, review_id, goal_id, author_id, author_role, content, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, comment.ID, reviewID, goalID, comment.AuthorID, comment.AuthorRole, comment.Content, comment.CreatedAt)
	return err
}

func (s *Store) listComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorRole, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
