package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfdesk/internal/domain/auth"
	"perfdesk/internal/platform/config"
)

// Seed creates a demo reviewer/reviewee pair with one review and one 1:1
// so a fresh install has something to open. All statements are
// idempotent; rerunning the seed is a no-op.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(cfg.SeedPassword)
	if err != nil {
		return err
	}

	managerID, err := ensureUser(ctx, pool, cfg.SeedManagerEmail, "Demo Manager", auth.RoleManager, hash)
	if err != nil {
		return err
	}
	employeeID, err := ensureUser(ctx, pool, cfg.SeedEmployeeEmail, "Demo Employee", auth.RoleEmployee, hash)
	if err != nil {
		return err
	}
	if _, err := ensureUser(ctx, pool, cfg.SeedHREmail, "Demo HR", auth.RoleHR, hash); err != nil {
		return err
	}

	if err := ensureReview(ctx, pool, employeeID, managerID); err != nil {
		return err
	}
	return ensureMeeting(ctx, pool, employeeID, managerID)
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, name, role, hash string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}
	id = uuid.NewString()
	_, err = pool.Exec(ctx, `
    INSERT INTO users (id, email, display_name, role_name, password_hash)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (email) DO NOTHING
  `, id, email, name, role, hash)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureReview(ctx context.Context, pool *pgxpool.Pool, employeeID, managerID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM reviews WHERE employee_id = $1 AND manager_id = $2", employeeID, managerID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// Lists are seeded without item ids; rehydration backfills them.
	competencies := `[{"name":"Communication","description":"Shares context early and often"},{"name":"Ownership","description":"Sees problems through to resolution"}]`
	goals := `[{"title":"Ship the Q3 reporting pipeline","status":"not_achieved","dueDate":"2026-09-30"}]`
	reflections := `[{"question":"What are you most proud of this cycle?","answer":""}]`

	_, err := pool.Exec(ctx, `
    INSERT INTO reviews (id, cycle_id, employee_id, manager_id, status,
                         competencies, assigned_goals, self_reflections,
                         employee_summary, manager_summary)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', '')
  `, uuid.NewString(), "2026-h2", employeeID, managerID, "self_in_progress",
		competencies, goals, reflections)
	return err
}

func ensureMeeting(ctx context.Context, pool *pgxpool.Pool, employeeID, managerID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM meetings WHERE employee_id = $1 AND manager_id = $2", employeeID, managerID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := pool.Exec(ctx, `
    INSERT INTO meetings (id, employee_id, manager_id, scheduled_at)
    VALUES ($1, $2, $3, $4)
  `, uuid.NewString(), employeeID, managerID, time.Now().Add(24*time.Hour).UTC())
	return err
}
