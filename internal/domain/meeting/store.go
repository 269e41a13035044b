package meeting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	GetMeeting(ctx context.Context, meetingID string) (Meeting, error)
	ListMeetingsForUser(ctx context.Context, userID string) ([]Meeting, error)
	CreateMeeting(ctx context.Context, m Meeting) error
	UpdateField(ctx context.Context, meetingID, field, value, writer string, seq uint64) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) GetMeeting(ctx context.Context, meetingID string) (Meeting, error) {
	var m Meeting
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, manager_id, scheduled_at
    FROM meetings
    WHERE id = $1
  `, meetingID).Scan(&m.ID, &m.EmployeeID, &m.ManagerID, &m.ScheduledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Meeting{}, ErrNotFound
	}
	if err != nil {
		return Meeting{}, err
	}

	m.Fields, err = s.loadFields(ctx, meetingID)
	return m, err
}

func (s *Store) loadFields(ctx context.Context, meetingID string) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT field, value FROM meeting_fields WHERE meeting_id = $1", meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := map[string]string{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		fields[field] = value
	}
	return fields, rows.Err()
}

func (s *Store) ListMeetingsForUser(ctx context.Context, userID string) ([]Meeting, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, manager_id, scheduled_at
    FROM meetings
    WHERE employee_id = $1 OR manager_id = $1
    ORDER BY scheduled_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.ManagerID, &m.ScheduledAt); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) CreateMeeting(ctx context.Context, m Meeting) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO meetings (id, employee_id, manager_id, scheduled_at)
    VALUES ($1, $2, $3, $4)
  `, m.ID, m.EmployeeID, m.ManagerID, m.ScheduledAt)
	return err
}

// UpdateField replaces the whole field value. The write is discarded
// only when the same writer already applied a newer sequence, so an
// older flush cannot overwrite a newer one from the same process.
func (s *Store) UpdateField(ctx context.Context, meetingID, field, value, writer string, seq uint64) error {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO meeting_fields (meeting_id, field, value, seq, writer, updated_at)
    VALUES ($1, $2, $3, $4, $5, now())
    ON CONFLICT (meeting_id, field)
    DO UPDATE SET value = EXCLUDED.value, seq = EXCLUDED.seq, writer = EXCLUDED.writer, updated_at = now()
    WHERE meeting_fields.writer <> EXCLUDED.writer OR meeting_fields.seq < EXCLUDED.seq
  `, meetingID, field, value, seq, writer)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}
