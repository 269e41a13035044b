package meeting

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"perfdesk/internal/domain/notice"
	"perfdesk/internal/platform/debounce"
	"perfdesk/internal/platform/metrics"
)

// Service keeps the latest edited value of each meeting field in memory
// and flushes it behind its own debounce timer. Editing the agenda and
// the transcript at the same time arms two independent timers; neither
// flush carries the other field's value.
type Service struct {
	store   StoreAPI
	deb     *debounce.Coordinator
	notices *notice.Center
	metrics *metrics.Collector
	writer  string

	mu     sync.Mutex
	drafts map[string]string
}

func NewService(store StoreAPI, notices *notice.Center, collector *metrics.Collector, window time.Duration) *Service {
	return &Service{
		store:   store,
		deb:     debounce.New(window),
		notices: notices,
		metrics: collector,
		// Sequence numbers restart with the process; the writer id keeps
		// the store from mistaking a fresh counter for stale writes.
		writer: uuid.NewString(),
		drafts: make(map[string]string),
	}
}

// Get overlays unflushed drafts on the stored row so the caller always
// sees the latest local value, saved or not.
func (s *Service) Get(ctx context.Context, meetingID string) (Meeting, error) {
	m, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return Meeting{}, err
	}
	s.mu.Lock()
	for field := range editableFields {
		if draft, ok := s.drafts[draftKey(meetingID, field)]; ok {
			m.Fields[field] = draft
		}
	}
	s.mu.Unlock()
	return m, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Meeting, error) {
	return s.store.ListMeetingsForUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, employeeID, managerID string, scheduledAt time.Time) (Meeting, error) {
	m := Meeting{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		ManagerID:   managerID,
		ScheduledAt: scheduledAt,
		Fields:      map[string]string{},
	}
	if err := s.store.CreateMeeting(ctx, m); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

// EditField records the keystroke locally and (re)arms the field's
// debounce timer. The eventual flush sends the value present at the last
// edit before the quiet period.
func (s *Service) EditField(meetingID, field, value string) error {
	if !ValidField(field) {
		return ErrUnknownField
	}
	key := draftKey(meetingID, field)
	s.mu.Lock()
	s.drafts[key] = value
	s.mu.Unlock()

	s.metrics.FlushScheduled()
	s.deb.Schedule(key, func(seq uint64) {
		s.flush(meetingID, field, seq)
	})
	return nil
}

func (s *Service) flush(meetingID, field string, seq uint64) {
	key := draftKey(meetingID, field)
	s.mu.Lock()
	value := s.drafts[key]
	s.mu.Unlock()

	err := s.store.UpdateField(context.Background(), meetingID, field, value, s.writer, seq)
	switch {
	case errors.Is(err, ErrStaleWrite):
		s.metrics.StaleWrite()
	case err != nil:
		slog.Warn("meeting field flush failed", "meeting", meetingID, "field", field, "err", err)
		s.metrics.FlushFailed()
		s.notices.Post(meetingID, field, notice.LevelError, "failed to save")
	default:
		s.metrics.FlushCompleted()
		s.notices.Post(meetingID, field, notice.LevelSaved, "saved")
		// The stored row now matches; keep the draft only if a newer
		// edit arrived while the write was in flight.
		s.mu.Lock()
		if s.drafts[key] == value {
			delete(s.drafts, key)
		}
		s.mu.Unlock()
	}
}

// Close flushes all pending field writes.
func (s *Service) Close() {
	s.deb.Close()
}

func draftKey(meetingID, field string) string {
	return meetingID + "/" + field
}
