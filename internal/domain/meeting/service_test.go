package meeting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"perfdesk/internal/domain/notice"
	"perfdesk/internal/platform/metrics"
)

type fieldWrite struct {
	field string
	value string
	seq   uint64
}

type fakeMeetingStore struct {
	mu      sync.Mutex
	meeting Meeting
	writes  []fieldWrite
}

func (f *fakeMeetingStore) GetMeeting(_ context.Context, meetingID string) (Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if meetingID != f.meeting.ID {
		return Meeting{}, ErrNotFound
	}
	m := f.meeting
	m.Fields = make(map[string]string, len(f.meeting.Fields))
	for k, v := range f.meeting.Fields {
		m.Fields[k] = v
	}
	return m, nil
}

func (f *fakeMeetingStore) ListMeetingsForUser(context.Context, string) ([]Meeting, error) {
	return []Meeting{f.meeting}, nil
}

func (f *fakeMeetingStore) CreateMeeting(_ context.Context, m Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meeting = m
	return nil
}

func (f *fakeMeetingStore) UpdateField(_ context.Context, _, field, value, _ string, seq uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, fieldWrite{field: field, value: value, seq: seq})
	if f.meeting.Fields == nil {
		f.meeting.Fields = make(map[string]string)
	}
	f.meeting.Fields[field] = value
	return nil
}

func (f *fakeMeetingStore) recorded() []fieldWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fieldWrite, len(f.writes))
	copy(out, f.writes)
	return out
}

func newTestService(window time.Duration) (*Service, *fakeMeetingStore) {
	store := &fakeMeetingStore{meeting: Meeting{
		ID:         "m1",
		EmployeeID: "user-emp",
		ManagerID:  "user-mgr",
		Fields:     map[string]string{FieldAgenda: "old agenda"},
	}}
	return NewService(store, notice.NewCenter(time.Minute), metrics.New(), window), store
}

func TestEditFieldRejectsUnknownField(t *testing.T) {
	svc, _ := newTestService(time.Hour)
	defer svc.Close()
	if err := svc.EditField("m1", "secretNotes", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestGetOverlaysUnflushedDraft(t *testing.T) {
	svc, store := newTestService(time.Hour)
	defer svc.Close()

	if err := svc.EditField("m1", FieldAgenda, "new agenda draft"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	m, err := svc.Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Fields[FieldAgenda] != "new agenda draft" {
		t.Fatalf("expected draft to overlay stored value, got %q", m.Fields[FieldAgenda])
	}
	// The draft has not been persisted yet.
	if got := store.recorded(); len(got) != 0 {
		t.Fatalf("nothing should be written before the quiet window, got %v", got)
	}
}

func TestRapidEditsFlushLastValueOnce(t *testing.T) {
	svc, store := newTestService(20 * time.Millisecond)
	defer svc.Close()

	for _, v := range []string{"a", "ag", "age", "agenda v2"} {
		if err := svc.EditField("m1", FieldAgenda, v); err != nil {
			t.Fatalf("edit: %v", err)
		}
	}
	time.Sleep(100 * time.Millisecond)

	writes := store.recorded()
	if len(writes) != 1 {
		t.Fatalf("expected one coalesced write, got %d", len(writes))
	}
	if writes[0].value != "agenda v2" || writes[0].seq != 4 {
		t.Fatalf("expected last value at seq 4, got %+v", writes[0])
	}
}

func TestFieldsFlushIndependently(t *testing.T) {
	svc, store := newTestService(20 * time.Millisecond)
	defer svc.Close()

	if err := svc.EditField("m1", FieldAgenda, "topics"); err != nil {
		t.Fatalf("edit agenda: %v", err)
	}
	if err := svc.EditField("m1", FieldTranscript, "transcript text"); err != nil {
		t.Fatalf("edit transcript: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	writes := store.recorded()
	if len(writes) != 2 {
		t.Fatalf("expected two independent writes, got %d", len(writes))
	}
	byField := map[string]string{}
	for _, w := range writes {
		byField[w.field] = w.value
	}
	if byField[FieldAgenda] != "topics" || byField[FieldTranscript] != "transcript text" {
		t.Fatalf("each flush must carry only its own field, got %v", byField)
	}
}

func TestManagerNotesEditableByManagerOnly(t *testing.T) {
	m := Meeting{ID: "m1", EmployeeID: "user-emp", ManagerID: "user-mgr"}
	if CanEdit(m, FieldManagerNotes, "user-emp") {
		t.Fatal("employee must not edit manager notes")
	}
	if !CanEdit(m, FieldManagerNotes, "user-mgr") {
		t.Fatal("manager must edit manager notes")
	}
	if !CanEdit(m, FieldSharedNotes, "user-emp") {
		t.Fatal("employee must edit shared notes")
	}
	if CanEdit(m, FieldSharedNotes, "user-other") {
		t.Fatal("non-participant must not edit any field")
	}
}

func TestCloseFlushesPendingDrafts(t *testing.T) {
	svc, store := newTestService(time.Hour)

	if err := svc.EditField("m1", FieldActionItems, "follow up on hiring plan"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	svc.Close()

	writes := store.recorded()
	if len(writes) != 1 || writes[0].value != "follow up on hiring plan" {
		t.Fatalf("close must flush the pending draft, got %v", writes)
	}
}

func TestFlushedDraftsArePruned(t *testing.T) {
	svc, _ := newTestService(10 * time.Millisecond)
	defer svc.Close()

	if err := svc.EditField("m1", FieldAgenda, "quarter planning"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	svc.mu.Lock()
	remaining := len(svc.drafts)
	svc.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("a flushed draft must be dropped, %d still held", remaining)
	}

	// The stored row carries the value now, so Get still sees it.
	m, err := svc.Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Fields[FieldAgenda] != "quarter planning" {
		t.Fatalf("expected the flushed value from storage, got %q", m.Fields[FieldAgenda])
	}
}
