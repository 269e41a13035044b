package review

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeCommentBackend struct {
	StoreAPI
	mu         sync.Mutex
	fetches    map[string]int
	threads    map[string][]Comment
	created    []Comment
	failCreate bool
}

func newFakeCommentBackend() *fakeCommentBackend {
	return &fakeCommentBackend{
		fetches: map[string]int{},
		threads: map[string][]Comment{},
	}
}

func (f *fakeCommentBackend) ListCompetencyComments(_ context.Context, reviewID, key string) ([]Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches["competency/"+key]++
	return f.threads["competency/"+key], nil
}

func (f *fakeCommentBackend) CreateCompetencyComment(_ context.Context, _, key string, c Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCommentBackend) ListGoalComments(_ context.Context, reviewID, goalID string) ([]Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches["goal/"+goalID]++
	return f.threads["goal/"+goalID], nil
}

func (f *fakeCommentBackend) CreateGoalComment(_ context.Context, _, goalID string, c Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCommentBackend) fetchCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

func TestCommentThreadFetchedOncePerSession(t *testing.T) {
	backend := newFakeCommentBackend()
	backend.threads["competency/c1"] = []Comment{{ID: "existing", Content: "hi"}}
	store := NewCommentStore(backend, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		thread, err := store.CompetencyThread(ctx, "r1", "c1")
		if err != nil {
			t.Fatalf("thread fetch failed: %v", err)
		}
		if len(thread) != 1 {
			t.Fatalf("expected 1 comment, got %d", len(thread))
		}
	}
	if count := backend.fetchCount("competency/c1"); count != 1 {
		t.Fatalf("expected exactly one remote fetch, got %d", count)
	}
}

func TestAddCommentAppendsLocally(t *testing.T) {
	backend := newFakeCommentBackend()
	store := NewCommentStore(backend, time.Minute)
	ctx := context.Background()

	if _, err := store.GoalThread(ctx, "r1", "g1"); err != nil {
		t.Fatalf("initial fetch failed: %v", err)
	}
	comment, err := store.AddGoalComment(ctx, "r1", "g1", "user-e", RoleReviewee, "nice progress")
	if err != nil {
		t.Fatalf("add comment failed: %v", err)
	}
	if comment.AuthorRole != AuthorRoleEmployee {
		t.Fatalf("expected EMPLOYEE author role, got %s", comment.AuthorRole)
	}

	thread, err := store.GoalThread(ctx, "r1", "g1")
	if err != nil {
		t.Fatalf("refetch failed: %v", err)
	}
	if len(thread) != 1 || thread[0].Content != "nice progress" {
		t.Fatalf("expected locally appended comment, got %+v", thread)
	}
	// The optimistic append must not have triggered another remote fetch.
	if count := backend.fetchCount("goal/g1"); count != 1 {
		t.Fatalf("expected one remote fetch, got %d", count)
	}
}

func TestAddCommentChecksRole(t *testing.T) {
	store := NewCommentStore(newFakeCommentBackend(), time.Minute)
	// There is no capability that lets a role author the other role's
	// comments; an unknown role has no capabilities at all.
	if _, err := store.AddGoalComment(context.Background(), "r1", "g1", "x", Role("intruder"), "hi"); err == nil {
		t.Fatal("expected role without comment capability to be rejected")
	}
}
