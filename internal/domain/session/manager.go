package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"perfdesk/internal/domain/notice"
	"perfdesk/internal/domain/review"
	"perfdesk/internal/platform/debounce"
	"perfdesk/internal/platform/metrics"
)

var ErrNoAccess = errors.New("user is neither reviewee nor reviewer on this review")

// Manager owns the open editing sessions, one per (review, user). An
// idle session expires after the configured TTL; eviction flushes its
// pending writes before dropping it.
type Manager struct {
	mu       sync.Mutex
	service  *review.Service
	comments *review.CommentStore
	notices  *notice.Center
	metrics  *metrics.Collector
	window   time.Duration
	sessions *cache.Cache
}

func NewManager(service *review.Service, notices *notice.Center, collector *metrics.Collector, window, sessionTTL time.Duration) *Manager {
	sessions := cache.New(sessionTTL, sessionTTL)
	sessions.OnEvicted(func(_ string, value interface{}) {
		value.(*Session).Close()
	})
	return &Manager{
		service:  service,
		comments: review.NewCommentStore(service.Store(), sessionTTL),
		notices:  notices,
		metrics:  collector,
		window:   window,
		sessions: sessions,
	}
}

func Key(reviewID, userID string) string {
	return reviewID + ":" + userID
}

// Open returns the live session for (review, user), rehydrating the
// document from storage only when no session exists yet. The user's role
// inside the session is fixed by their position on the review row.
func (m *Manager) Open(ctx context.Context, reviewID, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.sessions.Get(Key(reviewID, userID)); ok {
		return cached.(*Session), nil
	}

	doc, err := m.service.Load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var role review.Role
	switch userID {
	case doc.EmployeeID:
		role = review.RoleReviewee
	case doc.ManagerID:
		role = review.RoleReviewer
	default:
		return nil, ErrNoAccess
	}

	s := &Session{
		ReviewID: reviewID,
		UserID:   userID,
		Role:     role,
		writer:   uuid.NewString(),
		doc:      doc,
		store:    m.service.Store(),
		comments: m.comments,
		deb:      debounce.New(m.window),
		notices:  m.notices,
		metrics:  m.metrics,
	}
	// Freshly assigned surrogate ids must reach storage even if the
	// user never edits the lists, or comment threads keyed by them
	// would not survive this session.
	s.mu.Lock()
	if doc.CompetencyIDsAssigned {
		s.scheduleLocked(fieldCompetencies)
	}
	if doc.GoalIDsAssigned {
		s.scheduleLocked(fieldGoals)
	}
	s.mu.Unlock()

	m.sessions.SetDefault(Key(reviewID, userID), s)
	return s, nil
}

// Get returns an already-open session without touching storage.
func (m *Manager) Get(reviewID, userID string) (*Session, bool) {
	cached, ok := m.sessions.Get(Key(reviewID, userID))
	if !ok {
		return nil, false
	}
	return cached.(*Session), true
}

// Close flushes and drops every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.sessions.Items() {
		item.Object.(*Session).Close()
	}
	m.sessions.Flush()
}
