package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// CommentStore fronts the comment tables with a lazy per-thread cache:
// a thread is fetched at most once per editing session, and new comments
// are appended to the cached list right after a successful create rather
// than refetched.
type CommentStore struct {
	store   StoreAPI
	threads *cache.Cache
}

func NewCommentStore(store StoreAPI, ttl time.Duration) *CommentStore {
	return &CommentStore{
		store:   store,
		threads: cache.New(ttl, 2*ttl),
	}
}

func (c *CommentStore) CompetencyThread(ctx context.Context, reviewID, competencyID string) ([]Comment, error) {
	key := threadKey(reviewID, "competency", competencyID)
	if cached, ok := c.threads.Get(key); ok {
		return cached.([]Comment), nil
	}
	comments, err := c.store.ListCompetencyComments(ctx, reviewID, competencyID)
	if err != nil {
		return nil, err
	}
	c.threads.SetDefault(key, comments)
	return comments, nil
}

func (c *CommentStore) GoalThread(ctx context.Context, reviewID, goalID string) ([]Comment, error) {
	key := threadKey(reviewID, "goal", goalID)
	if cached, ok := c.threads.Get(key); ok {
		return cached.([]Comment), nil
	}
	comments, err := c.store.ListGoalComments(ctx, reviewID, goalID)
	if err != nil {
		return nil, err
	}
	c.threads.SetDefault(key, comments)
	return comments, nil
}

func (c *CommentStore) AddCompetencyComment(ctx context.Context, reviewID, competencyID, authorID string, role Role, content string) (Comment, error) {
	if !Allowed(CommentField(role), role) {
		return Comment{}, ErrNotPermitted
	}
	comment := newComment(authorID, role, content)
	if err := c.store.CreateCompetencyComment(ctx, reviewID, competencyID, comment); err != nil {
		return Comment{}, err
	}
	c.append(threadKey(reviewID, "competency", competencyID), comment)
	return comment, nil
}

func (c *CommentStore) AddGoalComment(ctx context.Context, reviewID, goalID, authorID string, role Role, content string) (Comment, error) {
	if !Allowed(CommentField(role), role) {
		return Comment{}, ErrNotPermitted
	}
	comment := newComment(authorID, role, content)
	if err := c.store.CreateGoalComment(ctx, reviewID, goalID, comment); err != nil {
		return Comment{}, err
	}
	c.append(threadKey(reviewID, "goal", goalID), comment)
	return comment, nil
}

// append only touches an already-fetched thread; an unfetched thread will
// pick the comment up on its first (lazy) fetch.
func (c *CommentStore) append(key string, comment Comment) {
	cached, ok := c.threads.Get(key)
	if !ok {
		return
	}
	c.threads.SetDefault(key, append(cached.([]Comment), comment))
}

func newComment(authorID string, role Role, content string) Comment {
	return Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorRole: AuthorRole(role),
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

func threadKey(reviewID, kind, itemID string) string {
	return reviewID + "/" + kind + "/" + itemID
}
