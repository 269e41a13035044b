// Package notice holds the transient save-status messages produced by
// debounced flushes. A notice self-clears after its TTL (the "saved" /
// "failed to save" toast the editing screen polls for).
package notice

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

const (
	LevelSaved = "saved"
	LevelError = "error"
)

type Notice struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	Field     string    `json:"field"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Center struct {
	notices *cache.Cache
}

func NewCenter(ttl time.Duration) *Center {
	return &Center{notices: cache.New(ttl, ttl)}
}

func (c *Center) Post(scope, field, level, message string) {
	n := Notice{
		ID:        uuid.NewString(),
		Scope:     scope,
		Field:     field,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	c.notices.SetDefault(scope+"|"+n.ID, n)
}

// Active returns the not-yet-expired notices for a scope, oldest first.
func (c *Center) Active(scope string) []Notice {
	var result []Notice
	for key, item := range c.notices.Items() {
		if !strings.HasPrefix(key, scope+"|") {
			continue
		}
		result = append(result, item.Object.(Notice))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
