package store

import (
	"context"
	"sort"
	"sync"

	"workspace-service/internal/model"
)

// Memory is an in-process backend. Writes are not transactional.
type Memory struct {
	stores Stores
}

func NewMemory() *Memory {
	return &Memory{stores: Stores{
		Users:      newMemoryCollection[model.User](),
		Workspaces: newMemoryCollection[model.Workspace](),
		Members:    newMemoryCollection[model.Member](),
		Projects:   newMemoryCollection[model.Project](),
		Tasks:      newMemoryCollection[model.Task](),
	}}
}

func (m *Memory) Stores() Stores { return m.stores }

func (m *Memory) WithTx(ctx context.Context, fn func(s Stores) error) error {
	return fn(m.stores)
}

func (m *Memory) Atomic() bool { return false }

func (m *Memory) Close() error { return nil }

type memoryCollection[E any, PT interface {
	*E
	Document
}] struct {
	mu   sync.RWMutex
	docs map[string]E
}

func newMemoryCollection[E any, PT interface {
	*E
	Document
}]() *memoryCollection[E, PT] {
	return &memoryCollection[E, PT]{docs: make(map[string]E)}
}

func (c *memoryCollection[E, PT]) Get(ctx context.Context, id string) (*E, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (c *memoryCollection[E, PT]) List(ctx context.Context, q Query) (DocumentList[E], error) {
	c.mu.RLock()
	matched := c.match(q.Filters)
	c.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := Compare(PT(matched[i]).Fields()[q.OrderBy], PT(matched[j]).Fields()[q.OrderBy])
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	total := len(matched)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return DocumentList[E]{Documents: matched, Total: total}, nil
}

func (c *memoryCollection[E, PT]) Count(ctx context.Context, filters ...Filter) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.match(filters)), nil
}

func (c *memoryCollection[E, PT]) Create(ctx context.Context, doc *E) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := PT(doc).DocumentID()
	if _, exists := c.docs[id]; exists {
		return ErrConflict
	}
	c.docs[id] = *doc
	return nil
}

func (c *memoryCollection[E, PT]) Update(ctx context.Context, doc *E) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := PT(doc).DocumentID()
	if _, exists := c.docs[id]; !exists {
		return ErrNotFound
	}
	c.docs[id] = *doc
	return nil
}

func (c *memoryCollection[E, PT]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		return ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func (c *memoryCollection[E, PT]) DeleteWhere(ctx context.Context, filters ...Filter) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, doc := range c.docs {
		if Match(PT(&doc).Fields(), filters) {
			delete(c.docs, id)
			n++
		}
	}
	return n, nil
}

// match returns copies of the matching documents; the caller holds the lock
func (c *memoryCollection[E, PT]) match(filters []Filter) []*E {
	out := make([]*E, 0)
	for _, doc := range c.docs {
		if Match(PT(&doc).Fields(), filters) {
			cp := doc
			out = append(out, &cp)
		}
	}
	return out
}
