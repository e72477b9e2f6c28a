package store

import (
	"context"
	"errors"

	"workspace-service/internal/model"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document already exists")
)

// Document is implemented by every persisted model. Fields exposes the filterable
// attributes keyed by column name.
type Document interface {
	DocumentID() string
	Fields() map[string]any
}

// DocumentList is a page of documents plus the total number that matched
type DocumentList[E any] struct {
	Documents []*E
	Total     int
}

// Collection is the generic query interface over one named collection
type Collection[E any] interface {
	Get(ctx context.Context, id string) (*E, error)
	List(ctx context.Context, q Query) (DocumentList[E], error)
	Count(ctx context.Context, filters ...Filter) (int, error)
	// Create fails with ErrConflict when a document with the same id exists
	Create(ctx context.Context, doc *E) error
	Update(ctx context.Context, doc *E) error
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filters ...Filter) (int, error)
}

// Stores groups the collections of one backend or one transaction
type Stores struct {
	Users      Collection[model.User]
	Workspaces Collection[model.Workspace]
	Members    Collection[model.Member]
	Projects   Collection[model.Project]
	Tasks      Collection[model.Task]
}

// TxRunner runs fn against a set of collections. Atomic reports whether a failure
// inside fn undoes the writes fn already made.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(s Stores) error) error
	Atomic() bool
}

// Backend is a complete document store
type Backend interface {
	TxRunner
	Stores() Stores
	Close() error
}
