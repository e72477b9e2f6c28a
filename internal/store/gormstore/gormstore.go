package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/prometheus"

	"gorm.io/gorm"
)

// Backend serves the document store from PostgreSQL through gorm
type Backend struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Stores() store.Stores {
	return newStores(b.db)
}

// WithTx runs fn inside a database transaction; any error rolls back every write
func (b *Backend) WithTx(ctx context.Context, fn func(s store.Stores) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStores(tx))
	})
}

func (b *Backend) Atomic() bool { return true }

func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newStores(db *gorm.DB) store.Stores {
	return store.Stores{
		Users:      &collection[model.User]{db: db},
		Workspaces: &collection[model.Workspace]{db: db},
		Members:    &collection[model.Member]{db: db},
		Projects:   &collection[model.Project]{db: db},
		Tasks:      &collection[model.Task]{db: db},
	}
}

type collection[E any] struct {
	db *gorm.DB
}

func (c *collection[E]) scoped(ctx context.Context, filters []store.Filter) (*gorm.DB, error) {
	tx := c.db.WithContext(ctx).Model(new(E))
	for _, f := range filters {
		query, arg, err := whereClause(f)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(query, arg)
	}
	return tx, nil
}

func (c *collection[E]) Get(ctx context.Context, id string) (*E, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var doc E
	if err := c.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (c *collection[E]) List(ctx context.Context, q store.Query) (store.DocumentList[E], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	total, err := c.Count(ctx, q.Filters...)
	if err != nil {
		return store.DocumentList[E]{}, err
	}

	tx, err := c.scoped(ctx, q.Filters)
	if err != nil {
		return store.DocumentList[E]{}, err
	}

	if q.OrderBy != "" {
		direction := "asc"
		if q.Desc {
			direction = "desc"
		}
		tx = tx.Order(fmt.Sprintf("%s %s", q.OrderBy, direction))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	docs := make([]*E, 0)
	if err := tx.Find(&docs).Error; err != nil {
		return store.DocumentList[E]{}, translate(err)
	}
	return store.DocumentList[E]{Documents: docs, Total: total}, nil
}

func (c *collection[E]) Count(ctx context.Context, filters ...store.Filter) (int, error) {
	defer prometheus.TrackDBOperation("count")(time.Now())
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return int(total), nil
}

func (c *collection[E]) Create(ctx context.Context, doc *E) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(c.db.WithContext(ctx).Create(doc).Error)
}

func (c *collection[E]) Update(ctx context.Context, doc *E) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	// Select("*") writes zero values too, so a field can be cleared
	result := c.db.WithContext(ctx).Model(doc).Select("*").Updates(doc)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection[E]) Delete(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := c.db.WithContext(ctx).Delete(new(E), "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection[E]) DeleteWhere(ctx context.Context, filters ...store.Filter) (int, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	if len(filters) == 0 {
		return 0, errors.New("refusing to delete without filters")
	}
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return 0, err
	}
	result := tx.Delete(new(E))
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return int(result.RowsAffected), nil
}

// whereClause renders one filter as a gorm condition with a single bind argument
func whereClause(f store.Filter) (string, any, error) {
	value := store.Normalize(f.Value)
	switch f.Op {
	case store.OpEqual:
		return f.Field + " = ?", value, nil
	case store.OpNotEqual:
		return f.Field + " <> ?", value, nil
	case store.OpLessThan:
		return f.Field + " < ?", value, nil
	case store.OpGreaterOrEqual:
		return f.Field + " >= ?", value, nil
	case store.OpLessOrEqual:
		return f.Field + " <= ?", value, nil
	case store.OpIn:
		return f.Field + " IN ?", value, nil
	case store.OpContains:
		return f.Field + " ILIKE ?", fmt.Sprintf("%%%v%%", value), nil
	}
	return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	}
	return err
}
