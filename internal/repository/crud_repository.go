package repository

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOptions controls paging, ordering and eager loading for list queries.
type QueryOptions struct {
	Skip    int
	Take    int
	OrderBy string
	// SortBy is a caller-supplied field name, "-" prefixed for descending.
	// It is quoted as a column, unlike OrderBy.
	SortBy   string
	Preloads []string
}

func (o QueryOptions) apply(q *gorm.DB, fallback string) *gorm.DB {
	switch {
	case o.SortBy != "":
		field, desc := strings.CutPrefix(o.SortBy, "-")
		return q.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.NamingStrategy.ColumnName("", field)},
			Desc:   desc,
		})
	case o.OrderBy != "":
		return q.Order(o.OrderBy)
	case fallback != "":
		return q.Order(fallback)
	}
	return q
}

// CRUDRepository implements get-one/get-all/create/update/delete for one
// entity type. Entity repositories embed it and add their own queries.
type CRUDRepository[T any] struct {
	db       *gorm.DB
	entity   string
	preloads []string
}

func NewCRUDRepository[T any](db *gorm.DB, entity string, preloads ...string) CRUDRepository[T] {
	return CRUDRepository[T]{db: db, entity: entity, preloads: preloads}
}

func (r CRUDRepository[T]) Entity() string { return r.entity }

func (r CRUDRepository[T]) query(ctx context.Context, extra []string) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	for _, p := range extra {
		q = q.Preload(p)
	}
	return q
}

// GetOne returns the first record matching filters.
func (r CRUDRepository[T]) GetOne(ctx context.Context, filters map[string]interface{}, opts ...QueryOptions) (*T, error) {
	log.Debug().Str("entity", r.entity).Interface("filters", filters).Msg("Retrieving one record")
	var o QueryOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	q := o.apply(ApplyConditions(r.query(ctx, o.Preloads), BuildConditions(filters)), "")
	var record T
	if err := q.First(&record).Error; err != nil {
		return nil, translateError(r.entity, "retrieving", "", err)
	}
	return &record, nil
}

// GetByID loads a record by primary key.
func (r CRUDRepository[T]) GetByID(ctx context.Context, id string, preloads ...string) (*T, error) {
	var record T
	if err := r.query(ctx, preloads).First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError(r.entity, "retrieving", id, err)
	}
	return &record, nil
}

// GetAll lists records matching filters.
func (r CRUDRepository[T]) GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]T, error) {
	log.Debug().Str("entity", r.entity).Int("skip", opts.Skip).Int("take", opts.Take).Msg("Retrieving multiple records")
	q := opts.apply(ApplyConditions(r.query(ctx, opts.Preloads), BuildConditions(filters)), "created_at DESC")
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}
	if opts.Take > 0 {
		q = q.Limit(opts.Take)
	}
	records := []T{}
	if err := q.Find(&records).Error; err != nil {
		return nil, translateError(r.entity, "retrieving", "", err)
	}
	return records, nil
}

func (r CRUDRepository[T]) Create(ctx context.Context, record *T) error {
	log.Debug().Str("entity", r.entity).Msg("Creating record")
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return translateError(r.entity, "creating", "", err)
	}
	return nil
}

// Update applies fields to the record with the given id and returns the
// reloaded record.
func (r CRUDRepository[T]) Update(ctx context.Context, id string, fields map[string]interface{}) (*T, error) {
	log.Debug().Str("entity", r.entity).Str("id", id).Interface("fields", fields).Msg("Updating record")
	var record T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&record).Updates(fields).Error
	})
	if err != nil {
		return nil, translateError(r.entity, "updating", id, err)
	}
	return r.GetByID(ctx, id)
}

// Save persists every column of a loaded record, associations excluded.
func (r CRUDRepository[T]) Save(ctx context.Context, record *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error; err != nil {
		return translateError(r.entity, "updating", "", err)
	}
	return nil
}

// Delete removes the record. Soft deletion sets deleted_at and keeps the row.
func (r CRUDRepository[T]) Delete(ctx context.Context, id string, soft bool) (*T, error) {
	log.Debug().Str("entity", r.entity).Str("id", id).Bool("soft", soft).Msg("Deleting record")
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx)
	if !soft {
		q = q.Unscoped()
	}
	if err := q.Delete(record).Error; err != nil {
		return nil, translateError(r.entity, "deleting", id, err)
	}
	return record, nil
}
