package repository

import (
	"context"
	"errors"

	"github.com/billablehq/billable/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.Find(&result).Error
	return result, err
}

func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(resources).Error
}

func (r *store[T]) Update(ctx context.Context, resourceID string, resource any) error {
	tx := r.db.WithContext(ctx)
	pk, err := primaryKeyColumn[T](tx)
	if err != nil {
		return err
	}
	return tx.Model(new(T)).Where(pk+" = ?", resourceID).Updates(resource).Error
}

func (r *store[T]) Delete(ctx context.Context, resourceID string) error {
	var dummy T
	tx := r.db.WithContext(ctx)
	pk, err := primaryKeyColumn[T](tx)
	if err != nil {
		return err
	}
	return tx.Where(pk+" = ?", resourceID).Delete(&dummy).Error
}

// primaryKeyColumn resolves the model's primary key column. Not every model
// keys on "id": sessions key on "token".
func primaryKeyColumn[T any](tx *gorm.DB) (string, error) {
	var model T
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(&model); err != nil {
		return "", err
	}
	if stmt.Schema == nil || stmt.Schema.PrioritizedPrimaryField == nil {
		return "", gorm.ErrInvalidField
	}
	return stmt.Schema.PrioritizedPrimaryField.DBName, nil
}

func (r *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(query).Where(query).Count(&count).Error
	return count, err
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	db := r.db.WithContext(ctx).Where(filter)

	for _, opt := range opts {
		db = opt.Apply(db)
	}

	return db
}
