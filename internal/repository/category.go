package repository

import (
	"context"

	"github.com/uptrace/bun"

	"catalogapi/internal/model"
)

// CategoryRepository adds category-specific read queries on top of the
// generic base. Writes go through the base only, so they share the
// owning unit's staging discipline.
type CategoryRepository struct {
	baseRepository[model.Category]
}

var _ Repository[model.Category] = (*CategoryRepository)(nil)

// FindByID returns the category with the given identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.FindOne(ctx, ByID(id))
}

// FindWithProducts returns the category with its products loaded one
// level deep. The product side carries no category back-reference, so
// the result graph stays acyclic; the relation is capped to keep it
// bounded.
func (r *CategoryRepository) FindWithProducts(ctx context.Context, id int64) (*model.Category, error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}

	cat := new(model.Category)
	err = idb.NewSelect().
		Model(cat).
		Where("c.id = ?", id).
		Relation("Products", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("p.id ASC").Limit(maxPageSize)
		}).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

// ListWithProducts returns one page of categories, each with its
// products loaded one level deep.
func (r *CategoryRepository) ListWithProducts(ctx context.Context, pq PageQuery) (*PageResult[model.Category], error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}
	pq = pq.normalize()

	items := make([]*model.Category, 0, pq.Limit)
	total, err := idb.NewSelect().
		Model(&items).
		Relation("Products", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("p.id ASC").Limit(maxPageSize)
		}).
		Order("c.id ASC").
		Limit(pq.Limit).
		Offset(pq.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}
	return &PageResult[model.Category]{Items: items, Total: total}, nil
}

// ListNonEmpty returns categories that have at least one product.
func (r *CategoryRepository) ListNonEmpty(ctx context.Context) ([]*model.Category, error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}

	var cats []*model.Category
	err = idb.NewSelect().
		Model(&cats).
		Where("EXISTS (SELECT 1 FROM products AS p WHERE p.category_id = c.id)").
		Order("c.id ASC").
		Limit(maxPageSize).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return cats, nil
}
