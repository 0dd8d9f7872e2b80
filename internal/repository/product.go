package repository

import (
	"context"

	"catalogapi/internal/model"
)

// ProductRepository adds product-specific read queries on top of the
// generic base.
type ProductRepository struct {
	baseRepository[model.Product]
}

var _ Repository[model.Product] = (*ProductRepository)(nil)

// FindByID returns the product with the given identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.FindOne(ctx, ByID(id))
}

// FindBySKU returns the product carrying the given SKU.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.FindOne(ctx, Filter{Expr: "sku = ?", Args: []any{sku}})
}

// FindWithCategory returns the product joined to its category. The
// category side is loaded without its product list, keeping the result
// graph acyclic.
func (r *ProductRepository) FindWithCategory(ctx context.Context, id int64) (*model.Product, error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}

	prod := new(model.Product)
	err = idb.NewSelect().
		Model(prod).
		Where("p.id = ?", id).
		Relation("Category").
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return prod, nil
}

// ListByCategory returns one page of products restricted to a category.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int64, pq PageQuery) (*PageResult[model.Product], error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}
	pq = pq.normalize()

	items := make([]*model.Product, 0, pq.Limit)
	total, err := idb.NewSelect().
		Model(&items).
		Where("p.category_id = ?", categoryID).
		Order("p.id ASC").
		Limit(pq.Limit).
		Offset(pq.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}
	return &PageResult[model.Product]{Items: items, Total: total}, nil
}
