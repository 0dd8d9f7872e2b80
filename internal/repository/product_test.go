package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_FindWithCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedCatalog(t, db)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	prod, err := uow.Products().FindBySKU(ctx, "bk-1")
	require.NoError(t, err)

	got, err := uow.Products().FindWithCategory(ctx, prod.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Books", got.Category.Name)

	// one level deep: the category side must not re-expand its products
	assert.Empty(t, got.Category.Products)
}

func TestProductRepository_FindWithCategory_Absent(t *testing.T) {
	db := newTestDB(t)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	_, err := uow.Products().FindWithCategory(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_ListByCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ids := seedCatalog(t, db)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	res, err := uow.Products().ListByCategory(ctx, ids["Books"], PageQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Novel", res.Items[0].Name)

	empty, err := uow.Products().ListByCategory(ctx, ids["Empty"], PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Items)
}
