package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"catalogapi/internal/model"
)

// seedCatalog commits a small category/product graph and returns the
// category ids keyed by name.
func seedCatalog(t *testing.T, db *bun.DB) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	books := &model.Category{Name: "Books"}
	empty := &model.Category{Name: "Empty"}
	require.NoError(t, uow.Categories().Add(ctx, books))
	require.NoError(t, uow.Categories().Add(ctx, empty))

	for _, p := range []*model.Product{
		{Name: "Novel", SKU: "bk-1", Price: 12.5, Stock: 3, CategoryID: books.ID},
		{Name: "Atlas", SKU: "bk-2", Price: 30, Stock: 1, CategoryID: books.ID},
	} {
		require.NoError(t, uow.Products().Add(ctx, p))
	}
	require.NoError(t, uow.Commit(ctx))

	return map[string]int64{"Books": books.ID, "Empty": empty.ID}
}

func TestCategoryRepository_FindWithProducts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ids := seedCatalog(t, db)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	cat, err := uow.Categories().FindWithProducts(ctx, ids["Books"])
	require.NoError(t, err)
	assert.Equal(t, "Books", cat.Name)
	require.Len(t, cat.Products, 2)

	// the relation is expanded exactly one level: products must not
	// carry the category back-reference
	for _, p := range cat.Products {
		assert.Nil(t, p.Category)
	}
}

func TestCategoryRepository_FindWithProducts_Absent(t *testing.T) {
	db := newTestDB(t)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	_, err := uow.Categories().FindWithProducts(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepository_ListWithProducts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedCatalog(t, db)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	res, err := uow.Categories().ListWithProducts(ctx, PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	byName := map[string]*model.Category{}
	for _, c := range res.Items {
		byName[c.Name] = c
	}
	assert.Len(t, byName["Books"].Products, 2)
	assert.Empty(t, byName["Empty"].Products)
}

func TestCategoryRepository_ListNonEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedCatalog(t, db)

	uow := NewUnitOfWork(db)
	defer uow.Close()

	cats, err := uow.Categories().ListNonEmpty(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Books", cats[0].Name)
}
