package repository

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/database/migration"
	"catalogapi/internal/logging"
	"catalogapi/internal/model"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "catalog.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.New(io.Discard, logging.Error)
	require.NoError(t, migration.EnsureSchema(context.Background(), db, log))
	return db
}

// seedCategory commits one category through its own unit and returns it.
func seedCategory(t *testing.T, db *bun.DB, name string) *model.Category {
	t.Helper()
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	cat := &model.Category{Name: name}
	require.NoError(t, uow.Categories().Add(ctx, cat))
	require.NoError(t, uow.Commit(ctx))
	require.NotZero(t, cat.ID, "store must assign an identifier on insert")
	return cat
}

func TestUnitOfWork_AddCommitFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Books")

	uow := NewUnitOfWork(db)
	defer uow.Close()

	got, err := uow.Categories().FindByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Name)
	assert.Equal(t, cat.ID, got.ID)
}

func TestUnitOfWork_StagedWritesVisibleWithinUnitOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	cat := &model.Category{Name: "Games"}
	require.NoError(t, uow.Categories().Add(ctx, cat))

	// visible through the same unit before commit
	got, err := uow.Categories().FindByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Games", got.Name)

	// a second, concurrent unit must not observe the staged write
	other := NewUnitOfWork(db)
	_, err = other.Categories().FindByID(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, other.Close())

	// discarding the unit discards the staged write
	require.NoError(t, uow.Close())

	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	_, err = fresh.Categories().FindByID(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitOfWork_CommitIsAtomicAcrossRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	cat := &model.Category{Name: "Electronics"}
	require.NoError(t, uow.Categories().Add(ctx, cat))
	require.NoError(t, uow.Products().Add(ctx, &model.Product{
		Name: "Keyboard", SKU: "kb-1", Price: 49.9, CategoryID: cat.ID,
	}))
	require.NoError(t, uow.Commit(ctx))

	check := NewUnitOfWork(db)
	defer check.Close()
	gotCat, err := check.Categories().FindByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", gotCat.Name)
	gotProd, err := check.Products().FindBySKU(ctx, "kb-1")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, gotProd.CategoryID)
}

func TestUnitOfWork_StaleUpdateDoomsWholeUnit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	// a perfectly valid insert...
	require.NoError(t, uow.Categories().Add(ctx, &model.Category{Name: "Music"}))
	// ...and an overwrite of an identifier that does not exist
	require.NoError(t, uow.Categories().Update(ctx, &model.Category{ID: 987654, Name: "Ghost"}))

	err := uow.Commit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// the valid insert must not have landed either
	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	_, err = fresh.Categories().FindOne(ctx, Filter{Expr: "name = ?", Args: []any{"Music"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitOfWork_StoreRejectionRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	require.NoError(t, uow.Categories().Add(ctx, &model.Category{Name: "Toys"}))

	// foreign key violation: the store rejects the staged write
	err := uow.Products().Add(ctx, &model.Product{
		Name: "Orphan", SKU: "orphan-1", CategoryID: 424242,
	})
	require.Error(t, err)

	// the unit is doomed: commit fails and nothing is persisted
	require.Error(t, uow.Commit(ctx))

	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	_, err = fresh.Categories().FindOne(ctx, Filter{Expr: "name = ?", Args: []any{"Toys"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitOfWork_DeleteCommitMakesAbsent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Transient")

	uow := NewUnitOfWork(db)
	defer uow.Close()
	require.NoError(t, uow.Categories().Delete(ctx, cat))
	require.NoError(t, uow.Commit(ctx))

	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	_, err := fresh.Categories().FindByID(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitOfWork_RepositoriesAreMemoized(t *testing.T) {
	db := newTestDB(t)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	assert.Same(t, uow.Categories(), uow.Categories())
	assert.Same(t, uow.Products(), uow.Products())

	other := NewUnitOfWork(db)
	defer other.Close()
	assert.NotSame(t, uow.Categories(), other.Categories())
}

func TestUnitOfWork_CommitIsReenterable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	require.NoError(t, uow.Categories().Add(ctx, &model.Category{Name: "First"}))
	require.NoError(t, uow.Commit(ctx))

	// the unit stays open for further staging after a commit
	require.NoError(t, uow.Categories().Add(ctx, &model.Category{Name: "Second"}))
	require.NoError(t, uow.Commit(ctx))

	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	res, err := fresh.Categories().List(ctx, PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestUnitOfWork_CommitWithNothingStaged(t *testing.T) {
	db := newTestDB(t)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	assert.NoError(t, uow.Commit(context.Background()))
}

func TestUnitOfWork_ClosedUnitAlwaysFails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	cats := uow.Categories()
	require.NoError(t, uow.Close())

	_, err := cats.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrUnitOfWorkClosed)

	assert.ErrorIs(t, cats.Add(ctx, &model.Category{Name: "x"}), ErrUnitOfWorkClosed)
	assert.ErrorIs(t, uow.Commit(ctx), ErrUnitOfWorkClosed)

	for _, err := range cats.All(ctx) {
		assert.ErrorIs(t, err, ErrUnitOfWorkClosed)
	}

	// closing twice is harmless
	assert.NoError(t, uow.Close())
}

func TestUnitOfWork_CloseRollsBackUncommitted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	require.NoError(t, uow.Categories().Add(ctx, &model.Category{Name: "Doomed"}))
	require.NoError(t, uow.Close())

	fresh := NewUnitOfWork(db)
	defer fresh.Close()
	_, err := fresh.Categories().FindOne(ctx, Filter{Expr: "name = ?", Args: []any{"Doomed"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommitError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &CommitError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "disk full")
}
