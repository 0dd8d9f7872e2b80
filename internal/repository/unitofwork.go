package repository

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"catalogapi/internal/model"
)

// UnitOfWork owns one logical session against the store for the span of
// one request. Repositories obtained from it share that session:
// everything they stage lands in a single transaction that either
// commits as a whole or not at all.
//
// A unit begins its transaction lazily on first repository use. After a
// successful Commit it stays open; the next operation starts a fresh
// transaction. Close is terminal and rolls back anything uncommitted.
//
// Units are created per request and must not be shared across
// goroutines.
type UnitOfWork struct {
	db *bun.DB
	tx *bun.Tx

	closed bool
	// first staged-write failure; surfaces at Commit and dooms the unit
	deferred error

	categories *CategoryRepository
	products   *ProductRepository
}

// NewUnitOfWork binds a unit to the store handle. No I/O happens here.
func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Categories returns the category repository for this unit, built on
// first access and memoized for the unit's lifetime.
func (u *UnitOfWork) Categories() *CategoryRepository {
	if u.categories == nil {
		u.categories = &CategoryRepository{baseRepository[model.Category]{u: u}}
	}
	return u.categories
}

// Products returns the product repository for this unit, built on first
// access and memoized for the unit's lifetime.
func (u *UnitOfWork) Products() *ProductRepository {
	if u.products == nil {
		u.products = &ProductRepository{baseRepository[model.Product]{u: u}}
	}
	return u.products
}

// conn hands repositories the unit's live transaction, beginning one if
// none is open yet.
func (u *UnitOfWork) conn(ctx context.Context) (bun.IDB, error) {
	if u.closed {
		return nil, ErrUnitOfWorkClosed
	}
	if u.tx == nil {
		tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return nil, &CommitError{Err: err}
		}
		u.tx = &tx
	}
	return u.tx, nil
}

// fail records the first staged-write failure. Commit refuses to run
// while one is pending and rolls the unit back instead.
func (u *UnitOfWork) fail(err error) {
	if u.deferred == nil {
		u.deferred = err
	}
}

// Commit atomically persists every change staged through this unit's
// repositories. On store rejection it returns a *CommitError and no
// staged write remains visible. A committed unit stays open for further
// staging.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	if u.deferred != nil {
		err := u.deferred
		u.deferred = nil
		u.rollback()
		return err
	}
	if u.tx == nil {
		// nothing staged
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		return &CommitError{Err: err}
	}
	return nil
}

// Close releases the unit's session, rolling back any uncommitted
// changes. Every later operation on the unit or its repositories fails
// with ErrUnitOfWorkClosed.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.rollback()
	return nil
}

func (u *UnitOfWork) rollback() {
	if u.tx == nil {
		return
	}
	tx := u.tx
	u.tx = nil
	// the session is being discarded either way
	_ = tx.Rollback()
}
