package repository

import (
	"context"
	"fmt"
	"iter"
)

// baseRepository is the single generic implementation serving every
// entity type. It executes against the owning unit's live transaction,
// so reads within one unit observe that unit's staged writes while
// nothing leaks to other sessions before Commit.
type baseRepository[T any] struct {
	u *UnitOfWork
}

func (r *baseRepository[T]) All(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		idb, err := r.u.conn(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		rows, err := idb.NewSelect().Model((*T)(nil)).Rows(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			entity := new(T)
			if err := r.u.db.ScanRow(ctx, rows, entity); err != nil {
				yield(nil, err)
				return
			}
			if !yield(entity, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (r *baseRepository[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}

	// LIMIT 2 is enough to tell "exactly one" from "too many" without
	// scanning the full match set.
	var matches []T
	err = idb.NewSelect().
		Model(&matches).
		Where(f.Expr, f.Args...).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrAmbiguousMatch
	}
}

func (r *baseRepository[T]) List(ctx context.Context, pq PageQuery) (*PageResult[T], error) {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return nil, err
	}
	pq = pq.normalize()

	items := make([]*T, 0, pq.Limit)
	total, err := idb.NewSelect().
		Model(&items).
		Order("id ASC").
		Limit(pq.Limit).
		Offset(pq.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}

	return &PageResult[T]{Items: items, Total: total}, nil
}

func (r *baseRepository[T]) Add(ctx context.Context, entity *T) error {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := idb.NewInsert().Model(entity).Exec(ctx); err != nil {
		err = fmt.Errorf("stage insert: %w", err)
		r.u.fail(err)
		return err
	}
	return nil
}

func (r *baseRepository[T]) Update(ctx context.Context, entity *T) error {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return err
	}
	res, err := idb.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		err = fmt.Errorf("stage update: %w", err)
		r.u.fail(err)
		return err
	}
	// An overwrite of a missing identifier fails at commit time, taking
	// the rest of the unit's staged changes down with it.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		r.u.fail(fmt.Errorf("stage update: %w", ErrNotFound))
	}
	return nil
}

func (r *baseRepository[T]) Delete(ctx context.Context, entity *T) error {
	idb, err := r.u.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := idb.NewDelete().Model(entity).WherePK().Exec(ctx); err != nil {
		err = fmt.Errorf("stage delete: %w", err)
		r.u.fail(err)
		return err
	}
	return nil
}
