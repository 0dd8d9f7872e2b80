package repository

import (
	"context"
	"iter"
)

// Filter is a predicate over entity columns, expressed as a SQL
// expression with placeholder arguments (e.g. "id = ?").
type Filter struct {
	Expr string
	Args []any
}

// ByID builds the identifier predicate shared by all entity types.
func ByID(id int64) Filter {
	return Filter{Expr: "id = ?", Args: []any{id}}
}

// Repository is the entity-agnostic data access contract. One instance
// is bound to one entity type and one unit of work; it owns no state of
// its own. Mutations are staged inside the owning unit's transaction
// and become visible to other sessions only after Commit.
type Repository[T any] interface {
	// All returns every entity in store-defined order as a lazy
	// sequence; stopping early never materializes the remaining rows.
	All(ctx context.Context) iter.Seq2[*T, error]

	// FindOne returns the single entity matching the predicate.
	// ErrNotFound when nothing matches, ErrAmbiguousMatch when more
	// than one row does.
	FindOne(ctx context.Context, f Filter) (*T, error)

	// List returns one page of entities plus the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[T], error)

	// Add stages a new entity for insertion. The store-assigned
	// identifier is written back to the entity.
	Add(ctx context.Context, entity *T) error

	// Update stages a full-record overwrite keyed by identifier. A
	// missing identifier surfaces as ErrNotFound when the owning unit
	// commits, and dooms every other staged change in that unit.
	Update(ctx context.Context, entity *T) error

	// Delete stages removal of the entity by identifier.
	Delete(ctx context.Context, entity *T) error
}

// maxPageSize caps a single page so relation-expanding list queries
// stay bounded.
const maxPageSize = 100

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// normalize clamps the query to sane bounds.
func (pq PageQuery) normalize() PageQuery {
	if pq.Limit <= 0 {
		pq.Limit = 10
	}
	if pq.Limit > maxPageSize {
		pq.Limit = maxPageSize
	}
	if pq.Offset < 0 {
		pq.Offset = 0
	}
	return pq
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []*T
	Total int
}
