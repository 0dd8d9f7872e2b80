package model

import "github.com/uptrace/bun"

// Category groups products in the catalog. Identifiers are assigned by
// the store on insert; a non-zero ID marks an already-persisted record.
// The Products side of the relation is only populated when explicitly
// loaded, one level deep, so the back-reference never re-enters the
// serialized shape.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c" json:"-"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description string     `bun:"description" json:"description,omitempty"`
	Products    []*Product `bun:"rel:has-many,join:id=category_id" json:"products,omitempty"`
}
