package model

import "github.com/uptrace/bun"

// Product is a sellable catalog item belonging to one category.
// Category is loaded on demand and its Products side is left empty,
// keeping the relation acyclic on the wire.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p" json:"-"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	SKU        string    `bun:"sku,notnull,unique" json:"sku"`
	Price      float64   `bun:"price,notnull,default:0" json:"price"`
	Stock      int       `bun:"stock,notnull,default:0" json:"stock"`
	CategoryID int64     `bun:"category_id,notnull" json:"category_id"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}
