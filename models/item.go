package models

import (
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/shopspring/decimal"
)

// Item represents a product that can be ordered
type Item struct {
	ID             ItemID          `gorm:"column:_id;primaryKey;autoIncrement:false" json:"_id"`
	Name           string          `gorm:"not null" json:"name"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Size           string          `gorm:"not null" json:"size"`
	CategoryID     CategoryID      `gorm:"not null" json:"category_id"`      // references categories
	CreatedBy      AdminID         `gorm:"not null" json:"created_by"`       // references admins
	LastModifiedBy AdminID         `gorm:"not null" json:"last_modified_by"` // references admins
	ImageKey       string          `json:"image_key,omitempty"`              // object key of the uploaded product image
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return schema.Items
}

// Document returns the item in store document form
func (i Item) Document() map[string]any {
	doc := map[string]any{
		"_id":              int64(i.ID),
		"name":             i.Name,
		"price":            i.Price,
		"size":             i.Size,
		"category_id":      int64(i.CategoryID),
		"created_by":       int64(i.CreatedBy),
		"last_modified_by": int64(i.LastModifiedBy),
	}
	if i.ImageKey != "" {
		doc["image_key"] = i.ImageKey
	}
	return doc
}

// ItemFromDocument decodes an items document
func ItemFromDocument(doc map[string]any) (Item, error) {
	d := &decoder{collection: schema.Items, doc: doc}
	i := Item{
		ID:             ItemID(d.integer("_id")),
		Name:           d.str("name"),
		Price:          d.decimal("price"),
		Size:           d.str("size"),
		CategoryID:     CategoryID(d.integer("category_id")),
		CreatedBy:      AdminID(d.integer("created_by")),
		LastModifiedBy: AdminID(d.integer("last_modified_by")),
		ImageKey:       d.optionalStr("image_key"),
	}
	return i, d.err
}
