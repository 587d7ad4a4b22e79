package models

import "github.com/kendall-kelly/inventory-api/schema"

// Category groups items
type Category struct {
	ID             CategoryID `gorm:"column:_id;primaryKey;autoIncrement:false" json:"_id"`
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	CreatedBy      AdminID    `gorm:"not null" json:"created_by"`       // references admins
	LastModifiedBy AdminID    `gorm:"not null" json:"last_modified_by"` // references admins
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return schema.Categories
}

// Document returns the category in store document form
func (c Category) Document() map[string]any {
	return map[string]any{
		"_id":              int64(c.ID),
		"name":             c.Name,
		"description":      c.Description,
		"created_by":       int64(c.CreatedBy),
		"last_modified_by": int64(c.LastModifiedBy),
	}
}

// CategoryFromDocument decodes a categories document
func CategoryFromDocument(doc map[string]any) (Category, error) {
	d := &decoder{collection: schema.Categories, doc: doc}
	c := Category{
		ID:             CategoryID(d.integer("_id")),
		Name:           d.str("name"),
		Description:    d.str("description"),
		CreatedBy:      AdminID(d.integer("created_by")),
		LastModifiedBy: AdminID(d.integer("last_modified_by")),
	}
	return c, d.err
}
