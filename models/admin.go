package models

import (
	"time"

	"github.com/kendall-kelly/inventory-api/schema"
)

// Admin grants administrative rights to a user whose user_type is "admin"
type Admin struct {
	ID             AdminID   `gorm:"column:_id;primaryKey;autoIncrement:false" json:"_id"`
	UserID         UserID    `gorm:"not null" json:"user_id"` // references users
	CreatedOn      time.Time `gorm:"not null" json:"created_on"`
	LastModifiedOn time.Time `gorm:"not null" json:"last_modified_on"`
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return schema.Admins
}

// Document returns the admin in store document form
func (a Admin) Document() map[string]any {
	return map[string]any{
		"_id":              int64(a.ID),
		"user_id":          int64(a.UserID),
		"created_on":       a.CreatedOn,
		"last_modified_on": a.LastModifiedOn,
	}
}

// AdminFromDocument decodes an admins document
func AdminFromDocument(doc map[string]any) (Admin, error) {
	d := &decoder{collection: schema.Admins, doc: doc}
	a := Admin{
		ID:             AdminID(d.integer("_id")),
		UserID:         UserID(d.integer("user_id")),
		CreatedOn:      d.timestamp("created_on"),
		LastModifiedOn: d.timestamp("last_modified_on"),
	}
	return a, d.err
}
