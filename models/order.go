package models

import (
	"time"

	"github.com/kendall-kelly/inventory-api/schema"
)

// Order represents a user's order for an item
type Order struct {
	ID        OrderID     `gorm:"column:_id;primaryKey;autoIncrement:false" json:"_id"`
	UserID    UserID      `gorm:"not null" json:"user_id"` // references users
	ItemID    ItemID      `gorm:"not null" json:"item_id"` // references items
	Status    OrderStatus `gorm:"not null;default:'Pending'" json:"status"`
	Quantity  int64       `gorm:"not null;check:quantity > 0" json:"quantity"`
	TreatedBy *AdminID    `json:"treated_by"` // nullable, set when an admin approves or rejects
	TreatedOn *time.Time  `json:"treated_on"` // nullable, set together with TreatedBy
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return schema.Orders
}

// Treated reports whether an admin has reviewed the order
func (o Order) Treated() bool {
	return o.TreatedBy != nil && o.TreatedOn != nil
}

// Document returns the order in store document form
func (o Order) Document() map[string]any {
	return map[string]any{
		"_id":        int64(o.ID),
		"user_id":    int64(o.UserID),
		"item_id":    int64(o.ItemID),
		"status":     string(o.Status),
		"quantity":   o.Quantity,
		"treated_by": nullable(o.TreatedBy),
		"treated_on": nullableTime(o.TreatedOn),
	}
}

// OrderFromDocument decodes an orders document
func OrderFromDocument(doc map[string]any) (Order, error) {
	d := &decoder{collection: schema.Orders, doc: doc}
	o := Order{
		ID:        OrderID(d.integer("_id")),
		UserID:    UserID(d.integer("user_id")),
		ItemID:    ItemID(d.integer("item_id")),
		Status:    OrderStatus(d.enum("status", func(s string) bool { return OrderStatus(s).Valid() })),
		Quantity:  d.integer("quantity"),
		TreatedOn: d.optionalTimestamp("treated_on"),
	}
	if by := d.optionalInteger("treated_by"); by != nil {
		admin := AdminID(*by)
		o.TreatedBy = &admin
	}
	return o, d.err
}
