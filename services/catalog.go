package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/store"
)

// Catalog wraps the query service with typed operations for the common
// inventory workflows.
type Catalog struct {
	q *QueryService
}

func NewCatalog(q *QueryService) *Catalog {
	return &Catalog{q: q}
}

// Item fetches one item.
func (c *Catalog) Item(ctx context.Context, id models.ItemID) (models.Item, error) {
	doc, err := c.q.Get(ctx, schema.Items, int64(id))
	if err != nil {
		return models.Item{}, err
	}
	return models.ItemFromDocument(doc)
}

// Category fetches one category.
func (c *Catalog) Category(ctx context.Context, id models.CategoryID) (models.Category, error) {
	doc, err := c.q.Get(ctx, schema.Categories, int64(id))
	if err != nil {
		return models.Category{}, err
	}
	return models.CategoryFromDocument(doc)
}

// TreatOrder records an admin's decision on an order. A later decision
// replaces an earlier one; the replaced decision is logged.
func (c *Catalog) TreatOrder(ctx context.Context, id models.OrderID, admin models.AdminID, status models.OrderStatus, at time.Time) error {
	if !status.Valid() {
		return invalid(InvalidEnumValue, schema.Orders, "status", "%q is not a valid order status", status)
	}
	if status == models.OrderStatusPending {
		return invalid(InvariantViolation, schema.Orders, "status", "an order cannot be treated as %s", status)
	}

	doc, err := c.q.Get(ctx, schema.Orders, int64(id))
	if err != nil {
		return err
	}
	current, err := models.OrderFromDocument(doc)
	if err != nil {
		return err
	}
	if current.Treated() {
		slog.Info("replacing order decision",
			"order_id", id,
			"previous_status", current.Status,
			"previous_admin", *current.TreatedBy,
			"admin", admin,
			"status", status,
		)
	}

	return c.q.Update(ctx, schema.Orders, int64(id), store.Document{
		"status":     string(status),
		"treated_by": int64(admin),
		"treated_on": at,
	})
}

// RenameCategory changes a category's name and records who changed it.
func (c *Catalog) RenameCategory(ctx context.Context, id models.CategoryID, name string, admin models.AdminID) error {
	return c.q.Update(ctx, schema.Categories, int64(id), store.Document{
		"name":             name,
		"last_modified_by": int64(admin),
	})
}

// ItemsWithCategory lists every item with its category under category_info.
func (c *Catalog) ItemsWithCategory(ctx context.Context) ([]store.Document, error) {
	return c.q.JoinOne(ctx, schema.Items, nil, JoinSpec{
		From:         schema.Categories,
		LocalField:   "category_id",
		ForeignField: schema.IDField,
		As:           "category_info",
	})
}

// OrderDetails returns one order with the ordering user, the item and the
// admin who treated it.
func (c *Catalog) OrderDetails(ctx context.Context, id models.OrderID) (store.Document, error) {
	docs, err := c.q.JoinMany(ctx, schema.Orders, store.Document{schema.IDField: int64(id)}, []JoinSpec{
		{From: schema.Users, LocalField: "user_id", ForeignField: schema.IDField, As: "ordered_by"},
		{From: schema.Items, LocalField: "item_id", ForeignField: schema.IDField, As: "item_details"},
		{From: schema.Admins, LocalField: "treated_by", ForeignField: schema.IDField, As: "admin_details"},
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, schema.Orders, id)
	}
	return docs[0], nil
}
