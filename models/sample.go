package models

import (
	"time"

	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/shopspring/decimal"
)

// Record is one document destined for a collection.
type Record struct {
	Collection string
	Document   map[string]any
}

// Sample is the demonstration data set of the inventory.
type Sample struct {
	Users      []User
	Admins     []Admin
	Categories []Category
	Items      []Item
	Orders     []Order
}

// SampleData returns the demonstration data set. Timestamps are set to now.
//
// Every record created by an administrator is attributed to admin 1, the
// only admin in the set.
func SampleData(now time.Time) Sample {
	admin := AdminID(1)
	treatedOn := now

	return Sample{
		Users: []User{
			{
				ID:           1,
				Username:     "KolaqAlagbo",
				FirstName:    "Kolaq",
				MiddleName:   "Junior",
				LastName:     "Alagbo",
				EmailAddress: "Kolaq_junior@gmail.com",
				MobileNumber: "234900050000",
				Status:       UserStatusActive,
				UserType:     UserTypeUser,
			},
			{
				ID:           2,
				Username:     "Alaguntan",
				FirstName:    "Alaguntan",
				MiddleName:   "Hope",
				LastName:     "Deborah",
				EmailAddress: "Hope.Deborah@ymail.com",
				MobileNumber: "234800070000",
				Status:       UserStatusActive,
				UserType:     UserTypeAdmin,
			},
		},
		Admins: []Admin{
			{ID: admin, UserID: 2, CreatedOn: now, LastModifiedOn: now},
		},
		Categories: []Category{
			{ID: 1, Name: "Clothing", Description: "Apparel including shirts, trousers, and dresses", CreatedBy: admin, LastModifiedBy: admin},
			{ID: 2, Name: "Furniture", Description: "Office and home furniture like chairs and tables", CreatedBy: admin, LastModifiedBy: admin},
			{ID: 3, Name: "Footwear", Description: "Shoes, sandals, and other footwear", CreatedBy: admin, LastModifiedBy: admin},
		},
		Items: []Item{
			{ID: 1, Name: "T-shirt", Price: decimal.NewFromInt(2500), Size: "Small", CategoryID: 1, CreatedBy: admin, LastModifiedBy: admin},
			{ID: 2, Name: "Jeans", Price: decimal.NewFromInt(7000), Size: "Medium", CategoryID: 1, CreatedBy: admin, LastModifiedBy: admin},
			{ID: 3, Name: "Office Chair", Price: decimal.NewFromInt(100000), Size: "Large", CategoryID: 2, CreatedBy: admin, LastModifiedBy: admin},
		},
		Orders: []Order{
			{ID: 1, UserID: 1, ItemID: 1, Status: OrderStatusPending, Quantity: 2},
			{ID: 2, UserID: 1, ItemID: 3, Status: OrderStatusApproved, Quantity: 1, TreatedBy: &admin, TreatedOn: &treatedOn},
		},
	}
}

// Records flattens the sample into documents, ordered so that every record
// comes after the records it references.
func (s Sample) Records() []Record {
	var out []Record
	for _, u := range s.Users {
		out = append(out, Record{Collection: schema.Users, Document: u.Document()})
	}
	for _, a := range s.Admins {
		out = append(out, Record{Collection: schema.Admins, Document: a.Document()})
	}
	for _, c := range s.Categories {
		out = append(out, Record{Collection: schema.Categories, Document: c.Document()})
	}
	for _, i := range s.Items {
		out = append(out, Record{Collection: schema.Items, Document: i.Document()})
	}
	for _, o := range s.Orders {
		out = append(out, Record{Collection: schema.Orders, Document: o.Document()})
	}
	return out
}
