package models

// Identifiers are distinct types per collection so a reference to one kind
// of record cannot be passed where another is expected.
type (
	UserID     int64
	AdminID    int64
	CategoryID int64
	ItemID     int64
	OrderID    int64
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Valid reports whether s is one of the declared statuses.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// UserType distinguishes regular users from administrators.
type UserType string

const (
	UserTypeUser  UserType = "User"
	UserTypeAdmin UserType = "admin"
)

// Valid reports whether t is one of the declared user types.
func (t UserType) Valid() bool {
	return t == UserTypeUser || t == UserTypeAdmin
}

// OrderStatus is the review state of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "Pending"
	OrderStatusApproved OrderStatus = "Approved"
	OrderStatusRejected OrderStatus = "Rejected"
)

// Valid reports whether s is one of the declared order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}
