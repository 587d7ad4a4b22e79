package models

import "github.com/kendall-kelly/inventory-api/schema"

// User represents a customer or administrator account
type User struct {
	ID           UserID     `gorm:"column:_id;primaryKey;autoIncrement:false" json:"_id"`
	Username     string     `gorm:"not null" json:"username"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	MiddleName   string     `json:"middle_name,omitempty"`
	LastName     string     `gorm:"not null" json:"last_name"`
	EmailAddress string     `gorm:"not null" json:"email_address"`
	MobileNumber string     `gorm:"not null" json:"mobile_number"`
	Status       UserStatus `gorm:"not null" json:"status"`
	UserType     UserType   `gorm:"not null" json:"user_type"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return schema.Users
}

// IsAdmin reports whether the user may back an Admin record
func (u User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// Document returns the user in store document form
func (u User) Document() map[string]any {
	doc := map[string]any{
		"_id":           int64(u.ID),
		"username":      u.Username,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"email_address": u.EmailAddress,
		"mobile_number": u.MobileNumber,
		"status":        string(u.Status),
		"user_type":     string(u.UserType),
	}
	if u.MiddleName != "" {
		doc["middle_name"] = u.MiddleName
	}
	return doc
}

// UserFromDocument decodes a users document
func UserFromDocument(doc map[string]any) (User, error) {
	d := &decoder{collection: schema.Users, doc: doc}
	u := User{
		ID:           UserID(d.integer("_id")),
		Username:     d.str("username"),
		FirstName:    d.str("first_name"),
		MiddleName:   d.optionalStr("middle_name"),
		LastName:     d.str("last_name"),
		EmailAddress: d.str("email_address"),
		MobileNumber: d.str("mobile_number"),
		Status:       UserStatus(d.enum("status", func(s string) bool { return UserStatus(s).Valid() })),
		UserType:     UserType(d.enum("user_type", func(s string) bool { return UserType(s).Valid() })),
	}
	return u, d.err
}
