package session

import (
	"rental-marketplace/internal/storage"
	"time"
)

// Role of a user in the marketplace
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DefaultOwnerPhone is shown as owner contact when the poster has no phone on record
const DefaultOwnerPhone = "+91 9876543210"

// User is the persisted session record
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registration holds the fields a new user provides, the rest is filled by Register
type Registration struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// AsOwner returns the owner contact block embedded into properties the user posts
func (u User) AsOwner() storage.Owner {
	phone := u.Phone
	if phone == "" {
		phone = DefaultOwnerPhone
	}
	return storage.Owner{
		Name:  u.Name,
		Phone: phone,
		Email: u.Email,
	}
}
