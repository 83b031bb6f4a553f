package storage

import "time"

// PropertyType enumerates kinds of listed properties
type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeStudio    PropertyType = "studio"
	TypeVilla     PropertyType = "villa"
)

// Furnishing enumerates furnishing levels
type Furnishing string

const (
	Unfurnished    Furnishing = "Unfurnished"
	SemiFurnished  Furnishing = "Semi Furnished"
	FullyFurnished Furnishing = "Fully Furnished"
)

// Status is a listing lifecycle state.
// StatusPending is defined but nothing in the store sets it on its own.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Sender tells who wrote a chat message
type Sender string

const (
	SenderUser  Sender = "user"
	SenderOwner Sender = "owner"
)

// Owner is contact data embedded into a Property, it is not a reference to a User
type Owner struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Property struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Location    string       `json:"location"`
	Price       int          `json:"price"`
	Type        PropertyType `json:"type"`
	Bedrooms    int          `json:"bedrooms"`
	Bathrooms   int          `json:"bathrooms"`
	Area        int          `json:"area"`
	Images      []string     `json:"images"`
	Amenities   []string     `json:"amenities"`
	Description string       `json:"description"`
	Owner       Owner        `json:"owner"`
	Available   bool         `json:"available"`
	Furnishing  Furnishing   `json:"furnishing"`
	CreatedAt   time.Time    `json:"createdAt"`
	Status      Status       `json:"status"`
}

// HasAmenity reports whether tag is one of the property amenities
func (p Property) HasAmenity(tag string) bool {
	for _, a := range p.Amenities {
		if a == tag {
			return true
		}
	}
	return false
}

// PropertyData holds every caller-provided field of a Property.
// ID, CreatedAt and Status are assigned by the Store.
type PropertyData struct {
	Title       string
	Location    string
	Price       int
	Type        PropertyType
	Bedrooms    int
	Bathrooms   int
	Area        int
	Images      []string
	Amenities   []string
	Description string
	Owner       Owner
	Available   bool
	Furnishing  Furnishing
}

// PropertyPatch lists fields to merge over an existing Property; nil fields are left untouched
type PropertyPatch struct {
	Title       *string
	Location    *string
	Price       *int
	Type        *PropertyType
	Bedrooms    *int
	Bathrooms   *int
	Area        *int
	Images      []string
	Amenities   []string
	Description *string
	Owner       *Owner
	Available   *bool
	Furnishing  *Furnishing
	Status      *Status
}

type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is a conversation about a property.
// PropertyID is a lookup key only: the property may have been deleted since.
type Chat struct {
	ID           int64      `json:"id"`
	PropertyID   int64      `json:"propertyId"`
	OwnerName    string     `json:"ownerName"`
	Messages     []Message  `json:"messages"`
	LastMessage  string     `json:"lastMessage"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
	UnreadCount  int        `json:"unreadCount"`
}

// Service is an entry of the relocation services catalogue
type Service struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Price       string   `json:"price"`
	Rating      float64  `json:"rating"`
	Providers   []string `json:"providers"`
}
