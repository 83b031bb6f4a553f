package session

import "rental-marketplace/internal/storage"

// Listing is the read side of the entity store the gate scopes.
// Snapshot returns both collections as of one point in time.
type Listing interface {
	Properties() []storage.Property
	Snapshot() ([]storage.Property, []storage.Chat)
}

// Access is the outcome of a role check. A denied Access is a regular value, not an error.
type Access struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

const (
	ReasonLoginRequired = "login required"
	ReasonAccessDenied  = "access denied"
)

// RequireAdmin checks that the current user has the admin role
func (g *Gate) RequireAdmin() Access {
	u, ok := g.Current()
	if !ok {
		return Access{Reason: ReasonLoginRequired}
	}
	if u.Role != RoleAdmin {
		return Access{Reason: ReasonAccessDenied}
	}
	return Access{Granted: true}
}

// MyProperties returns the properties whose owner email equals the current user email
func (g *Gate) MyProperties(l Listing) ([]storage.Property, error) {
	u, ok := g.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return ownedBy(l.Properties(), u.Email), nil
}

// MyChats returns the chats about properties of the current user.
// Chats whose property no longer exists are not included.
func (g *Gate) MyChats(l Listing) ([]storage.Chat, error) {
	u, ok := g.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	properties, chats := l.Snapshot()
	return chatsAbout(chats, ownedBy(properties, u.Email)), nil
}

func ownedBy(properties []storage.Property, email string) []storage.Property {
	out := make([]storage.Property, 0)
	for _, p := range properties {
		if p.Owner.Email == email {
			out = append(out, p)
		}
	}
	return out
}

func chatsAbout(chats []storage.Chat, properties []storage.Property) []storage.Chat {
	ids := make(map[int64]struct{}, len(properties))
	for _, p := range properties {
		ids[p.ID] = struct{}{}
	}

	out := make([]storage.Chat, 0)
	for _, c := range chats {
		if _, ok := ids[c.PropertyID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// UserStats summarizes the listing of the current user
type UserStats struct {
	Properties   int `json:"properties"`
	Chats        int `json:"chats"`
	MonthlyTotal int `json:"monthlyTotal"`
}

// AdminStats summarizes the whole marketplace
type AdminStats struct {
	Active       int `json:"active"`
	Pending      int `json:"pending"`
	Inactive     int `json:"inactive"`
	Chats        int `json:"chats"`
	TotalRevenue int `json:"totalRevenue"`
}

// UserDashboard computes the dashboard figures of the current user
func (g *Gate) UserDashboard(l Listing) (UserStats, error) {
	u, ok := g.Current()
	if !ok {
		return UserStats{}, ErrNotLoggedIn
	}

	properties, chats := l.Snapshot()
	mine := ownedBy(properties, u.Email)
	stats := UserStats{
		Properties: len(mine),
		Chats:      len(chatsAbout(chats, mine)),
	}
	for _, p := range mine {
		stats.MonthlyTotal += p.Price
	}
	return stats, nil
}

// AdminDashboard computes marketplace figures when the current user is an admin
func (g *Gate) AdminDashboard(l Listing) (AdminStats, Access) {
	access := g.RequireAdmin()
	if !access.Granted {
		return AdminStats{}, access
	}

	var stats AdminStats
	properties, chats := l.Snapshot()
	for _, p := range properties {
		switch p.Status {
		case storage.StatusActive:
			stats.Active++
		case storage.StatusPending:
			stats.Pending++
		case storage.StatusInactive:
			stats.Inactive++
		}
		stats.TotalRevenue += p.Price
	}
	stats.Chats = len(chats)

	return stats, access
}
