package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// snapshot is an immutable state of the Store. Writers build a new snapshot and publish it,
// slices of a published snapshot are never written to again.
type snapshot struct {
	properties []Property
	chats      []Chat
	services   []Service
}

// Store holds the canonical listing and chats for the lifetime of a session.
// Mutations are serialized, reads work on the latest published snapshot without locking.
type Store struct {
	logger *zap.SugaredLogger
	now    func() time.Time

	mu         sync.Mutex
	current    atomic.Pointer[snapshot]
	propertyID int64
	chatID     int64
	messageID  int64
}

// New returns an empty Store, or a seeded one when WithSeed is provided
func New(logger *zap.SugaredLogger, opts ...Option) *Store {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	s := &Store{
		logger: logger,
		now:    cfg.now,
	}

	snap := &snapshot{}
	if cfg.seed {
		snap = seedSnapshot()
		for _, p := range snap.properties {
			s.propertyID = max(s.propertyID, p.ID)
		}
		for _, c := range snap.chats {
			s.chatID = max(s.chatID, c.ID)
			for _, m := range c.Messages {
				s.messageID = max(s.messageID, m.ID)
			}
		}
		logger.Debugf("Seeded store with %d properties and %d chats", len(snap.properties), len(snap.chats))
	}
	s.current.Store(snap)

	return s
}

func (s *Store) load() *snapshot {
	return s.current.Load()
}

// Properties returns the listing, most recently inserted first
func (s *Store) Properties() []Property {
	return cloneProperties(s.load().properties)
}

// Property returns the property with provided id
func (s *Store) Property(id int64) (Property, bool) {
	snap := s.load()
	i := indexOfProperty(snap.properties, id)
	if i < 0 {
		return Property{}, false
	}
	return cloneProperty(snap.properties[i]), true
}

// Chats returns all chats, most recently created first
func (s *Store) Chats() []Chat {
	return cloneChats(s.load().chats)
}

// Snapshot returns the listing and the chats read from the same state
func (s *Store) Snapshot() ([]Property, []Chat) {
	snap := s.load()
	return cloneProperties(snap.properties), cloneChats(snap.chats)
}

// Chat returns the chat with provided id
func (s *Store) Chat(id int64) (Chat, bool) {
	snap := s.load()
	i := indexOfChat(snap.chats, id)
	if i < 0 {
		return Chat{}, false
	}
	return cloneChat(snap.chats[i]), true
}

// Services returns the services catalogue
func (s *Store) Services() []Service {
	snap := s.load()
	out := make([]Service, len(snap.services))
	for i, svc := range snap.services {
		svc.Providers = append([]string(nil), svc.Providers...)
		out[i] = svc
	}
	return out
}

// InsertProperty assigns a new id, sets status to active and creation time to now,
// prepends the property to the listing and returns the stored value
func (s *Store) InsertProperty(data PropertyData) Property {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.propertyID++
	p := Property{
		ID:          s.propertyID,
		Title:       data.Title,
		Location:    data.Location,
		Price:       data.Price,
		Type:        data.Type,
		Bedrooms:    data.Bedrooms,
		Bathrooms:   data.Bathrooms,
		Area:        data.Area,
		Images:      append([]string(nil), data.Images...),
		Amenities:   append([]string(nil), data.Amenities...),
		Description: data.Description,
		Owner:       data.Owner,
		Available:   data.Available,
		Furnishing:  data.Furnishing,
		CreatedAt:   s.now(),
		Status:      StatusActive,
	}

	old := s.load()
	next := *old
	next.properties = make([]Property, 0, len(old.properties)+1)
	next.properties = append(next.properties, p)
	next.properties = append(next.properties, old.properties...)
	s.current.Store(&next)

	s.logger.Debugf("Inserted property (%s) with id %d", p.Title, p.ID)

	return cloneProperty(p)
}

// UpdateProperty merges the set fields of patch over the property with provided id.
// Unknown ids are ignored and reported with false.
func (s *Store) UpdateProperty(id int64, patch PropertyPatch) (Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	i := indexOfProperty(old.properties, id)
	if i < 0 {
		s.logger.Debugf("Update skipped, property (id: %d) does not exist", id)
		return Property{}, false
	}

	p := applyPatch(cloneProperty(old.properties[i]), patch)

	next := *old
	next.properties = append([]Property(nil), old.properties...)
	next.properties[i] = p
	s.current.Store(&next)

	s.logger.Debugf("Updated property (id: %d)", id)

	return cloneProperty(p), true
}

// DeleteProperty removes the property with provided id. Chats referencing it are kept as is.
func (s *Store) DeleteProperty(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	i := indexOfProperty(old.properties, id)
	if i < 0 {
		s.logger.Debugf("Delete skipped, property (id: %d) does not exist", id)
		return false
	}

	next := *old
	next.properties = make([]Property, 0, len(old.properties)-1)
	next.properties = append(next.properties, old.properties[:i]...)
	next.properties = append(next.properties, old.properties[i+1:]...)
	s.current.Store(&next)

	s.logger.Debugf("Deleted property (id: %d)", id)

	return true
}

// InsertChat creates an empty chat about a property and prepends it to the chat list
func (s *Store) InsertChat(propertyID int64, ownerName string) Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatID++
	c := Chat{
		ID:         s.chatID,
		PropertyID: propertyID,
		OwnerName:  ownerName,
		Messages:   []Message{},
	}

	old := s.load()
	next := *old
	next.chats = make([]Chat, 0, len(old.chats)+1)
	next.chats = append(next.chats, c)
	next.chats = append(next.chats, old.chats...)
	s.current.Store(&next)

	s.logger.Debugf("Created chat (id: %d) for property (id: %d)", c.ID, propertyID)

	return cloneChat(c)
}

// AppendMessage adds a message to the end of the chat and refreshes its derived fields.
// Messages from the owner count as unread. Unknown chat ids are ignored and reported with false.
func (s *Store) AppendMessage(chatID int64, text string, sender Sender) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	i := indexOfChat(old.chats, chatID)
	if i < 0 {
		s.logger.Debugf("Message dropped, chat (id: %d) does not exist", chatID)
		return Chat{}, false
	}

	s.messageID++
	m := Message{
		ID:        s.messageID,
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
	}

	c := cloneChat(old.chats[i])
	c.Messages = append(c.Messages, m)
	if sender == SenderOwner {
		c.UnreadCount++
	}
	c = withDerived(c)

	next := *old
	next.chats = append([]Chat(nil), old.chats...)
	next.chats[i] = c
	s.current.Store(&next)

	s.logger.Debugf("Appended message (id: %d) to chat (id: %d)", m.ID, chatID)

	return cloneChat(c), true
}

// MarkChatRead resets the unread counter of the chat
func (s *Store) MarkChatRead(chatID int64) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	i := indexOfChat(old.chats, chatID)
	if i < 0 {
		return Chat{}, false
	}

	c := cloneChat(old.chats[i])
	c.UnreadCount = 0

	next := *old
	next.chats = append([]Chat(nil), old.chats...)
	next.chats[i] = c
	s.current.Store(&next)

	return cloneChat(c), true
}

func applyPatch(p Property, patch PropertyPatch) Property {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Bedrooms != nil {
		p.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		p.Bathrooms = *patch.Bathrooms
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), patch.Images...)
	}
	if patch.Amenities != nil {
		p.Amenities = append([]string(nil), patch.Amenities...)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Owner != nil {
		p.Owner = *patch.Owner
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	if patch.Furnishing != nil {
		p.Furnishing = *patch.Furnishing
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	return p
}

// withDerived recomputes LastMessage and LastActivity from the message sequence
func withDerived(c Chat) Chat {
	if len(c.Messages) == 0 {
		c.LastMessage = ""
		c.LastActivity = nil
		return c
	}
	last := c.Messages[len(c.Messages)-1]
	ts := last.Timestamp
	c.LastMessage = last.Text
	c.LastActivity = &ts
	return c
}

func indexOfProperty(properties []Property, id int64) int {
	for i := range properties {
		if properties[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfChat(chats []Chat, id int64) int {
	for i := range chats {
		if chats[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProperties(properties []Property) []Property {
	out := make([]Property, len(properties))
	for i, p := range properties {
		out[i] = cloneProperty(p)
	}
	return out
}

func cloneChats(chats []Chat) []Chat {
	out := make([]Chat, len(chats))
	for i, c := range chats {
		out[i] = cloneChat(c)
	}
	return out
}

func cloneProperty(p Property) Property {
	p.Images = append([]string(nil), p.Images...)
	p.Amenities = append([]string(nil), p.Amenities...)
	return p
}

func cloneChat(c Chat) Chat {
	c.Messages = append([]Message{}, c.Messages...)
	if c.LastActivity != nil {
		ts := *c.LastActivity
		c.LastActivity = &ts
	}
	return c
}
