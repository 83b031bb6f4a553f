// Package listing validates property and chat mutations before applying them to the storage.Store.
package listing

import (
	"rental-marketplace/internal/storage"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// PropertyForm is the data a user submits to post a property.
// Zero Type, Bedrooms, Bathrooms and Furnishing, and nil Available, fall back to the form defaults.
type PropertyForm struct {
	Title       string               `json:"title" validate:"required"`
	Location    string               `json:"location" validate:"required"`
	Price       int                  `json:"price" validate:"gt=0"`
	Type        storage.PropertyType `json:"type" validate:"oneof=apartment house studio villa"`
	Bedrooms    int                  `json:"bedrooms" validate:"gt=0"`
	Bathrooms   int                  `json:"bathrooms" validate:"gt=0"`
	Area        int                  `json:"area" validate:"gt=0"`
	Description string               `json:"description" validate:"required"`
	Furnishing  storage.Furnishing   `json:"furnishing" validate:"oneof=Unfurnished 'Semi Furnished' 'Fully Furnished'"`
	Images      []string             `json:"images" validate:"min=1"`
	Amenities   []string             `json:"amenities"`
	Available   *bool                `json:"available"`
}

func (f PropertyForm) normalized() PropertyForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Location = strings.TrimSpace(f.Location)
	f.Description = strings.TrimSpace(f.Description)
	f.Images = cleanImages(f.Images)
	if f.Type == "" {
		f.Type = storage.TypeApartment
	}
	if f.Bedrooms == 0 {
		f.Bedrooms = 1
	}
	if f.Bathrooms == 0 {
		f.Bathrooms = 1
	}
	if f.Furnishing == "" {
		f.Furnishing = storage.Unfurnished
	}
	return f
}

// cleanImages trims every URL and drops blank ones
func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

// Service is the write side of the marketplace used by the presentation layer
type Service struct {
	logger   *zap.SugaredLogger
	store    *storage.Store
	validate *validator.Validate
}

// NewService returns Service applying mutations to store
func NewService(logger *zap.SugaredLogger, store *storage.Store) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		validate: newValidator(),
	}
}

// CreateProperty validates form and inserts a new active property owned by owner.
// On ValidationErrors the store is left untouched.
func (s *Service) CreateProperty(form PropertyForm, owner storage.Owner) (storage.Property, error) {
	form = form.normalized()

	if err := collect(s.validate.Struct(form)); err != nil {
		s.logger.Debugf("Rejected property (%s): %v", form.Title, err)
		return storage.Property{}, err
	}

	available := true
	if form.Available != nil {
		available = *form.Available
	}

	p := s.store.InsertProperty(storage.PropertyData{
		Title:       form.Title,
		Location:    form.Location,
		Price:       form.Price,
		Type:        form.Type,
		Bedrooms:    form.Bedrooms,
		Bathrooms:   form.Bathrooms,
		Area:        form.Area,
		Images:      form.Images,
		Amenities:   form.Amenities,
		Description: form.Description,
		Owner:       owner,
		Available:   available,
		Furnishing:  form.Furnishing,
	})

	s.logger.Infof("Posted property (id: %d) by %s", p.ID, owner.Email)

	return p, nil
}

// UpdateProperty validates the set fields of patch and merges them over the property.
// An unknown id is not an error: it returns false and changes nothing.
func (s *Service) UpdateProperty(id int64, patch storage.PropertyPatch) (storage.Property, bool, error) {
	patch = normalizePatch(patch)

	errs := ValidationErrors{}
	if patch.Title != nil {
		checkVar(s.validate, errs, "title", *patch.Title)
	}
	if patch.Location != nil {
		checkVar(s.validate, errs, "location", *patch.Location)
	}
	if patch.Price != nil {
		checkVar(s.validate, errs, "price", *patch.Price)
	}
	if patch.Type != nil {
		checkVar(s.validate, errs, "type", *patch.Type)
	}
	if patch.Bedrooms != nil {
		checkVar(s.validate, errs, "bedrooms", *patch.Bedrooms)
	}
	if patch.Bathrooms != nil {
		checkVar(s.validate, errs, "bathrooms", *patch.Bathrooms)
	}
	if patch.Area != nil {
		checkVar(s.validate, errs, "area", *patch.Area)
	}
	if patch.Images != nil {
		checkVar(s.validate, errs, "images", patch.Images)
	}
	if patch.Description != nil {
		checkVar(s.validate, errs, "description", *patch.Description)
	}
	if patch.Furnishing != nil {
		checkVar(s.validate, errs, "furnishing", *patch.Furnishing)
	}
	if patch.Status != nil {
		checkVar(s.validate, errs, "status", *patch.Status)
	}
	if len(errs) > 0 {
		s.logger.Debugf("Rejected update of property (id: %d): %v", id, errs)
		return storage.Property{}, false, errs
	}

	p, ok := s.store.UpdateProperty(id, patch)
	return p, ok, nil
}

func normalizePatch(patch storage.PropertyPatch) storage.PropertyPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	patch.Title = trim(patch.Title)
	patch.Location = trim(patch.Location)
	patch.Description = trim(patch.Description)
	if patch.Images != nil {
		patch.Images = cleanImages(patch.Images)
	}
	return patch
}

// DeleteProperty removes a property, chats about it stay in place
func (s *Service) DeleteProperty(id int64) bool {
	ok := s.store.DeleteProperty(id)
	if ok {
		s.logger.Infof("Deleted property (id: %d)", id)
	}
	return ok
}

// SetStatus changes the listing status of a property, used by the admin panel
func (s *Service) SetStatus(id int64, status storage.Status) (storage.Property, bool, error) {
	return s.UpdateProperty(id, storage.PropertyPatch{Status: &status})
}

// StartChat opens a new chat about a property. A blank ownerName is taken from the property when it exists.
func (s *Service) StartChat(propertyID int64, ownerName string) (storage.Chat, error) {
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		if p, ok := s.store.Property(propertyID); ok {
			ownerName = p.Owner.Name
		}
	}
	if ownerName == "" {
		return storage.Chat{}, ValidationErrors{"ownerName": message("ownerName")}
	}

	return s.store.InsertChat(propertyID, ownerName), nil
}

// SendMessage appends a trimmed message to the chat.
// An unknown chat id is not an error: it returns false and changes nothing.
func (s *Service) SendMessage(chatID int64, text string, sender storage.Sender) (storage.Chat, bool, error) {
	text = strings.TrimSpace(text)

	errs := ValidationErrors{}
	if text == "" {
		errs["text"] = message("text")
	}
	if sender != storage.SenderUser && sender != storage.SenderOwner {
		errs["sender"] = message("sender")
	}
	if len(errs) > 0 {
		return storage.Chat{}, false, errs
	}

	c, ok := s.store.AppendMessage(chatID, text, sender)
	return c, ok, nil
}

// MarkChatRead clears the unread counter of the chat
func (s *Service) MarkChatRead(chatID int64) (storage.Chat, bool) {
	return s.store.MarkChatRead(chatID)
}
