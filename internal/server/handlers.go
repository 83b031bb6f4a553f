package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"rental-marketplace/internal/intake"
	"rental-marketplace/internal/listing"
	"rental-marketplace/internal/search"
	"rental-marketplace/internal/session"
	"rental-marketplace/internal/storage"
	"strconv"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

type handler struct {
	logger  *zap.SugaredLogger
	store   *storage.Store
	listing *listing.Service
	gate    *session.Gate
	desk    *intake.Desk
	parsers *fastjson.ParserPool
}

// parseBody parses the request body already validated by enforcePostJson.
// Values are only valid until release is called.
func (h *handler) parseBody(w http.ResponseWriter, r *http.Request) (v *fastjson.Value, release func(), ok bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Can not read request body", http.StatusBadRequest)
		return nil, nil, false
	}

	parser := h.parsers.Get()
	v, err = parser.ParseBytes(body)
	if err != nil {
		h.parsers.Put(parser)
		http.Error(w, "Malformed JSON", http.StatusBadRequest)
		return nil, nil, false
	}

	return v, func() { h.parsers.Put(parser) }, true
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(data)
	if err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}

func (h *handler) writeValidation(w http.ResponseWriter, errs map[string]string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}

func (h *handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// requireUser writes 401 when nobody is logged in
func (h *handler) requireUser(w http.ResponseWriter) (session.User, bool) {
	u, ok := h.gate.Current()
	if !ok {
		http.Error(w, "Login required", http.StatusUnauthorized)
		return session.User{}, false
	}
	return u, true
}

// requiredID reads a positive 64-bit integer field
func requiredID(w http.ResponseWriter, v *fastjson.Value, field string) (int64, bool) {
	if !v.Exists(field) {
		http.Error(w, `Missing Field "`+field+`"`, http.StatusBadRequest)
		return 0, false
	}

	id, err := v.Get(field).Int64()
	if err != nil {
		http.Error(w, `Field "`+field+`" must be a 64-bit integer value`, http.StatusBadRequest)
		return 0, false
	}

	if id < 1 {
		http.Error(w, `Field "`+field+`" must be a valid id greater than zero`, http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

// optString reads an optional string field, nil when absent
func optString(w http.ResponseWriter, v *fastjson.Value, field string) (*string, bool) {
	if !v.Exists(field) {
		return nil, true
	}

	value := v.Get(field)
	if value.Type() != fastjson.TypeString {
		http.Error(w, `Field "`+field+`" must be a string`, http.StatusBadRequest)
		return nil, false
	}

	s := string(value.GetStringBytes())
	return &s, true
}

// optInt reads an optional integer given as a JSON number or numeric string.
// Values that are not integers come back as -1 so validation rejects them.
func optInt(v *fastjson.Value, field string) *int {
	if !v.Exists(field) {
		return nil
	}

	n := -1
	value := v.Get(field)
	switch value.Type() {
	case fastjson.TypeNumber:
		if i, err := value.Int(); err == nil {
			n = i
		}
	case fastjson.TypeString:
		if i, err := strconv.Atoi(string(value.GetStringBytes())); err == nil {
			n = i
		}
	}
	return &n
}

// optBool reads an optional boolean field
func optBool(w http.ResponseWriter, v *fastjson.Value, field string) (*bool, bool) {
	if !v.Exists(field) {
		return nil, true
	}

	b, err := v.Get(field).Bool()
	if err != nil {
		http.Error(w, `Field "`+field+`" must be a boolean`, http.StatusBadRequest)
		return nil, false
	}
	return &b, true
}

// optStrings reads an optional array of strings, nil when absent
func optStrings(w http.ResponseWriter, v *fastjson.Value, field string) ([]string, bool) {
	if !v.Exists(field) {
		return nil, true
	}

	values, err := v.Get(field).Array()
	if err != nil {
		http.Error(w, `Field "`+field+`" must be an array`, http.StatusBadRequest)
		return nil, false
	}

	out := make([]string, 0, len(values))
	for _, item := range values {
		if item.Type() != fastjson.TypeString {
			http.Error(w, `Each item in "`+field+`" array field must be a string`, http.StatusBadRequest)
			return nil, false
		}
		out = append(out, string(item.GetStringBytes()))
	}
	return out, true
}

// text returns a string field, or the literal of a number field; anything else is empty
func text(v *fastjson.Value, field string) string {
	value := v.Get(field)
	if value == nil {
		return ""
	}
	switch value.Type() {
	case fastjson.TypeString:
		return string(value.GetStringBytes())
	case fastjson.TypeNumber:
		return string(value.MarshalTo(nil))
	default:
		return ""
	}
}

// filterProperties handles HTTP requests on "/properties/get" endpoint
func (h *handler) filterProperties(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	var c search.Criteria
	if cv := v.Get("criteria"); cv != nil {
		if cv.Type() != fastjson.TypeObject {
			http.Error(w, `Field "criteria" must be an object`, http.StatusBadRequest)
			return
		}
		c = search.Criteria{
			Location: text(cv, "location"),
			Type:     text(cv, "type"),
			MinPrice: text(cv, "minPrice"),
			MaxPrice: text(cv, "maxPrice"),
			Bedrooms: text(cv, "bedrooms"),
		}
		amenities, ok := optStrings(w, cv, "amenities")
		if !ok {
			return
		}
		c.Amenities = amenities
	}

	query, ok := optString(w, v, "query")
	if !ok {
		return
	}
	q := ""
	if query != nil {
		q = *query
	}

	h.writeJSON(w, http.StatusOK, search.Filter(h.store.Properties(), c, q))
}

// findProperty handles HTTP requests on "/properties/find" endpoint
func (h *handler) findProperty(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	p, found := h.store.Property(id)
	if !found {
		http.Error(w, "Property does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

func propertyForm(w http.ResponseWriter, v *fastjson.Value) (listing.PropertyForm, bool) {
	var form listing.PropertyForm

	for field, dst := range map[string]*string{
		"title":       &form.Title,
		"location":    &form.Location,
		"description": &form.Description,
	} {
		s, ok := optString(w, v, field)
		if !ok {
			return form, false
		}
		if s != nil {
			*dst = *s
		}
	}

	for field, dst := range map[string]*int{
		"price":     &form.Price,
		"bedrooms":  &form.Bedrooms,
		"bathrooms": &form.Bathrooms,
		"area":      &form.Area,
	} {
		if n := optInt(v, field); n != nil {
			*dst = *n
		}
	}

	typ, ok := optString(w, v, "type")
	if !ok {
		return form, false
	}
	if typ != nil {
		form.Type = storage.PropertyType(*typ)
	}

	furnishing, ok := optString(w, v, "furnishing")
	if !ok {
		return form, false
	}
	if furnishing != nil {
		form.Furnishing = storage.Furnishing(*furnishing)
	}

	if form.Images, ok = optStrings(w, v, "images"); !ok {
		return form, false
	}
	if form.Amenities, ok = optStrings(w, v, "amenities"); !ok {
		return form, false
	}
	if form.Available, ok = optBool(w, v, "available"); !ok {
		return form, false
	}

	return form, true
}

// createProperty handles HTTP requests on "/properties/add" endpoint
func (h *handler) createProperty(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireUser(w)
	if !ok {
		return
	}

	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	form, ok := propertyForm(w, v)
	if !ok {
		return
	}

	p, err := h.listing.CreateProperty(form, u.AsOwner())
	if err != nil {
		if errs, isValidation := listing.AsValidationErrors(err); isValidation {
			h.writeValidation(w, errs)
			return
		}
		h.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, err = w.Write([]byte(`{"id":` + strconv.FormatInt(p.ID, 10) + `}`))
	if err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}

// updateProperty handles HTTP requests on "/properties/update" endpoint
func (h *handler) updateProperty(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w); !ok {
		return
	}

	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	form, ok := propertyForm(w, v)
	if !ok {
		return
	}

	patch := storage.PropertyPatch{
		Price:     optInt(v, "price"),
		Bedrooms:  optInt(v, "bedrooms"),
		Bathrooms: optInt(v, "bathrooms"),
		Area:      optInt(v, "area"),
		Images:    form.Images,
		Amenities: form.Amenities,
		Available: form.Available,
	}
	if v.Exists("title") {
		patch.Title = &form.Title
	}
	if v.Exists("location") {
		patch.Location = &form.Location
	}
	if v.Exists("description") {
		patch.Description = &form.Description
	}
	if v.Exists("type") {
		patch.Type = &form.Type
	}
	if v.Exists("furnishing") {
		patch.Furnishing = &form.Furnishing
	}

	p, found, err := h.listing.UpdateProperty(id, patch)
	if err != nil {
		if errs, isValidation := listing.AsValidationErrors(err); isValidation {
			h.writeValidation(w, errs)
			return
		}
		h.internalError(w, err)
		return
	}

	if !found {
		h.writeJSON(w, http.StatusOK, map[string]bool{"found": false})
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// deleteProperty handles HTTP requests on "/properties/delete" endpoint
func (h *handler) deleteProperty(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w); !ok {
		return
	}

	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"found": h.listing.DeleteProperty(id)})
}

// myProperties handles HTTP requests on "/properties/mine" endpoint
func (h *handler) myProperties(w http.ResponseWriter, _ *http.Request) {
	properties, err := h.gate.MyProperties(h.store)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			http.Error(w, "Login required", http.StatusUnauthorized)
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, properties)
}

// setPropertyStatus handles HTTP requests on "/admin/properties/status" endpoint
func (h *handler) setPropertyStatus(w http.ResponseWriter, r *http.Request) {
	if access := h.gate.RequireAdmin(); !access.Granted {
		h.writeJSON(w, http.StatusForbidden, access)
		return
	}

	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	status, ok := optString(w, v, "status")
	if !ok {
		return
	}
	if status == nil {
		http.Error(w, `Missing Field "status"`, http.StatusBadRequest)
		return
	}

	p, found, err := h.listing.SetStatus(id, storage.Status(*status))
	if err != nil {
		if errs, isValidation := listing.AsValidationErrors(err); isValidation {
			h.writeValidation(w, errs)
			return
		}
		h.internalError(w, err)
		return
	}

	if !found {
		h.writeJSON(w, http.StatusOK, map[string]bool{"found": false})
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// listServices handles HTTP requests on "/services/get" endpoint
func (h *handler) listServices(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Services())
}

// createChat handles HTTP requests on "/chats/add" endpoint
func (h *handler) createChat(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	propertyID, ok := requiredID(w, v, "propertyId")
	if !ok {
		return
	}

	ownerName, ok := optString(w, v, "ownerName")
	if !ok {
		return
	}
	name := ""
	if ownerName != nil {
		name = *ownerName
	}

	c, err := h.listing.StartChat(propertyID, name)
	if err != nil {
		if errs, isValidation := listing.AsValidationErrors(err); isValidation {
			h.writeValidation(w, errs)
			return
		}
		h.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, err = w.Write([]byte(`{"id":` + strconv.FormatInt(c.ID, 10) + `}`))
	if err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}

// listChats handles HTTP requests on "/chats/get" endpoint
func (h *handler) listChats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Chats())
}

// findChat handles HTTP requests on "/chats/find" endpoint
func (h *handler) findChat(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	c, found := h.store.Chat(id)
	if !found {
		http.Error(w, "Chat does not exist", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// myChats handles HTTP requests on "/chats/mine" endpoint
func (h *handler) myChats(w http.ResponseWriter, _ *http.Request) {
	chats, err := h.gate.MyChats(h.store)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			http.Error(w, "Login required", http.StatusUnauthorized)
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, chats)
}

// markChatRead handles HTTP requests on "/chats/read" endpoint
func (h *handler) markChatRead(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	id, ok := requiredID(w, v, "id")
	if !ok {
		return
	}

	c, found := h.listing.MarkChatRead(id)
	if !found {
		h.writeJSON(w, http.StatusOK, map[string]bool{"found": false})
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// createMessage handles HTTP requests on "/messages/add" endpoint
func (h *handler) createMessage(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	chatID, ok := requiredID(w, v, "chat")
	if !ok {
		return
	}

	text, ok := optString(w, v, "text")
	if !ok {
		return
	}
	sender, ok := optString(w, v, "sender")
	if !ok {
		return
	}

	var msgText string
	if text != nil {
		msgText = *text
	}
	from := storage.SenderUser
	if sender != nil {
		from = storage.Sender(*sender)
	}

	c, found, err := h.listing.SendMessage(chatID, msgText, from)
	if err != nil {
		if errs, isValidation := listing.AsValidationErrors(err); isValidation {
			h.writeValidation(w, errs)
			return
		}
		h.internalError(w, err)
		return
	}

	if !found {
		h.writeJSON(w, http.StatusOK, map[string]bool{"found": false})
		return
	}

	h.writeJSON(w, http.StatusCreated, c)
}

// login handles HTTP requests on "/session/login" endpoint
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	var u session.User
	for field, dst := range map[string]*string{
		"id":    &u.ID,
		"name":  &u.Name,
		"email": &u.Email,
		"phone": &u.Phone,
	} {
		s, ok := optString(w, v, field)
		if !ok {
			return
		}
		if s != nil {
			*dst = *s
		}
	}

	role, ok := optString(w, v, "role")
	if !ok {
		return
	}
	if role != nil {
		u.Role = session.Role(*role)
	}

	u, err := h.gate.Login(r.Context(), u)
	if err != nil {
		if errors.Is(err, session.ErrEmailRequired) {
			http.Error(w, `Missing Field "email"`, http.StatusBadRequest)
			return
		}
		if errors.Is(err, session.ErrInvalidRole) {
			http.Error(w, `Field "role" must be one of "user", "admin"`, http.StatusBadRequest)
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, u)
}

// register handles HTTP requests on "/session/register" endpoint
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	v, release, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	defer release()

	var reg session.Registration
	for field, dst := range map[string]*string{
		"name":  &reg.Name,
		"email": &reg.Email,
		"phone": &reg.Phone,
	} {
		s, ok := optString(w, v, field)
		if !ok {
			return
		}
		if s != nil {
			*dst = *s
		}
	}

	u, err := h.gate.Register(r.Context(), reg)
	if err != nil {
		if errors.Is(err, session.ErrEmailRequired) {
			http.Error(w, `Missing Field "email"`, http.StatusBadRequest)
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, u)
}

// logout handles HTTP requests on "/session/logout" endpoint
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context()); err != nil {
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentUser handles HTTP requests on "/session/current" endpoint
func (h *handler) currentUser(w http.ResponseWriter, _ *http.Request) {
	u, ok := h.gate.Current()
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// userDashboard handles HTTP requests on "/dashboard/user" endpoint
func (h *handler) userDashboard(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.gate.UserDashboard(h.store)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			http.Error(w, "Login required", http.StatusUnauthorized)
			return
		}
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// adminDashboard handles HTTP requests on "/dashboard/admin" endpoint
func (h *handler) adminDashboard(w http.ResponseWriter, _ *http.Request) {
	stats, access := h.gate.AdminDashboard(h.store)
	if !access.Granted {
		h.writeJSON(w, http.StatusForbidden, access)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// submitIntake handles HTTP requests on "/intake/add" endpoint
func (h *handler) submitIntake(w http.ResponseWriter, r *http.Request) {
	var s intake.Submission
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "Malformed intake form", http.StatusBadRequest)
		return
	}

	accepted, err := h.desk.Submit(s)
	if err != nil {
		var errs intake.ValidationErrors
		switch {
		case errors.As(err, &errs):
			h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		case errors.Is(err, intake.ErrUnknownKind):
			http.Error(w, `Field "kind" must be one of "parent", "tutor"`, http.StatusBadRequest)
		default:
			h.internalError(w, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, accepted)
}
