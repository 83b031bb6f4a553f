package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"rental-marketplace/internal/intake"
	"rental-marketplace/internal/listing"
	"rental-marketplace/internal/persist"
	"rental-marketplace/internal/persist/zapadapter"
	"rental-marketplace/internal/session"
	"rental-marketplace/internal/storage"
	mytesting "rental-marketplace/internal/testing"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func bootstrapServer(t *testing.T) http.Handler {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	sugar := logger.Sugar()

	store := storage.New(sugar, storage.WithSeed())
	persister, err := persist.NewFile(sugar, t.TempDir())
	require.NoError(t, err)
	gate, err := session.Open(context.Background(), sugar, persister)
	require.NoError(t, err)

	srv, err := NewServer(sugar, Deps{
		Store:   store,
		Listing: listing.NewService(sugar, store),
		Gate:    gate,
		Desk:    intake.NewDesk(sugar),
	})
	require.NoError(t, err)

	return srv.Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	req, err := http.NewRequest("POST", path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func register(t *testing.T, h http.Handler, email string) session.User {
	rr := post(t, h, "/session/register", `{"name":"Test User","email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var u session.User
	decode(t, rr, &u)
	return u
}

func propertyIDs(t *testing.T, rr *httptest.ResponseRecorder) []int64 {
	var properties []storage.Property
	decode(t, rr, &properties)
	return mytesting.IDs(properties, func(p storage.Property) int64 { return p.ID })
}

const validProperty = `{
	"title":"Sunny flat",
	"location":"Indiranagar, Bangalore",
	"price":30000,
	"type":"apartment",
	"bedrooms":"2",
	"bathrooms":1,
	"area":900,
	"description":"Close to the metro",
	"images":["https://example.com/1.jpg"],
	"amenities":["Parking"]
}`

func statusOkHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestEnforcePostJson(t *testing.T) {
	t.Parallel()

	payload := bytes.NewBuffer([]byte(`{"title":"` + mytesting.RandString() + `"}`))
	req, err := http.NewRequest("POST", "/", payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler := enforcePostJson(http.HandlerFunc(statusOkHandler))

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestEnforcePostJson_NotPost(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("GET", "/", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	require.Equal(t, http.StatusText(http.StatusMethodNotAllowed)+"\n", rr.Body.String())
}

func TestEnforcePostJson_MalformedContentType(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "1:2\n+/-")

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Malformed Content-Type header\n", rr.Body.String())
}

func TestEnforcePostJson_UnsupportedContentType(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	require.Equal(t, "Content-Type header must be application/json\n", rr.Body.String())
}

func TestEnforcePostJson_BlankContentType(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(`{}`))
	require.NoError(t, err)

	var seen string
	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", seen)
}

func TestEnforcePostJson_NoBody(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("POST", "/", bytes.NewBuffer(nil))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "No body provided\n", rr.Body.String())
}

func TestEnforcePostJson_MalformedJSON(t *testing.T) {
	t.Parallel()

	payload := bytes.NewBuffer([]byte(`{"title":` + mytesting.RandString() + `"}`))
	req, err := http.NewRequest("POST", "/", payload)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Malformed JSON\n", rr.Body.String())
}

func TestEnforcePostJson_BodyTooLarge(t *testing.T) {
	t.Parallel()

	big := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(big))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(statusOkHandler)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.Equal(t, "Request body too large\n", rr.Body.String())
}

func TestEnforcePostJson_BodyReadable(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest("POST", "/", bytes.NewBufferString(`{"id":1}`))
	require.NoError(t, err)

	var body []byte
	rr := httptest.NewRecorder()
	enforcePostJson(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	require.Equal(t, `{"id":1}`, string(body))
}

func TestLogRequests(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	var id string
	handler := logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ = zapadapter.IDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}), zap.New(core))

	req, err := http.NewRequest("POST", "/chats/get", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, id)

	incoming := logs.FilterMessage("incoming http request").All()
	require.Len(t, incoming, 1)
	require.Equal(t, id, incoming[0].ContextMap()["id"])
	require.Equal(t, "/chats/get", incoming[0].ContextMap()["uri"])

	served := logs.FilterMessage("http request served").All()
	require.Len(t, served, 1)
	require.Equal(t, int64(http.StatusTeapot), served[0].ContextMap()["status"])
}

func TestNewServerIncompleteDeps(t *testing.T) {
	t.Parallel()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	_, err = NewServer(logger.Sugar(), Deps{})
	require.Error(t, err)
}

func TestFilterProperties(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/properties/get", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, []int64{1, 2, 3, 4}, propertyIDs(t, rr))

	rr = post(t, h, "/properties/get", `{"criteria":{"type":"house"}}`)
	require.Equal(t, []int64{2}, propertyIDs(t, rr))

	rr = post(t, h, "/properties/get", `{"criteria":{"minPrice":30000,"type":"any"}}`)
	require.Equal(t, []int64{1, 2}, propertyIDs(t, rr))

	rr = post(t, h, "/properties/get", `{"criteria":{"minPrice":"abc"},"query":"pune"}`)
	require.Equal(t, []int64{4}, propertyIDs(t, rr))

	rr = post(t, h, "/properties/get", `{"criteria":{"location":"Nowhere"}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", rr.Body.String())
}

func TestFilterProperties_BadCriteria(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/properties/get", `{"criteria":"house"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "criteria" must be an object`+"\n", rr.Body.String())

	rr = post(t, h, "/properties/get", `{"criteria":{"amenities":["Gym",1]}}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Each item in "amenities" array field must be a string`+"\n", rr.Body.String())
}

func TestFindProperty(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/properties/find", `{"id":2}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var p storage.Property
	decode(t, rr, &p)
	require.Equal(t, int64(2), p.ID)
	require.Equal(t, "Priya Reddy", p.Owner.Name)
}

func TestFindProperty_Errors(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	for _, tc := range []struct {
		body   string
		status int
		msg    string
	}{
		{`{}`, http.StatusBadRequest, `Missing Field "id"`},
		{`{"id":"one"}`, http.StatusBadRequest, `Field "id" must be a 64-bit integer value`},
		{`{"id":0}`, http.StatusBadRequest, `Field "id" must be a valid id greater than zero`},
		{`{"id":999}`, http.StatusNotFound, "Property does not exist"},
	} {
		rr := post(t, h, "/properties/find", tc.body)
		require.Equal(t, tc.status, rr.Code, tc.body)
		require.Equal(t, tc.msg+"\n", rr.Body.String(), tc.body)
	}
}

func TestCreateProperty(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/properties/add", validProperty)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Login required\n", rr.Body.String())

	u := register(t, h, mytesting.RandEmail())

	rr = post(t, h, "/properties/add", validProperty)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, `{"id":5}`, rr.Body.String())

	rr = post(t, h, "/properties/find", `{"id":5}`)
	var p storage.Property
	decode(t, rr, &p)
	require.Equal(t, u.Email, p.Owner.Email)
	require.Equal(t, session.DefaultOwnerPhone, p.Owner.Phone)
	require.Equal(t, 2, p.Bedrooms)
	require.Equal(t, storage.Unfurnished, p.Furnishing)
	require.True(t, p.Available)

	rr = post(t, h, "/properties/get", `{}`)
	require.Equal(t, []int64{5, 1, 2, 3, 4}, propertyIDs(t, rr))

	rr = post(t, h, "/properties/mine", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []int64{5}, propertyIDs(t, rr))
}

func TestCreateProperty_Validation(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)
	register(t, h, mytesting.RandEmail())

	rr := post(t, h, "/properties/add", `{"title":"  ","price":"lots","images":[" "]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rr, &body)
	require.Equal(t, "Title is required", body.Errors["title"])
	require.Equal(t, "Valid price is required", body.Errors["price"])
	require.Equal(t, "At least one image URL is required", body.Errors["images"])
	require.Contains(t, body.Errors, "location")

	rr = post(t, h, "/properties/get", `{}`)
	require.Equal(t, []int64{1, 2, 3, 4}, propertyIDs(t, rr))
}

func TestCreateProperty_WrongFieldType(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)
	register(t, h, mytesting.RandEmail())

	rr := post(t, h, "/properties/add", `{"title":42}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "title" must be a string`+"\n", rr.Body.String())

	rr = post(t, h, "/properties/add", `{"available":"yes"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "available" must be a boolean`+"\n", rr.Body.String())
}

func TestUpdateProperty(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)
	register(t, h, mytesting.RandEmail())

	rr := post(t, h, "/properties/update", `{"id":1,"price":47000,"available":false}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var p storage.Property
	decode(t, rr, &p)
	require.Equal(t, 47000, p.Price)
	require.False(t, p.Available)
	require.Equal(t, "Luxury 2BHK Apartment in Bandra", p.Title)

	rr = post(t, h, "/properties/update", `{"id":999,"price":47000}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"found":false}`, rr.Body.String())

	rr = post(t, h, "/properties/update", `{"id":1,"title":""}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Title is required")
}

func TestDeleteProperty(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)
	register(t, h, mytesting.RandEmail())

	rr := post(t, h, "/properties/delete", `{"id":3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"found":true}`, rr.Body.String())

	rr = post(t, h, "/properties/find", `{"id":3}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, h, "/properties/delete", `{"id":3}`)
	require.Equal(t, `{"found":false}`, rr.Body.String())
}

func TestMyProperties_LoginRequired(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	for _, path := range []string{"/properties/mine", "/chats/mine", "/dashboard/user", "/properties/update", "/properties/delete"} {
		rr := post(t, h, path, `{"id":1}`)
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestCreateChat(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/chats/add", `{"propertyId":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, `{"id":3}`, rr.Body.String())

	rr = post(t, h, "/chats/find", `{"id":3}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var c storage.Chat
	decode(t, rr, &c)
	require.Equal(t, int64(1), c.PropertyID)
	require.Equal(t, "Rajesh Sharma", c.OwnerName)
	require.Empty(t, c.Messages)
	require.Nil(t, c.LastActivity)

	rr = post(t, h, "/chats/get", `{}`)
	var chats []storage.Chat
	decode(t, rr, &chats)
	require.Equal(t, []int64{3, 1, 2}, mytesting.IDs(chats, func(c storage.Chat) int64 { return c.ID }))
}

func TestCreateChat_Errors(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/chats/add", `{"ownerName":"Someone"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Missing Field "propertyId"`+"\n", rr.Body.String())

	rr = post(t, h, "/chats/add", `{"propertyId":999}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), `"ownerName"`)

	rr = post(t, h, "/chats/find", `{"id":999}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Chat does not exist\n", rr.Body.String())
}

func TestCreateMessage(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/messages/add", `{"chat":2,"text":"  Still available?  ","sender":"owner"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var c storage.Chat
	decode(t, rr, &c)
	require.Equal(t, 2, c.UnreadCount)
	require.Equal(t, "Still available?", c.LastMessage)
	require.NotNil(t, c.LastActivity)

	rr = post(t, h, "/messages/add", `{"chat":2,"text":"yes"}`)
	decode(t, rr, &c)
	require.Equal(t, storage.SenderUser, c.Messages[len(c.Messages)-1].Sender)
	require.Equal(t, 2, c.UnreadCount)

	rr = post(t, h, "/chats/read", `{"id":2}`)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &c)
	require.Equal(t, 0, c.UnreadCount)
}

func TestCreateMessage_Errors(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/messages/add", `{"text":"`+mytesting.RandString()+`"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Missing Field "chat"`+"\n", rr.Body.String())

	rr = post(t, h, "/messages/add", `{"chat":-1,"text":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "chat" must be a valid id greater than zero`+"\n", rr.Body.String())

	rr = post(t, h, "/messages/add", `{"chat":1,"text":"   ","sender":"bot"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rr, &body)
	require.Equal(t, "Message text is required", body.Errors["text"])
	require.Contains(t, body.Errors, "sender")

	rr = post(t, h, "/messages/add", `{"chat":999,"text":"hi"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"found":false}`, rr.Body.String())

	rr = post(t, h, "/chats/read", `{"id":999}`)
	require.Equal(t, `{"found":false}`, rr.Body.String())
}

func TestSession(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/session/current", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"user":null}`, rr.Body.String())

	u := register(t, h, "new@example.com")
	require.NotEmpty(t, u.ID)
	require.Equal(t, session.RoleUser, u.Role)

	rr = post(t, h, "/session/current", `{}`)
	var current struct {
		User *session.User `json:"user"`
	}
	decode(t, rr, &current)
	require.NotNil(t, current.User)
	require.Equal(t, u.ID, current.User.ID)

	rr = post(t, h, "/session/logout", `{}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = post(t, h, "/session/current", `{}`)
	require.Equal(t, `{"user":null}`, rr.Body.String())
}

func TestSession_EmailRequired(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/session/register", `{"name":"No Mail","email":"  "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Missing Field "email"`+"\n", rr.Body.String())

	rr = post(t, h, "/session/login", `{"name":"No Mail"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_UnknownRole(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/session/login", `{"email":"a@x.com","role":"superuser"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "role" must be one of "user", "admin"`+"\n", rr.Body.String())

	rr = post(t, h, "/session/current", `{}`)
	require.Equal(t, `{"user":null}`, rr.Body.String())
}

func TestDashboards(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/dashboard/admin", `{}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, `{"granted":false,"reason":"login required"}`, rr.Body.String())

	rr = post(t, h, "/session/login", `{"name":"Priya Reddy","email":"priya@email.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = post(t, h, "/dashboard/admin", `{}`)
	require.Equal(t, `{"granted":false,"reason":"access denied"}`, rr.Body.String())

	rr = post(t, h, "/dashboard/user", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `{"properties":1,"chats":1,"monthlyTotal":35000}`, rr.Body.String())

	rr = post(t, h, "/session/login", `{"name":"Admin","email":"admin@example.com","role":"admin"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = post(t, h, "/dashboard/admin", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats session.AdminStats
	decode(t, rr, &stats)
	require.Equal(t, 4, stats.Active)
	require.Equal(t, 2, stats.Chats)
	require.Equal(t, 130000, stats.TotalRevenue)
}

func TestSetPropertyStatus(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/admin/properties/status", `{"id":1,"status":"pending"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)

	post(t, h, "/session/login", `{"email":"admin@example.com","role":"admin"}`)

	rr = post(t, h, "/admin/properties/status", `{"id":1,"status":"pending"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var p storage.Property
	decode(t, rr, &p)
	require.Equal(t, storage.StatusPending, p.Status)

	rr = post(t, h, "/admin/properties/status", `{"id":1,"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), `"status"`)

	rr = post(t, h, "/admin/properties/status", `{"id":1}`)
	require.Equal(t, `Missing Field "status"`+"\n", rr.Body.String())

	rr = post(t, h, "/admin/properties/status", `{"id":999,"status":"inactive"}`)
	require.Equal(t, `{"found":false}`, rr.Body.String())
}

func TestListServices(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/services/get", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var services []storage.Service
	decode(t, rr, &services)
	require.Len(t, services, 6)
	require.Equal(t, "Packers & Movers", services[0].Name)
}

func TestSubmitIntake(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/intake/add", `{"kind":"tutor","tutor":{
		"name":"Ravi","contact":"9876543210","email":"ravi@example.com",
		"subject":"Physics","grade":"10th","degree":"Other","customDegree":" B.A ",
		"qualification":"B.Ed","travelAreas":"Kukatpally"}}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var s intake.Submission
	decode(t, rr, &s)
	require.Equal(t, intake.KindTutor, s.Kind)
	require.Equal(t, "B.A", s.Tutor.Degree)

	rr = post(t, h, "/intake/add", `{"kind":"parent","parent":{"name":"","contact":"123","email":"a@b.co","subject":"Science","grade":"3rd"}}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rr, &body)
	require.Equal(t, map[string]string{
		"name":    "This field is required",
		"contact": "Contact number must have 10 digits",
	}, body.Errors)

	rr = post(t, h, "/intake/add", `{"kind":"plumber"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, `Field "kind" must be one of "parent", "tutor"`+"\n", rr.Body.String())

	rr = post(t, h, "/intake/add", `{"kind":["parent"]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Malformed intake form\n", rr.Body.String())
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	post(t, h, "/services/get", `{}`)
	post(t, h, "/properties/find", `{"id":999}`)

	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.True(t, strings.Contains(body, `http_requests_total{code="200",path="/services/get"} 1`), body)
	require.True(t, strings.Contains(body, `http_requests_total{code="404",path="/properties/find"} 1`), body)
	require.True(t, strings.Contains(body, `http_request_duration_seconds_count{path="/services/get"} 1`), body)
}

func TestMetrics_RejectedRequestsCounted(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	req, err := http.NewRequest("GET", "/chats/get", nil)
	require.NoError(t, err)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req, err = http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Contains(t, rr.Body.String(), `http_requests_total{code="405",path="/chats/get"} 1`)
}

func TestMyChats(t *testing.T) {
	t.Parallel()
	h := bootstrapServer(t)

	rr := post(t, h, "/session/login", `{"name":"Rajesh Sharma","email":"rajesh@email.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	post(t, h, "/chats/add", `{"propertyId":2}`)

	rr = post(t, h, "/chats/mine", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var chats []storage.Chat
	decode(t, rr, &chats)
	require.Equal(t, []int64{1}, mytesting.IDs(chats, func(c storage.Chat) int64 { return c.ID }))
}
