package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/dto"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "shareit.db"),
	}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServices(db *database.DB) Services {
	logger := zerolog.Nop()
	bus := events.NewEventBus(&logger)
	events.RegisterDefaultSubscribers(bus, &logger)
	return Services{
		Users:    service.NewUserService(db, &logger),
		Items:    service.NewItemService(db, bus, nil, &logger),
		Bookings: service.NewBookingService(db, bus, nil, &logger),
		Requests: service.NewRequestService(db, nil, &logger),
	}
}

func newTestHTTPServer(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	srv := NewHTTPServer(cfg, newTestServices(newTestDB(t)), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type client struct {
	t   *testing.T
	url string
}

func (c client) do(method, path string, sharer int64, body string) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if sharer != 0 {
		req.Header.Set(models.HeaderSharerUserID, fmt.Sprint(sharer))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

func (c client) decode(raw []byte, v any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(raw, v), string(raw))
}

func (c client) createUser(name string) dto.UserDto {
	c.t.Helper()
	code, raw := c.do(http.MethodPost, "/users", 0, fmt.Sprintf(`{"name":%q,"email":%q}`, name, name+"@example.com"))
	require.Equal(c.t, http.StatusOK, code, string(raw))
	var u dto.UserDto
	c.decode(raw, &u)
	return u
}

func (c client) createItem(owner int64, name string) dto.ItemDto {
	c.t.Helper()
	code, raw := c.do(http.MethodPost, "/items", owner, fmt.Sprintf(`{"name":%q,"description":"for rent","available":true}`, name))
	require.Equal(c.t, http.StatusOK, code, string(raw))
	var it dto.ItemDto
	c.decode(raw, &it)
	return it
}

func (c client) errorBody(raw []byte) ErrorResponse {
	c.t.Helper()
	var e ErrorResponse
	c.decode(raw, &e)
	return e
}

func TestBookingWorkedExample(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})
	c := client{t: t, url: ts.URL}

	user1 := c.createUser("user1")
	user2 := c.createUser("user2")
	item := c.createItem(user2.ID, "drill")

	body := fmt.Sprintf(`{"itemId":%d,"start":"2022-10-15T17:45:00","end":"2022-11-20T15:00:00"}`, item.ID)
	code, raw := c.do(http.MethodPost, "/bookings", user1.ID, body)
	require.Equal(t, http.StatusOK, code, string(raw))
	var booking dto.BookingDto
	c.decode(raw, &booking)
	assert.Equal(t, "WAITING", booking.Status)
	assert.Equal(t, user1.ID, booking.Booker.ID)
	assert.Equal(t, item.ID, booking.Item.ID)
	assert.Equal(t, "drill", booking.Item.Name)
	assert.Contains(t, string(raw), `"start":"2022-10-15T17:45:00"`)

	path := fmt.Sprintf("/bookings/%d?approved=true", booking.ID)
	code, raw = c.do(http.MethodPatch, path, user2.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	c.decode(raw, &booking)
	assert.Equal(t, "APPROVED", booking.Status)

	code, raw = c.do(http.MethodPatch, path, user2.ID, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid booking state in request.", c.errorBody(raw).Message)

	code, _ = c.do(http.MethodPost, "/bookings", user1.ID, body)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})
	c := client{t: t, url: ts.URL}

	owner := c.createUser("owner")
	booker := c.createUser("booker")
	item := c.createItem(owner.ID, "tent")

	tests := []struct {
		name    string
		method  string
		path    string
		sharer  int64
		body    string
		status  int
		message string
	}{
		{"duplicate email", http.MethodPost, "/users", 0, `{"name":"x","email":"owner@example.com"}`, http.StatusConflict, "Email already exists."},
		{"unknown user", http.MethodGet, "/users/999", 0, "", http.StatusNotFound, "User not found."},
		{"unknown item", http.MethodGet, "/items/999", owner.ID, "", http.StatusNotFound, "Item not found."},
		{"unknown request", http.MethodGet, "/requests/999", owner.ID, "", http.StatusNotFound, "Request not found."},
		{"unknown booking", http.MethodGet, "/bookings/999", owner.ID, "", http.StatusNotFound, "Booking not found."},
		{"wrong owner", http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), booker.ID, `{"name":"mine"}`, http.StatusNotFound, "User is not the owner of the item."},
		{"missing header", http.MethodPost, "/items", 0, `{"name":"a","description":"b","available":true}`, http.StatusBadRequest, "Validation error."},
		{"bad header", http.MethodGet, "/items", -3, "", http.StatusBadRequest, "Validation error."},
		{"malformed json", http.MethodPost, "/users", 0, `{"name":`, http.StatusBadRequest, "Validation error."},
		{"empty body", http.MethodPost, "/users", 0, "", http.StatusBadRequest, "Validation error."},
		{"bad paging", http.MethodGet, "/items?from=-1", owner.ID, "", http.StatusBadRequest, "Validation error."},
		{"unknown state", http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", owner.ID, "", http.StatusBadRequest, "Unknown state: UNSUPPORTED_STATUS"},
		{"comment without booking", http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, `{"text":"nice"}`, http.StatusBadRequest, fmt.Sprintf("user %d has no finished booking of item %d", booker.ID, item.ID)},
		{"approved missing", http.MethodPatch, "/bookings/1", owner.ID, "", http.StatusBadRequest, "Validation error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := client{t: t, url: ts.URL}
			code, raw := c.do(tt.method, tt.path, tt.sharer, tt.body)
			assert.Equal(t, tt.status, code, string(raw))
			body := c.errorBody(raw)
			assert.Equal(t, tt.message, body.Message)
			assert.NotEmpty(t, body.Description)
		})
	}
}

func TestItemsAndComments(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})
	c := client{t: t, url: ts.URL}

	owner := c.createUser("owner")
	booker := c.createUser("booker")
	item := c.createItem(owner.ID, "Kayak")

	code, raw := c.do(http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), owner.ID, `{"description":"two seats"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	var patched dto.ItemDto
	c.decode(raw, &patched)
	assert.Equal(t, "Kayak", patched.Name)
	assert.Equal(t, "two seats", patched.Description)
	require.NotNil(t, patched.Available)
	assert.True(t, *patched.Available)

	now := time.Now().UTC()
	body := fmt.Sprintf(`{"itemId":%d,"start":%q,"end":%q}`, item.ID,
		now.Add(-2*time.Hour).Format(models.DateTimeLayout), now.Add(-time.Hour).Format(models.DateTimeLayout))
	code, raw = c.do(http.MethodPost, "/bookings", booker.ID, body)
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw = c.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, `{"text":"smooth ride"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	var comment dto.CommentDto
	c.decode(raw, &comment)
	assert.Equal(t, "booker", comment.AuthorName)
	assert.Equal(t, item.ID, comment.ItemID)

	code, raw = c.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), owner.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var forOwner dto.ItemDtoForOut
	c.decode(raw, &forOwner)
	require.Len(t, forOwner.Comments, 1)
	require.NotNil(t, forOwner.LastBooking)
	assert.Equal(t, booker.ID, forOwner.LastBooking.BookerID)
	assert.Nil(t, forOwner.NextBooking)

	code, raw = c.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), booker.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var forBooker dto.ItemDtoForOut
	c.decode(raw, &forBooker)
	assert.Nil(t, forBooker.LastBooking)

	code, raw = c.do(http.MethodGet, "/items/search?text=kAyAk", booker.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var found []dto.ItemDto
	c.decode(raw, &found)
	require.Len(t, found, 1)

	code, raw = c.do(http.MethodGet, "/items/search?text=", booker.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(raw))

	code, raw = c.do(http.MethodGet, "/items", owner.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var owned []dto.ItemDtoForOut
	c.decode(raw, &owned)
	require.Len(t, owned, 1)

	code, _ = c.do(http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), owner.ID, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), owner.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRequestsAndUsers(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})
	c := client{t: t, url: ts.URL}

	asker := c.createUser("asker")
	owner := c.createUser("owner")

	code, raw := c.do(http.MethodPost, "/requests", asker.ID, `{"description":"need a ladder"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	var req dto.ItemRequestDto
	c.decode(raw, &req)
	assert.NotZero(t, req.ID)
	assert.False(t, req.Created.IsZero())

	code, raw = c.do(http.MethodPost, "/items", owner.ID,
		fmt.Sprintf(`{"name":"ladder","description":"3m","available":true,"requestId":%d}`, req.ID))
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw = c.do(http.MethodGet, "/requests", asker.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var own []dto.ItemRequestDto
	c.decode(raw, &own)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, "ladder", own[0].Items[0].Name)

	code, raw = c.do(http.MethodGet, "/requests/all?from=0&size=5", owner.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var others []dto.ItemRequestDto
	c.decode(raw, &others)
	assert.Len(t, others, 1)

	code, raw = c.do(http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), owner.ID, "")
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw = c.do(http.MethodPatch, fmt.Sprintf("/users/%d", owner.ID), 0, `{"name":"Owner"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	var updated dto.UserDto
	c.decode(raw, &updated)
	assert.Equal(t, "Owner", updated.Name)
	assert.Equal(t, "owner@example.com", updated.Email)

	code, raw = c.do(http.MethodGet, "/users", 0, "")
	require.Equal(t, http.StatusOK, code)
	var users []dto.UserDto
	c.decode(raw, &users)
	assert.Len(t, users, 2)

	code, _ = c.do(http.MethodDelete, fmt.Sprintf("/users/%d", asker.ID), 0, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodGet, fmt.Sprintf("/users/%d", asker.ID), 0, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestExportOwnerBookings(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})
	c := client{t: t, url: ts.URL}

	booker := c.createUser("booker")
	owner := c.createUser("owner")
	item := c.createItem(owner.ID, "projector")
	body := fmt.Sprintf(`{"itemId":%d,"start":"2022-10-15T17:45:00","end":"2022-11-20T15:00:00"}`, item.ID)
	code, raw := c.do(http.MethodPost, "/bookings", booker.ID, body)
	require.Equal(t, http.StatusOK, code, string(raw))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/bookings/owner/export?state=ALL", nil)
	require.NoError(t, err)
	req.Header.Set(models.HeaderSharerUserID, fmt.Sprint(owner.ID))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "projector", rows[1][1])
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestHTTPServer(t, config.ServerConfig{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))

	resp2, err := http.Get(ts.URL + "/users")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEmpty(t, resp2.Header.Get(requestIDHeader))
}
