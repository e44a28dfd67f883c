package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/starter-web/internal/models"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/isdelr/starter-web/internal/views"
	"github.com/isdelr/starter-web/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItems satisfies services.ItemServiceProvider with canned results.
type fakeItems struct {
	item  models.Item
	items []models.Item
	count int
	err   error
}

func (f *fakeItems) ListItems(context.Context, string) ([]models.Item, error) { return f.items, f.err }
func (f *fakeItems) ListRecentItems(context.Context, int) ([]models.Item, error) {
	return f.items, f.err
}
func (f *fakeItems) CountItems(context.Context) (int, error) { return f.count, f.err }
func (f *fakeItems) GetItemByID(context.Context, string) (models.Item, error) { return f.item, f.err }
func (f *fakeItems) CreateItem(_ context.Context, i models.Item) (models.Item, error) {
	return i, f.err
}
func (f *fakeItems) UpdateItem(_ context.Context, _ string, i models.Item) (models.Item, error) {
	return i, f.err
}
func (f *fakeItems) DeleteItem(context.Context, string) error { return f.err }

// fakeUsers satisfies services.UserServiceProvider with canned results.
type fakeUsers struct {
	users []models.User
	err   error
}

func (f *fakeUsers) ListUsers(context.Context) ([]models.User, error) { return f.users, f.err }
func (f *fakeUsers) CountUsers(context.Context) (int, error) { return len(f.users), f.err }
func (f *fakeUsers) GetUserByID(context.Context, string) (models.User, error) {
	return models.User{}, services.ErrNotFound
}
func (f *fakeUsers) CreateUser(context.Context, string, string, string) (models.User, error) {
	return models.User{}, f.err
}
func (f *fakeUsers) UpdateUser(context.Context, string, string, string) (models.User, error) {
	return models.User{}, f.err
}
func (f *fakeUsers) UpdatePassword(context.Context, string, string, string) error { return f.err }
func (f *fakeUsers) DeleteUser(context.Context, string) error { return f.err }
func (f *fakeUsers) AuthenticateUser(context.Context, string, string) (models.User, error) {
	return models.User{}, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestItemHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		service    *fakeItems
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			service:    &fakeItems{item: models.Item{ID: "i1", OwnerID: "u1", Title: "Lamp", Price: 4}},
			wantStatus: http.StatusOK,
			wantBody:   `"title":"Lamp"`,
		},
		{
			name:       "not found",
			service:    &fakeItems{err: services.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `"error":"Item not found"`,
		},
		{
			name:       "storage failure hides details",
			service:    &fakeItems{err: errors.New("disk I/O error")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"error":"Internal server error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewItemHandler(tt.service)
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/i1", nil), "id", "i1")
			rec := httptest.NewRecorder()

			h.Get(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "disk I/O")
		})
	}
}

func TestItemHandler_CreateWithoutCaller(t *testing.T) {
	h := NewItemHandler(&fakeItems{})
	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"title":"Lamp"}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeAndValidate_EmptyBody(t *testing.T) {
	var dst struct {
		Name string `json:"name" validate:"required"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	rec := httptest.NewRecorder()

	ok := decodeAndValidate(rec, req, &dst)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body is empty")
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(fakePinger{}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(fakePinger{err: errors.New("database is locked")}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "locked")
}

func newViewHandler(t *testing.T, users *fakeUsers, items *fakeItems) *ViewHandler {
	t.Helper()
	engine, err := views.New(web.Templates())
	require.NoError(t, err)
	return NewViewHandler(users, items, engine)
}

func TestViewHandler_Home(t *testing.T) {
	h := newViewHandler(t, &fakeUsers{users: []models.User{{ID: "u1", Username: "alice"}}}, &fakeItems{count: 7})
	rec := httptest.NewRecorder()

	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Home</title>")
	assert.Contains(t, body, `<span class="stat-value">7</span>`)
	assert.Contains(t, body, `<a href="/" class="active">Home</a>`)
}

func TestViewHandler_DashboardServiceFailure(t *testing.T) {
	h := newViewHandler(t, &fakeUsers{}, &fakeItems{err: errors.New("boom")})
	rec := httptest.NewRecorder()

	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestViewHandler_NotFound(t *testing.T) {
	h := newViewHandler(t, &fakeUsers{}, &fakeItems{})
	rec := httptest.NewRecorder()

	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Not Found</title>")
	assert.Contains(t, rec.Body.String(), "<h1>404</h1>")
}

func TestDecodeAndValidate_TrailingData(t *testing.T) {
	bodies := map[string]string{
		"garbage":      `{"name":"a"} garbage`,
		"second value": `{"name":"a"}{"name":"b"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name" validate:"required"`
			}
			rec := httptest.NewRecorder()

			ok := decodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &dst)

			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	var dst struct {
		Name string `json:"name" validate:"required"`
	}
	rec := httptest.NewRecorder()
	ok := decodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"name\":\"a\"}\n  ")), &dst)
	assert.True(t, ok, rec.Body.String())
	assert.Equal(t, "a", dst.Name)
}

func TestViewHandler_DashboardOwnerFlash(t *testing.T) {
	users := &fakeUsers{users: []models.User{{ID: "u1", Username: "alice"}}}
	items := &fakeItems{items: []models.Item{{ID: "i1", OwnerID: "u1", Title: "Lamp"}}}
	h := newViewHandler(t, users, items)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard?owner=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="flash flash-info" role="status">Showing 1 item(s) owned by alice.</div>`)

	rec = httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard?owner=nobody", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No user has that id.")

	rec = httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="flash`)
}
