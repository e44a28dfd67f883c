package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/isdelr/starter-web/internal/auth"
	"github.com/isdelr/starter-web/internal/models"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/isdelr/starter-web/internal/views"
	"github.com/rs/zerolog/log"
)

// dashboardItemLimit caps the items listed on the dashboard.
const dashboardItemLimit = 20

// ViewHandler renders the HTML pages.
type ViewHandler struct {
	users  services.UserServiceProvider
	items  services.ItemServiceProvider
	engine *views.Engine
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(users services.UserServiceProvider, items services.ItemServiceProvider, engine *views.Engine) *ViewHandler {
	return &ViewHandler{users: users, items: items, engine: engine}
}

// newContext seeds the variables every page's layout relies on.
func (h *ViewHandler) newContext(r *http.Request, title string) views.Context {
	return views.NewContext(r, map[string]any{
		"title":       title,
		"currentUser": h.currentUser(r),
	})
}

// currentUser resolves the signed-in user, if any. Lookup failures render as signed out.
func (h *ViewHandler) currentUser(r *http.Request) *models.User {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", claims.UserID).Msg("Token user not found")
		return nil
	}
	return &user
}

// Home renders the landing page.
func (h *ViewHandler) Home(w http.ResponseWriter, r *http.Request) {
	userCount, err := h.users.CountUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	itemCount, err := h.items.CountItems(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	ctx := h.newContext(r, "Home").
		With("userCount", userCount).
		With("itemCount", itemCount)
	h.engine.Render(w, http.StatusOK, "pages/home.html", ctx)
}

// Dashboard renders recent items and the user directory. ?owner= narrows the
// item list to a single owner.
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))

	var (
		items []models.Item
		err   error
	)
	if owner == "" {
		items, err = h.items.ListRecentItems(r.Context(), dashboardItemLimit)
	} else {
		items, err = h.items.ListItems(r.Context(), owner)
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	ctx := h.newContext(r, "Dashboard").
		With("owner", owner).
		With("items", items).
		With("users", users)
	if owner != "" {
		if ownerName, ok := usernameOf(users, owner); ok {
			ctx.WithFlash("info", fmt.Sprintf("Showing %d item(s) owned by %s.", len(items), ownerName))
		} else {
			ctx.WithFlash("error", "No user has that id.")
		}
	}
	h.engine.Render(w, http.StatusOK, "pages/dashboard.html", ctx)
}

func usernameOf(users []models.User, id string) (string, bool) {
	for _, u := range users {
		if u.ID == id {
			return u.Username, true
		}
	}
	return "", false
}

// NotFound renders the error page with a 404.
func (h *ViewHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

// MethodNotAllowed renders the error page with a 405.
func (h *ViewHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "This method is not supported here.")
}

func (h *ViewHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to load page data")
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
}

func (h *ViewHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	ctx := h.newContext(r, http.StatusText(status)).
		With("status", status).
		With("message", message)
	h.engine.Render(w, status, "pages/error.html", ctx)
}
