package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/starter-web/internal/models"
	"github.com/isdelr/starter-web/internal/schemas"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/rs/zerolog/log"
)

// ItemHandler handles HTTP requests related to items.
type ItemHandler struct {
	service services.ItemServiceProvider
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service services.ItemServiceProvider) *ItemHandler {
	return &ItemHandler{service: service}
}

// GetAll handles the request to get all items, optionally filtered by ?owner_id=.
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		writeServiceError(w, err, "Item")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewItemResponses(items))
}

// Get handles the request to get a single item by its ID.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.service.GetItemByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Item")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewItemResponse(item))
}

// Create handles the request to create a new item owned by the caller.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	var payload schemas.ItemCreate
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	item, err := h.service.CreateItem(r.Context(), payload.ToModel(owner))
	if err != nil {
		writeServiceError(w, err, "Owner")
		return
	}

	log.Info().Str("item_id", item.ID).Str("owner_id", owner).Msg("Item created")
	writeJSON(w, http.StatusCreated, schemas.NewItemResponse(item))
}

// Update handles the request to update an existing item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requireOwner(w, r, id); !ok {
		return
	}

	var payload schemas.ItemUpdate
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, models.Item{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
	})
	if err != nil {
		writeServiceError(w, err, "Item")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewItemResponse(item))
}

// Delete handles the request to delete an item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requireOwner(w, r, id); !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, err, "Item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireOwner loads the item and checks that the caller owns it.
func (h *ItemHandler) requireOwner(w http.ResponseWriter, r *http.Request, id string) (models.Item, bool) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return models.Item{}, false
	}

	item, err := h.service.GetItemByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Item")
		return models.Item{}, false
	}
	if item.OwnerID != caller {
		writeError(w, http.StatusForbidden, "You do not own this item")
		return models.Item{}, false
	}
	return item, true
}
