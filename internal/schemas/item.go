package schemas

import (
	"time"

	"github.com/isdelr/starter-web/internal/models"
)

// ItemCreate is the payload for a new item. The owner is taken from the caller's token.
type ItemCreate struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// ItemUpdate replaces an item's attributes.
type ItemUpdate struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewItemResponse builds the response schema from a stored item.
func NewItemResponse(i models.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		Title:       i.Title,
		Description: i.Description,
		Price:       i.Price,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// NewItemResponses maps a slice of items, returning an empty (non-nil) slice for no items.
func NewItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, NewItemResponse(i))
	}
	return out
}

// ToModel copies the create payload onto a new item owned by ownerID.
func (c ItemCreate) ToModel(ownerID string) models.Item {
	return models.Item{
		OwnerID:     ownerID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
	}
}
