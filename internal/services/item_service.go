package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/starter-web/internal/models"
)

// ItemServiceProvider defines the interface for item services.
type ItemServiceProvider interface {
	ListItems(ctx context.Context, ownerID string) ([]models.Item, error)
	ListRecentItems(ctx context.Context, limit int) ([]models.Item, error)
	CountItems(ctx context.Context) (int, error)
	GetItemByID(ctx context.Context, id string) (models.Item, error)
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, id string, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ItemService provides business logic for item management.
type ItemService struct {
	db *sql.DB
}

// NewItemService creates a new ItemService.
func NewItemService(db *sql.DB) *ItemService {
	return &ItemService{db: db}
}

const itemColumns = "id, owner_id, title, description, price, created_at, updated_at"

// scanItem is a helper to scan an item from a row or rows object.
func scanItem(scanner interface{ Scan(...any) error }) (models.Item, error) {
	var i models.Item
	err := scanner.Scan(&i.ID, &i.OwnerID, &i.Title, &i.Description, &i.Price, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (s *ItemService) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListItems retrieves all items, or only those of ownerID when it is non-empty.
func (s *ItemService) ListItems(ctx context.Context, ownerID string) ([]models.Item, error) {
	if ownerID == "" {
		return s.queryItems(ctx, "SELECT "+itemColumns+" FROM items ORDER BY created_at, id")
	}
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM items WHERE owner_id = ? ORDER BY created_at, id", ownerID)
}

// ListRecentItems returns up to limit items, newest first.
func (s *ItemService) ListRecentItems(ctx context.Context, limit int) ([]models.Item, error) {
	return s.queryItems(ctx, "SELECT "+itemColumns+" FROM items ORDER BY created_at DESC, id LIMIT ?", limit)
}

// CountItems returns the total number of items.
func (s *ItemService) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// GetItemByID retrieves a single item by its ID.
func (s *ItemService) GetItemByID(ctx context.Context, id string) (models.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return models.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// CreateItem adds a new item to the database. The owner must be an existing user.
func (s *ItemService) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)", item.OwnerID).Scan(&exists)
	if err != nil {
		return models.Item{}, fmt.Errorf("check owner: %w", err)
	}
	if !exists {
		return models.Item{}, fmt.Errorf("owner %s: %w", item.OwnerID, ErrNotFound)
	}

	now := time.Now().UTC()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO items (id, owner_id, title, description, price, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.OwnerID, item.Title, item.Description, item.Price, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		// The owner can still disappear between the check and the insert.
		if isForeignKeyViolation(err) {
			return models.Item{}, fmt.Errorf("owner %s: %w", item.OwnerID, ErrNotFound)
		}
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// UpdateItem updates an existing item's attributes. Ownership never changes.
func (s *ItemService) UpdateItem(ctx context.Context, id string, item models.Item) (models.Item, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET title = ?, description = ?, price = ?, updated_at = ? WHERE id = ?",
		item.Title, item.Description, item.Price, time.Now().UTC(), id,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	if err := expectRow(res, "item", id); err != nil {
		return models.Item{}, err
	}
	return s.GetItemByID(ctx, id)
}

// DeleteItem removes an item from the database.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return expectRow(res, "item", id)
}
