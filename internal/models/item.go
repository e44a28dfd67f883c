package models

import "time"

// Item is a resource owned by a single user.
type Item struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
