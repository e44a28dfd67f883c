package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // Never expose this to the client
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
