package model

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never exposed in API responses
	CreatedAt    time.Time `json:"createdAt"`
}
