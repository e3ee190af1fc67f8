package domain

import "time"

// Tag is a user-owned label applied to recipes.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
