// Package domain contains the core business entities and domain logic for the PageTurn reading tracker.
package domain

import "time"

// Book represents a catalog entry users can read.
// Catalog entries are immutable reference data - the tracker never mutates
// them, it only attaches reading sessions and statistics to them.
type Book struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Author           string    `json:"author"`
	Year             int       `json:"year"`
	ShortDescription string    `json:"short_description"`
	FullDescription  string    `json:"full_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (b *Book) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}
