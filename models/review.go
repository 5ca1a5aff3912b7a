package models

import "time"

// Review is a user's writeup about a movie. Immutable after creation —
// there is no edit or delete flow, only new reviews.
//
// ID is a 24-hex-char object identifier kept for compatibility with the
// legacy document store the app was migrated from. NumericID is the short
// display identifier shown in the UI and used in share links.
type Review struct {
	ID        string `gorm:"primaryKey;size:24" json:"id"`
	NumericID int64  `gorm:"uniqueIndex;not null" json:"numeric_id"`

	UserID     string `gorm:"index;not null" json:"user_id"`
	MovieTitle string `gorm:"not null" json:"movie_title"`
	MovieSlug  string `gorm:"index;not null" json:"movie_slug"`
	Rating     int    `gorm:"not null" json:"rating"` // 1..10
	Body       string `gorm:"type:text" json:"body"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
