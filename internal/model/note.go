package model

import "time"

// Note is one captured page excerpt. CreatedAt is refreshed whenever the
// note is edited, so the working list always surfaces recent activity first.
type Note struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Text        string    `json:"text"`
	SourceImage string    `json:"sourceImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
