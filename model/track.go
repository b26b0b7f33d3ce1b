package model

import "time"

// Track represents a user-owned audio item in the library.
//
// FilePath is the object storage key and is unique per user. URL is derived
// at read time from a signed or public storage URL and is never persisted;
// it is omitted from responses when neither resolution path works.
type Track struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"-"` // storage object key, not exposed in API directly
	Duration  *int      `json:"duration,omitempty"` // seconds, absent when the probe failed
	CreatedAt time.Time `json:"createdAt"`
	URL       string    `json:"url,omitempty"`
}
