package model

import "time"

// ShareSettings holds per-link visibility toggles for shared collections.
type ShareSettings struct {
	ShowValues    bool `json:"show_values"`
	ShowLocations bool `json:"show_locations"`
	ShowNotes     bool `json:"show_notes"`
}

// ShareLink lets a collector publish a read-only view of their active items.
// Links are revoked by clearing IsActive, never deleted.
type ShareLink struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	ShareID   string        `json:"share_id"`
	Settings  ShareSettings `json:"settings"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}
