package models

import "time"

// Player is the slice of identity the arena needs: an opaque id and a name to show.
type Player struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	LastSeenAt  time.Time `json:"last_seen_at" db:"last_seen_at"`
}
