package domain

import (
	"encoding/json"
	"time"
)

// User owns zero or more subscriptions. Email and Phone are the contact
// identifiers surfaced in match results. Settings holds account-level
// preferences opaque to the matching core.
type User struct {
	ID        uint
	Email     string
	Phone     string
	Active    bool
	Settings  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
