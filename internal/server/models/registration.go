package models

import "time"

// Registration is a persisted public pair. GroupID fingerprints the group
// parameters the pair was computed under.
type Registration struct {
	UserID    string
	GroupID   string
	Y1        []byte
	Y2        []byte
	CreatedAt time.Time
}
