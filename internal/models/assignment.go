package models

import (
	"time"
)

// Assignment links a cadet to a vessel for a period of sea service
type Assignment struct {
	ID         string     `json:"id" db:"id"`
	CadetID    string     `json:"cadet_id" db:"cadet_id"`
	VesselID   string     `json:"vessel_id" db:"vessel_id"`
	DateJoined string     `json:"date_joined" db:"date_joined"` // ISO date
	DateLeft   *string    `json:"date_left,omitempty" db:"date_left"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	// Populated by list queries
	CadetEmail string `json:"cadet_email,omitempty" db:"-"`
	VesselIMO  string `json:"vessel_imo,omitempty" db:"-"`
}

// AssignmentKey returns the natural identifier of an assignment.
func AssignmentKey(cadetID, vesselID, dateJoined string) string {
	return cadetID + "|" + vesselID + "|" + dateJoined
}
