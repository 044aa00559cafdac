package models

import (
	"time"
)

// Vessel represents a training vessel identified by its IMO number
type Vessel struct {
	ID           string    `json:"id" db:"id"`
	IMONumber    string    `json:"imo_number" db:"imo_number"`
	Name         string    `json:"vessel_name" db:"vessel_name"`
	VesselType   string    `json:"vessel_type" db:"vessel_type"`
	FlagState    string    `json:"flag_state,omitempty" db:"flag_state"`
	ClassSociety string    `json:"class_society,omitempty" db:"class_society"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ValidIMOChecksum reports whether a 7-digit IMO number has a correct
// check digit (weighted sum of the first six digits, modulo 10).
func ValidIMOChecksum(imo string) bool {
	if len(imo) != 7 {
		return false
	}
	sum := 0
	for i := 0; i < 6; i++ {
		d := imo[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (7 - i)
	}
	last := imo[6]
	if last < '0' || last > '9' {
		return false
	}
	return sum%10 == int(last-'0')
}
