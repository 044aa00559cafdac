package models

import (
	"time"
)

// TrainingTask is one TRB task a cadet must complete, scoped to a ship type
type TrainingTask struct {
	ID         string    `json:"id" db:"id"`
	PartNumber string    `json:"part_number" db:"part_number"`
	Title      string    `json:"title" db:"title"`
	ShipType   string    `json:"ship_type_name" db:"ship_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TaskKey returns the natural identifier of a task: part number, title and
// ship type combined. Duplicate detection and the unique index use the same key.
func TaskKey(partNumber, title, shipType string) string {
	return partNumber + "|" + title + "|" + shipType
}
