package models

import (
	"time"
)

// Cadet represents a trainee undergoing vessel-based training
type Cadet struct {
	ID          string    `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name"`
	Email       string    `json:"email" db:"email"`
	TraineeType string    `json:"trainee_type" db:"trainee_type"`
	RankLabel   string    `json:"rank_label" db:"rank_label"`
	Nationality string    `json:"nationality,omitempty" db:"nationality"`
	TRBRequired bool      `json:"trb_required" db:"trb_required"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TraineeProfile describes the fields derived from a trainee type.
type TraineeProfile struct {
	RankLabel   string
	Category    string // "officer_trainee" or "rating"
	TRBRequired bool
}

// TraineeTypes defines the allowed trainee type codes and their derived profile.
// Cadet categories carry a Training Record Book; ratings do not.
var TraineeTypes = map[string]TraineeProfile{
	"deck_cadet":              {RankLabel: "Deck Cadet", Category: "officer_trainee", TRBRequired: true},
	"engine_cadet":            {RankLabel: "Engine Cadet", Category: "officer_trainee", TRBRequired: true},
	"electro_technical_cadet": {RankLabel: "Electro-Technical Cadet", Category: "officer_trainee", TRBRequired: true},
	"deck_rating":             {RankLabel: "Deck Rating", Category: "rating", TRBRequired: false},
	"engine_rating":           {RankLabel: "Engine Rating", Category: "rating", TRBRequired: false},
}
