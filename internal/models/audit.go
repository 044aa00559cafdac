package models

import (
	"time"
)

// ImportBatch is the persisted record of one commit call, used as the audit
// correlation point for every entity the commit created.
type ImportBatch struct {
	ID                string    `json:"import_batch_id" db:"id"`
	Entity            string    `json:"entity" db:"entity"`
	Actor             string    `json:"actor" db:"actor"`
	Total             int       `json:"total" db:"total"`
	Created           int       `json:"created" db:"created"`
	Skipped           int       `json:"skipped" db:"skipped"`
	Failed            int       `json:"failed" db:"failed"`
	Ready             int       `json:"ready" db:"ready"`
	ReadyWithWarnings int       `json:"ready_with_warnings" db:"ready_with_warnings"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// AuditEntry is one row of the admin audit trail
type AuditEntry struct {
	ID        string    `json:"id" db:"id"`
	Actor     string    `json:"actor" db:"actor"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  string    `json:"entity_id" db:"entity_id"`
	BatchID   *string   `json:"import_batch_id,omitempty" db:"import_batch_id"`
	Detail    string    `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
