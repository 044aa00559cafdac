package repository

import (
	"context"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// assignmentRepo is the concrete implementation of AssignmentRepository
type assignmentRepo struct {
	db *database.DB
}

// NewAssignmentRepo creates a new assignment repository
func NewAssignmentRepo(db *database.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

// KeyIndex retrieves the natural keys of all existing assignments
func (r *assignmentRepo) KeyIndex(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT cadet_id, vessel_id, to_char(date_joined, 'YYYY-MM-DD') FROM assignments")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]bool)
	for rows.Next() {
		var cadetID, vesselID, joined string
		if err := rows.Scan(&cadetID, &vesselID, &joined); err != nil {
			return nil, err
		}
		index[models.AssignmentKey(cadetID, vesselID, joined)] = true
	}
	return index, rows.Err()
}

// OpenByCadet retrieves the set of cadets with an assignment still open
func (r *assignmentRepo) OpenByCadet(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT cadet_id FROM assignments WHERE date_left IS NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	open := make(map[string]bool)
	for rows.Next() {
		var cadetID string
		if err := rows.Scan(&cadetID); err != nil {
			return nil, err
		}
		open[cadetID] = true
	}
	return open, rows.Err()
}

const assignmentListQuery = `
	SELECT a.id, a.cadet_id, a.vessel_id,
		to_char(a.date_joined, 'YYYY-MM-DD'),
		to_char(a.date_left, 'YYYY-MM-DD'),
		a.created_at, c.email, v.imo_number
	FROM assignments a
	JOIN cadets c ON c.id = a.cadet_id
	JOIN vessels v ON v.id = a.vessel_id
	ORDER BY a.date_joined DESC, c.email`

// List retrieves assignments with their cadet email and vessel IMO
func (r *assignmentRepo) List(ctx context.Context, limit, offset int) ([]*models.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, assignmentListQuery+" LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.ID, &a.CadetID, &a.VesselID, &a.DateJoined, &a.DateLeft,
			&a.CreatedAt, &a.CadetEmail, &a.VesselIMO,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// Count returns the total number of assignments
func (r *assignmentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assignments").Scan(&count)
	return count, err
}

// StreamAll streams all assignments for export
func (r *assignmentRepo) StreamAll(ctx context.Context, callback func(*models.Assignment) error) error {
	rows, err := r.db.QueryContext(ctx, assignmentListQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.ID, &a.CadetID, &a.VesselID, &a.DateJoined, &a.DateLeft,
			&a.CreatedAt, &a.CadetEmail, &a.VesselIMO,
		); err != nil {
			return err
		}
		if err := callback(&a); err != nil {
			return err
		}
	}
	return rows.Err()
}
