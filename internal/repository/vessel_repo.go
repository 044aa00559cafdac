package repository

import (
	"context"
	"database/sql"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// vesselRepo is the concrete implementation of VesselRepository
type vesselRepo struct {
	db *database.DB
}

// NewVesselRepo creates a new vessel repository
func NewVesselRepo(db *database.DB) VesselRepository {
	return &vesselRepo{db: db}
}

const vesselColumns = `id, imo_number, vessel_name, vessel_type, flag_state, class_society, created_at`

func scanVessel(row interface{ Scan(...interface{}) error }) (*models.Vessel, error) {
	var v models.Vessel
	err := row.Scan(
		&v.ID, &v.IMONumber, &v.Name, &v.VesselType,
		&v.FlagState, &v.ClassSociety, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID retrieves a vessel by ID
func (r *vesselRepo) GetByID(ctx context.Context, id string) (*models.Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels WHERE id = $1`
	v, err := scanVessel(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// GetByIMO retrieves a vessel by IMO number
func (r *vesselRepo) GetByIMO(ctx context.Context, imo string) (*models.Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels WHERE imo_number = $1`
	v, err := scanVessel(r.db.QueryRowContext(ctx, query, imo))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// IMOIndex retrieves all vessel IMO numbers mapped to their IDs
func (r *vesselRepo) IMOIndex(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT imo_number, id FROM vessels")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var imo, id string
		if err := rows.Scan(&imo, &id); err != nil {
			return nil, err
		}
		index[imo] = id
	}
	return index, rows.Err()
}

// List retrieves vessels ordered by name
func (r *vesselRepo) List(ctx context.Context, limit, offset int) ([]*models.Vessel, error) {
	query := `SELECT ` + vesselColumns + ` FROM vessels ORDER BY vessel_name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vessels []*models.Vessel
	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

// Count returns the total number of vessels
func (r *vesselRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessels").Scan(&count)
	return count, err
}

// StreamAll streams all vessels for export
func (r *vesselRepo) StreamAll(ctx context.Context, callback func(*models.Vessel) error) error {
	query := `SELECT ` + vesselColumns + ` FROM vessels ORDER BY vessel_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return err
		}
		if err := callback(v); err != nil {
			return err
		}
	}
	return rows.Err()
}
