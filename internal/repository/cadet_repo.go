package repository

import (
	"context"
	"database/sql"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// cadetRepo is the concrete implementation of CadetRepository
type cadetRepo struct {
	db *database.DB
}

// NewCadetRepo creates a new cadet repository
func NewCadetRepo(db *database.DB) CadetRepository {
	return &cadetRepo{db: db}
}

const cadetColumns = `id, full_name, email, trainee_type, rank_label, nationality, trb_required, notes, created_at, updated_at`

func scanCadet(row interface{ Scan(...interface{}) error }) (*models.Cadet, error) {
	var c models.Cadet
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.TraineeType, &c.RankLabel,
		&c.Nationality, &c.TRBRequired, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a cadet by ID
func (r *cadetRepo) GetByID(ctx context.Context, id string) (*models.Cadet, error) {
	query := `SELECT ` + cadetColumns + ` FROM cadets WHERE id = $1`
	c, err := scanCadet(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// GetByEmail retrieves a cadet by email
func (r *cadetRepo) GetByEmail(ctx context.Context, email string) (*models.Cadet, error) {
	query := `SELECT ` + cadetColumns + ` FROM cadets WHERE email = $1`
	c, err := scanCadet(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// EmailIndex retrieves all cadet emails mapped to their IDs
func (r *cadetRepo) EmailIndex(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT email, id FROM cadets")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var email, id string
		if err := rows.Scan(&email, &id); err != nil {
			return nil, err
		}
		index[email] = id
	}
	return index, rows.Err()
}

// List retrieves cadets ordered by name
func (r *cadetRepo) List(ctx context.Context, limit, offset int) ([]*models.Cadet, error) {
	query := `SELECT ` + cadetColumns + ` FROM cadets ORDER BY full_name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cadets []*models.Cadet
	for rows.Next() {
		c, err := scanCadet(rows)
		if err != nil {
			return nil, err
		}
		cadets = append(cadets, c)
	}
	return cadets, rows.Err()
}

// Count returns the total number of cadets
func (r *cadetRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cadets").Scan(&count)
	return count, err
}

// StreamAll streams all cadets for export (memory efficient)
func (r *cadetRepo) StreamAll(ctx context.Context, callback func(*models.Cadet) error) error {
	query := `SELECT ` + cadetColumns + ` FROM cadets ORDER BY full_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCadet(rows)
		if err != nil {
			return err
		}
		if err := callback(c); err != nil {
			return err
		}
	}
	return rows.Err()
}
