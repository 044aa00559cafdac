package repository

import (
	"context"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// taskRepo is the concrete implementation of TaskRepository
type taskRepo struct {
	db *database.DB
}

// NewTaskRepo creates a new training task repository
func NewTaskRepo(db *database.DB) TaskRepository {
	return &taskRepo{db: db}
}

// KeyIndex retrieves the natural keys of all existing tasks
func (r *taskRepo) KeyIndex(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT part_number, title, ship_type FROM training_tasks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]bool)
	for rows.Next() {
		var part, title, shipType string
		if err := rows.Scan(&part, &title, &shipType); err != nil {
			return nil, err
		}
		index[models.TaskKey(part, title, shipType)] = true
	}
	return index, rows.Err()
}

// ShipTypes retrieves the configured ship type names
func (r *taskRepo) ShipTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM ship_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// List retrieves tasks ordered by part number then title
func (r *taskRepo) List(ctx context.Context, limit, offset int) ([]*models.TrainingTask, error) {
	query := `SELECT id, part_number, title, ship_type, created_at
		FROM training_tasks ORDER BY part_number, title LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.TrainingTask
	for rows.Next() {
		var t models.TrainingTask
		if err := rows.Scan(&t.ID, &t.PartNumber, &t.Title, &t.ShipType, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// Count returns the total number of tasks
func (r *taskRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM training_tasks").Scan(&count)
	return count, err
}

// StreamAll streams all tasks for export
func (r *taskRepo) StreamAll(ctx context.Context, callback func(*models.TrainingTask) error) error {
	query := `SELECT id, part_number, title, ship_type, created_at
		FROM training_tasks ORDER BY part_number, title`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.TrainingTask
		if err := rows.Scan(&t.ID, &t.PartNumber, &t.Title, &t.ShipType, &t.CreatedAt); err != nil {
			return err
		}
		if err := callback(&t); err != nil {
			return err
		}
	}
	return rows.Err()
}
