package repository

import (
	"context"
	"database/sql"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// batchRepo is the concrete implementation of ImportBatchRepository
type batchRepo struct {
	db *database.DB
}

// NewBatchRepo creates a new import batch repository
func NewBatchRepo(db *database.DB) ImportBatchRepository {
	return &batchRepo{db: db}
}

const batchColumns = `id, entity, actor, total, created, skipped, failed, ready, ready_with_warnings, created_at`

// GetByID retrieves an import batch by ID
func (r *batchRepo) GetByID(ctx context.Context, id string) (*models.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = $1`
	var b models.ImportBatch
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Entity, &b.Actor, &b.Total, &b.Created, &b.Skipped,
		&b.Failed, &b.Ready, &b.ReadyWithWarnings, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List retrieves the most recent import batches
func (r *batchRepo) List(ctx context.Context, limit int) ([]*models.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*models.ImportBatch
	for rows.Next() {
		var b models.ImportBatch
		if err := rows.Scan(
			&b.ID, &b.Entity, &b.Actor, &b.Total, &b.Created, &b.Skipped,
			&b.Failed, &b.Ready, &b.ReadyWithWarnings, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// List retrieves the most recent audit entries
func (r *auditRepo) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	query := `SELECT id, actor, action, entity, entity_id, import_batch_id, detail, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID,
			&e.BatchID, &e.Detail, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
