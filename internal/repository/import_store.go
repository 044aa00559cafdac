package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
)

// importStore opens commit transactions over the shared connection pool
type importStore struct {
	db *database.DB
}

// NewImportStore creates a new import store
func NewImportStore(db *database.DB) ImportStore {
	return &importStore{db: db}
}

// Begin opens a commit transaction
func (s *importStore) Begin(ctx context.Context) (ImportTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	return &importTx{tx: tx}, nil
}

// importTx is the concrete ImportTx over *sql.Tx. Savepoint names come from
// the commit engine and are derived from row numbers, never user input.
type importTx struct {
	tx *sql.Tx
}

func (t *importTx) CreateCadet(ctx context.Context, c *models.Cadet) error {
	query := `
		INSERT INTO cadets (id, full_name, email, trainee_type, rank_label, nationality, trb_required, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	_, err := t.tx.ExecContext(ctx, query,
		c.ID, c.FullName, c.Email, c.TraineeType, c.RankLabel,
		c.Nationality, c.TRBRequired, c.Notes, time.Now(),
	)
	return err
}

func (t *importTx) CreateVessel(ctx context.Context, v *models.Vessel) error {
	query := `
		INSERT INTO vessels (id, imo_number, vessel_name, vessel_type, flag_state, class_society, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.ExecContext(ctx, query,
		v.ID, v.IMONumber, v.Name, v.VesselType, v.FlagState, v.ClassSociety, time.Now(),
	)
	return err
}

func (t *importTx) CreateTask(ctx context.Context, task *models.TrainingTask) error {
	query := `
		INSERT INTO training_tasks (id, part_number, title, ship_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, query,
		task.ID, task.PartNumber, task.Title, task.ShipType, time.Now(),
	)
	return err
}

func (t *importTx) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, cadet_id, vessel_id, date_joined, date_left, created_at)
		VALUES ($1, $2, $3, $4::date, NULL, $5)
	`
	_, err := t.tx.ExecContext(ctx, query,
		a.ID, a.CadetID, a.VesselID, a.DateJoined, time.Now(),
	)
	return err
}

func (t *importTx) CreateBatch(ctx context.Context, b *models.ImportBatch) error {
	query := `
		INSERT INTO import_batches (id, entity, actor, total, created, skipped, failed, ready, ready_with_warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := t.tx.ExecContext(ctx, query,
		b.ID, b.Entity, b.Actor, b.Total, b.Created, b.Skipped,
		b.Failed, b.Ready, b.ReadyWithWarnings, time.Now(),
	)
	return err
}

func (t *importTx) RecordAudit(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, actor, action, entity, entity_id, import_batch_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.tx.ExecContext(ctx, query,
		e.ID, e.Actor, e.Action, e.Entity, e.EntityID, e.BatchID, e.Detail, time.Now(),
	)
	return err
}

func (t *importTx) Savepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

func (t *importTx) RollbackTo(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func (t *importTx) Commit() error {
	return t.tx.Commit()
}

func (t *importTx) Rollback() error {
	return t.tx.Rollback()
}
