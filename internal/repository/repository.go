package repository

import (
	"context"
	"errors"

	"github.com/keel-trb-api/internal/database"
	"github.com/keel-trb-api/internal/models"
	"github.com/lib/pq"
)

// CadetRepository defines the interface for cadet data operations
type CadetRepository interface {
	GetByID(ctx context.Context, id string) (*models.Cadet, error)
	GetByEmail(ctx context.Context, email string) (*models.Cadet, error)
	// EmailIndex returns a map of existing email -> cadet ID for duplicate
	// and foreign-key checks during imports
	EmailIndex(ctx context.Context) (map[string]string, error)
	List(ctx context.Context, limit, offset int) ([]*models.Cadet, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Cadet) error) error
}

// VesselRepository defines the interface for vessel data operations
type VesselRepository interface {
	GetByID(ctx context.Context, id string) (*models.Vessel, error)
	GetByIMO(ctx context.Context, imo string) (*models.Vessel, error)
	// IMOIndex returns a map of existing IMO number -> vessel ID
	IMOIndex(ctx context.Context) (map[string]string, error)
	List(ctx context.Context, limit, offset int) ([]*models.Vessel, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Vessel) error) error
}

// TaskRepository defines the interface for training task data operations
type TaskRepository interface {
	// KeyIndex returns the set of existing task natural keys (see models.TaskKey)
	KeyIndex(ctx context.Context) (map[string]bool, error)
	// ShipTypes returns the configured ship type names, alphabetically
	ShipTypes(ctx context.Context) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*models.TrainingTask, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.TrainingTask) error) error
}

// AssignmentRepository defines the interface for assignment data operations
type AssignmentRepository interface {
	// KeyIndex returns the set of existing assignment natural keys
	// (see models.AssignmentKey)
	KeyIndex(ctx context.Context) (map[string]bool, error)
	// OpenByCadet returns the set of cadet IDs that currently have an
	// assignment with no date_left
	OpenByCadet(ctx context.Context) (map[string]bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Assignment, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Assignment) error) error
}

// ImportBatchRepository defines read access to persisted import batches
type ImportBatchRepository interface {
	GetByID(ctx context.Context, id string) (*models.ImportBatch, error)
	List(ctx context.Context, limit int) ([]*models.ImportBatch, error)
}

// AuditRepository defines read access to the audit trail
type AuditRepository interface {
	List(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}

// ImportTx is a single commit transaction. Each row create should be wrapped
// in a savepoint so a constraint violation fails only that row.
type ImportTx interface {
	CreateCadet(ctx context.Context, c *models.Cadet) error
	CreateVessel(ctx context.Context, v *models.Vessel) error
	CreateTask(ctx context.Context, t *models.TrainingTask) error
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	CreateBatch(ctx context.Context, b *models.ImportBatch) error
	RecordAudit(ctx context.Context, e *models.AuditEntry) error
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Commit() error
	Rollback() error
}

// ImportStore opens commit transactions
type ImportStore interface {
	Begin(ctx context.Context) (ImportTx, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Cadet      CadetRepository
	Vessel     VesselRepository
	Task       TaskRepository
	Assignment AssignmentRepository
	Batch      ImportBatchRepository
	Audit      AuditRepository
	Importer   ImportStore
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Cadet:      NewCadetRepo(db),
		Vessel:     NewVesselRepo(db),
		Task:       NewTaskRepo(db),
		Assignment: NewAssignmentRepo(db),
		Batch:      NewBatchRepo(db),
		Audit:      NewAuditRepo(db),
		Importer:   NewImportStore(db),
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (error code 23505)
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
