package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
	"github.com/rs/zerolog"
)

// RowStatus classifies one spreadsheet row during preview and commit
type RowStatus string

const (
	StatusReady             RowStatus = "READY"
	StatusReadyWithWarnings RowStatus = "READY_WITH_WARNINGS"
	StatusSkip              RowStatus = "SKIP"
	StatusFail              RowStatus = "FAIL"
)

// CommitOutcome is the per-row result of a commit
type CommitOutcome string

const (
	OutcomeCreated CommitOutcome = "CREATED"
	OutcomeSkipped CommitOutcome = "SKIPPED"
	OutcomeFailed  CommitOutcome = "FAILED"
)

// ErrUnknownEntity signals a request for an entity family without a spec
var ErrUnknownEntity = errors.New("unknown import entity")

// Row is the transient classification of one data row. It lives for one
// preview or commit call and is never persisted.
type Row struct {
	RowNumber  int                    `json:"row_number"`
	Input      map[string]string      `json:"input"`
	Normalized map[string]interface{} `json:"normalized"`
	Derived    map[string]interface{} `json:"derived,omitempty"`
	Status     RowStatus              `json:"status"`
	Issues     []string               `json:"issues,omitempty"`
}

// Summary counts rows per status. Always recomputed from the row set.
type Summary struct {
	Total             int `json:"total"`
	Ready             int `json:"ready"`
	ReadyWithWarnings int `json:"ready_with_warnings"`
	Skip              int `json:"skip"`
	Fail              int `json:"fail"`
}

// PreviewResult is the dry-run classification of an uploaded workbook
type PreviewResult struct {
	Summary Summary  `json:"summary"`
	Rows    []Row    `json:"rows"`
	Notes   []string `json:"notes"`
}

// OutcomeRow reports what the commit did with one row
type OutcomeRow struct {
	RowNumber       int           `json:"row_number"`
	PreviewStatus   RowStatus     `json:"preview_status"`
	CommitOutcome   CommitOutcome `json:"commit_outcome"`
	CreatedEntityID string        `json:"created_entity_id,omitempty"`
	Issues          []string      `json:"issues,omitempty"`
}

// CommitSummary counts commit results per outcome
type CommitSummary struct {
	Total             int `json:"total"`
	Created           int `json:"created"`
	Skipped           int `json:"skipped"`
	Fail              int `json:"fail"`
	Ready             int `json:"ready"`
	ReadyWithWarnings int `json:"ready_with_warnings"`
}

// CommitResult is the outcome of one commit call. When Refused is set the
// validation gate failed: nothing was persisted and Rows carries the full
// classification so the caller can show why.
type CommitResult struct {
	BatchID string        `json:"import_batch_id,omitempty"`
	Refused bool          `json:"-"`
	Summary CommitSummary `json:"summary"`
	Results []OutcomeRow  `json:"results,omitempty"`
	Rows    []Row         `json:"rows,omitempty"`
	Notes   []string      `json:"notes"`
}

// Reference is the data set resolved once per preview/commit call that the
// classifiers check duplicates and foreign keys against.
type Reference struct {
	CadetIDByEmail  map[string]string
	VesselIDByIMO   map[string]string
	TaskKeys        map[string]bool
	AssignmentKeys  map[string]bool
	OpenAssignments map[string]bool
	ShipTypes       []string
}

// Spec configures the generic import pipeline for one entity family.
// The engine is implemented once and instantiated per entity.
// The spreadsheet column headers in Columns must all be present in an upload;
// whether a cell value is mandatory is each Classify's decision.
type Spec struct {
	Entity  string
	Columns []string

	// LoadRefs resolves the reference data set for one call
	LoadRefs func(ctx context.Context, repos *repository.Repositories) (*Reference, error)

	// Normalize coerces raw cells into typed values. Pure; never errors.
	// Missing or unparseable cells become nil.
	Normalize func(input map[string]string) map[string]interface{}

	// Classify sets Status, Issues and Derived on a normalized row.
	// Precedence: FAIL, then SKIP, then warnings, else READY.
	Classify func(row *Row, refs *Reference)

	// Key returns the row's natural key for in-file duplicate detection,
	// or "" when it cannot be derived
	Key func(row *Row) string

	// Create persists one READY or READY_WITH_WARNINGS row and returns the
	// new entity's ID
	Create func(ctx context.Context, tx repository.ImportTx, row *Row) (string, error)
}

// Engine runs the normalize/classify/persist pipeline for every entity family
type Engine struct {
	repos   *repository.Repositories
	specs   map[string]*Spec
	maxRows int
	log     zerolog.Logger
}

// NewEngine creates the import engine with all entity specs registered
func NewEngine(repos *repository.Repositories, maxRows int, log zerolog.Logger) *Engine {
	e := &Engine{
		repos:   repos,
		specs:   make(map[string]*Spec),
		maxRows: maxRows,
		log:     log.With().Str("component", "importer").Logger(),
	}
	for _, spec := range []*Spec{cadetSpec(), vesselSpec(), taskSpec(), assignmentSpec()} {
		e.specs[spec.Entity] = spec
	}
	return e
}

// Entities returns the registered entity family names, alphabetically
func (e *Engine) Entities() []string {
	names := make([]string, 0, len(e.specs))
	for name := range e.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template builds an empty workbook with the exact expected column headers
func (e *Engine) Template(entity string) ([]byte, error) {
	spec, ok := e.specs[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	return buildTemplate(spec.Columns)
}

// Preview classifies every row of the uploaded file without persisting
// anything. Deterministic for unchanged reference data.
func (e *Engine) Preview(ctx context.Context, entity, filename string, data []byte) (*PreviewResult, error) {
	spec, ok := e.specs[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}

	rows, notes, err := e.classifyAll(ctx, spec, filename, data)
	if err != nil {
		return nil, err
	}

	summary := summarize(rows)
	e.log.Info().
		Str("entity", entity).
		Int("total", summary.Total).
		Int("ready", summary.Ready).
		Int("skip", summary.Skip).
		Int("fail", summary.Fail).
		Msg("Preview completed")

	return &PreviewResult{Summary: summary, Rows: rows, Notes: notes}, nil
}

// Commit re-derives the classification from the uploaded file and persists the
// importable rows. If any row classifies FAIL the whole commit is refused with
// zero persistence. A commit where every row is skipped is still a success.
func (e *Engine) Commit(ctx context.Context, entity, filename string, data []byte, actor string) (*CommitResult, error) {
	spec, ok := e.specs[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}

	rows, notes, err := e.classifyAll(ctx, spec, filename, data)
	if err != nil {
		return nil, err
	}
	preview := summarize(rows)

	if preview.Fail > 0 {
		e.log.Warn().
			Str("entity", entity).
			Int("fail", preview.Fail).
			Msg("Commit refused by validation gate")
		return &CommitResult{
			Refused: true,
			Summary: CommitSummary{
				Total:             preview.Total,
				Skipped:           preview.Skip,
				Fail:              preview.Fail,
				Ready:             preview.Ready,
				ReadyWithWarnings: preview.ReadyWithWarnings,
			},
			Rows:  rows,
			Notes: append(notes, fmt.Sprintf("commit refused: %d row(s) failed validation; nothing was imported", preview.Fail)),
		}, nil
	}

	tx, err := e.repos.Importer.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	batchID := uuid.New().String()
	results := make([]OutcomeRow, 0, len(rows))
	created, skipped, failed := 0, 0, 0

	// Audit rows reference the batch row, so they are buffered and written
	// after CreateBatch to satisfy the foreign key
	var audits []*models.AuditEntry

	for i := range rows {
		row := &rows[i]
		outcome := OutcomeRow{
			RowNumber:     row.RowNumber,
			PreviewStatus: row.Status,
			Issues:        row.Issues,
		}

		if row.Status == StatusSkip {
			outcome.CommitOutcome = OutcomeSkipped
			skipped++
			results = append(results, outcome)
			continue
		}

		// READY or READY_WITH_WARNINGS: create behind a savepoint so a
		// constraint violation fails only this row
		sp := fmt.Sprintf("row_%d", row.RowNumber)
		if err := tx.Savepoint(ctx, sp); err != nil {
			return nil, fmt.Errorf("savepoint for row %d: %w", row.RowNumber, err)
		}

		id, createErr := spec.Create(ctx, tx, row)
		if createErr != nil {
			if err := tx.RollbackTo(ctx, sp); err != nil {
				return nil, fmt.Errorf("rollback to savepoint for row %d: %w", row.RowNumber, err)
			}
			issue := fmt.Sprintf("create failed: %v", createErr)
			if repository.IsUniqueViolation(createErr) {
				issue = "entity was created concurrently since validation; not imported"
			}
			outcome.CommitOutcome = OutcomeFailed
			outcome.Issues = append(outcome.Issues, issue)
			failed++
			e.log.Warn().
				Str("entity", entity).
				Int("row", row.RowNumber).
				Err(createErr).
				Msg("Row create failed during commit")
			results = append(results, outcome)
			continue
		}

		audits = append(audits, &models.AuditEntry{
			ID:       uuid.New().String(),
			Actor:    actor,
			Action:   "import.create",
			Entity:   entity,
			EntityID: id,
			BatchID:  &batchID,
			Detail:   spec.Key(row),
		})

		outcome.CommitOutcome = OutcomeCreated
		outcome.CreatedEntityID = id
		created++
		results = append(results, outcome)
	}

	batch := &models.ImportBatch{
		ID:                batchID,
		Entity:            entity,
		Actor:             actor,
		Total:             preview.Total,
		Created:           created,
		Skipped:           skipped,
		Failed:            failed,
		Ready:             preview.Ready,
		ReadyWithWarnings: preview.ReadyWithWarnings,
	}
	if err := tx.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("record import batch: %w", err)
	}
	for _, entry := range audits {
		if err := tx.RecordAudit(ctx, entry); err != nil {
			return nil, fmt.Errorf("audit entry for %s: %w", entry.EntityID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import batch: %w", err)
	}
	committed = true

	if created == 0 && failed == 0 {
		notes = append(notes, "all rows already imported; nothing to create")
	}

	e.log.Info().
		Str("entity", entity).
		Str("batch_id", batchID).
		Int("created", created).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Commit completed")

	return &CommitResult{
		BatchID: batchID,
		Summary: CommitSummary{
			Total:             preview.Total,
			Created:           created,
			Skipped:           skipped,
			Fail:              failed,
			Ready:             preview.Ready,
			ReadyWithWarnings: preview.ReadyWithWarnings,
		},
		Results: results,
		Notes:   notes,
	}, nil
}

// classifyAll is the shared normalize+classify pipeline. Preview and commit
// run it identically; commit is a stateless re-derivation, never a replay of
// a cached preview.
func (e *Engine) classifyAll(ctx context.Context, spec *Spec, filename string, data []byte) ([]Row, []string, error) {
	parsed, notes, err := parseTable(filename, data, spec.Columns, e.maxRows)
	if err != nil {
		return nil, nil, err
	}

	refs, err := spec.LoadRefs(ctx, e.repos)
	if err != nil {
		return nil, nil, fmt.Errorf("load reference data: %w", err)
	}

	seen := make(map[string]int)
	rows := make([]Row, 0, len(parsed))
	for _, p := range parsed {
		row := Row{RowNumber: p.Number, Input: p.Cells}
		row.Normalized = spec.Normalize(p.Cells)
		spec.Classify(&row, refs)

		// A later row repeating a key from this same file can never commit:
		// hard error pointing at the first occurrence
		if row.Status != StatusFail {
			if key := spec.Key(&row); key != "" {
				if first, dup := seen[key]; dup {
					row.Status = StatusFail
					row.Issues = append(row.Issues, fmt.Sprintf("duplicate of row %d in this file", first))
				} else {
					seen[key] = row.RowNumber
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, notes, nil
}

// resolve applies the severity precedence to a classified row: FAIL beats
// SKIP beats warnings. Derived fields are dropped from FAIL rows.
func resolve(row *Row, fails, skips, warns []string) {
	switch {
	case len(fails) > 0:
		row.Status = StatusFail
		row.Issues = fails
		row.Derived = nil
	case len(skips) > 0:
		row.Status = StatusSkip
		row.Issues = append(skips, warns...)
	case len(warns) > 0:
		row.Status = StatusReadyWithWarnings
		row.Issues = warns
	default:
		row.Status = StatusReady
	}
}

// summarize recomputes the status counts over a row set
func summarize(rows []Row) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case StatusReady:
			s.Ready++
		case StatusReadyWithWarnings:
			s.ReadyWithWarnings++
		case StatusSkip:
			s.Skip++
		case StatusFail:
			s.Fail++
		}
	}
	return s
}
