package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/keel-trb-api/internal/mocks"
	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

func newTestEngine(repos *repository.Repositories) *Engine {
	return NewEngine(repos, 1000, zerolog.Nop())
}

func mockStore(repos *repository.Repositories) *mocks.MockImportStore {
	return repos.Importer.(*mocks.MockImportStore)
}

func seedCadet(repos *repository.Repositories, id, email string) {
	repos.Cadet.(*mocks.MockCadetRepository).Add(&models.Cadet{
		ID: id, FullName: "Seeded Cadet", Email: email,
		TraineeType: "deck_cadet", RankLabel: "Deck Cadet", TRBRequired: true,
	})
}

func seedVessel(repos *repository.Repositories, id, imo string) {
	repos.Vessel.(*mocks.MockVesselRepository).Add(&models.Vessel{
		ID: id, IMONumber: imo, Name: "Seeded Vessel", VesselType: "Bulk Carrier",
	})
}

func rowByNumber(t *testing.T, rows []Row, number int) *Row {
	t.Helper()
	for i := range rows {
		if rows[i].RowNumber == number {
			return &rows[i]
		}
	}
	t.Fatalf("no row with number %d", number)
	return nil
}

func TestPreviewCadetsClassification(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "existing@example.com")
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"John Roe,john@example.com,Deck Cadet,SG,",
		"Old Hand,existing@example.com,deck_cadet,PH,",
		"Bad Mail,not-an-email,deck_cadet,PH,",
		"Dupe Doe,jane@example.com,engine_cadet,PH,",
		"No Type,notype@example.com,submarine_cadet,PH,",
	)

	result, err := engine.Preview(context.Background(), "cadets", "cadets.csv", data)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if got := rowByNumber(t, result.Rows, 1).Status; got != StatusReady {
		t.Errorf("row 1 = %s, want READY", got)
	}

	warned := rowByNumber(t, result.Rows, 2)
	if warned.Status != StatusReadyWithWarnings {
		t.Errorf("row 2 = %s, want READY_WITH_WARNINGS", warned.Status)
	}
	if warned.Derived["trainee_type"] != "deck_cadet" {
		t.Errorf("row 2 should derive the canonical code, got %v", warned.Derived["trainee_type"])
	}

	skipped := rowByNumber(t, result.Rows, 3)
	if skipped.Status != StatusSkip {
		t.Errorf("row 3 = %s, want SKIP", skipped.Status)
	}

	failed := rowByNumber(t, result.Rows, 4)
	if failed.Status != StatusFail {
		t.Errorf("row 4 = %s, want FAIL", failed.Status)
	}
	if failed.Derived != nil {
		t.Error("FAIL rows must not carry derived fields")
	}

	dup := rowByNumber(t, result.Rows, 5)
	if dup.Status != StatusFail {
		t.Errorf("row 5 (in-file duplicate) = %s, want FAIL", dup.Status)
	}
	if len(dup.Issues) == 0 || !strings.Contains(dup.Issues[0], "duplicate of row 1") {
		t.Errorf("duplicate row should point at the first occurrence, got %v", dup.Issues)
	}

	if got := rowByNumber(t, result.Rows, 6).Status; got != StatusFail {
		t.Errorf("row 6 (unknown trainee_type) = %s, want FAIL", got)
	}

	want := Summary{Total: 6, Ready: 1, ReadyWithWarnings: 1, Skip: 1, Fail: 3}
	if result.Summary != want {
		t.Errorf("summary = %+v, want %+v", result.Summary, want)
	}

	// Preview must leave the repositories untouched
	if count, _ := repos.Cadet.Count(context.Background()); count != 1 {
		t.Errorf("preview persisted rows: cadet count = %d", count)
	}
	if mockStore(repos).BeginCalls != 0 {
		t.Error("preview must never open a transaction")
	}
}

func TestPreviewDeterministic(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "existing@example.com")
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"Old Hand,existing@example.com,Deck Cadet,,note",
		"Bad Mail,nope,deck_cadet,PH,",
	)

	first, err := engine.Preview(context.Background(), "cadets", "c.csv", data)
	if err != nil {
		t.Fatalf("first preview: %v", err)
	}
	second, err := engine.Preview(context.Background(), "cadets", "c.csv", data)
	if err != nil {
		t.Fatalf("second preview: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("previews over unchanged data differ:\n%s\n%s", a, b)
	}
}

func TestPreviewVessels(t *testing.T) {
	repos := mocks.NewRepositories()
	seedVessel(repos, "v1", "9074729")
	engine := newTestEngine(repos)

	data := csvBytes(
		"imo_number,vessel_name,vessel_type,flag_state,class_society",
		"9176187,Coral Star,Bulk Carrier,Panama,DNV",
		"IMO 9074729,Seeded Vessel,Bulk Carrier,Panama,DNV",
		"1234568,Bad Digit,oil_tanker,Panama,DNV",
		"12345,Short One,Bulk Carrier,Panama,DNV",
		"7654321,No Such Type,Hovercraft,Panama,DNV",
	)

	result, err := engine.Preview(context.Background(), "vessels", "vessels.csv", data)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if got := rowByNumber(t, result.Rows, 1).Status; got != StatusReady {
		t.Errorf("valid vessel = %s, want READY", got)
	}
	if got := rowByNumber(t, result.Rows, 2).Status; got != StatusSkip {
		t.Errorf("existing IMO (with prefix) = %s, want SKIP", got)
	}

	checksum := rowByNumber(t, result.Rows, 3)
	if checksum.Status != StatusReadyWithWarnings {
		t.Errorf("bad check digit = %s, want READY_WITH_WARNINGS", checksum.Status)
	}
	if checksum.Derived["vessel_type"] != "Oil Tanker" {
		t.Errorf("fuzzy vessel_type should resolve to Oil Tanker, got %v", checksum.Derived["vessel_type"])
	}

	if got := rowByNumber(t, result.Rows, 4).Status; got != StatusFail {
		t.Errorf("short IMO = %s, want FAIL", got)
	}
	if got := rowByNumber(t, result.Rows, 5).Status; got != StatusFail {
		t.Errorf("unknown vessel_type = %s, want FAIL", got)
	}
}

func TestPreviewAssignments(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "jane@example.com")
	seedCadet(repos, "c2", "busy@example.com")
	seedVessel(repos, "v1", "9074729")
	repos.Assignment.(*mocks.MockAssignmentRepository).Add(&models.Assignment{
		ID: "a1", CadetID: "c2", VesselID: "v1", DateJoined: "2024-01-01",
	})
	engine := newTestEngine(repos)

	data := csvBytes(
		"email,vessel_imo,date_joined",
		"jane@example.com,9074729,15/03/2024",
		"missing@example.com,9074729,2024-03-15",
		"jane@example.com,1111111,2024-03-15",
		"busy@example.com,9074729,2024-01-01",
		"busy@example.com,9074729,2024-06-01",
		"jane@example.com,9074729,someday",
	)

	result, err := engine.Preview(context.Background(), "assignments", "assignments.csv", data)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	ready := rowByNumber(t, result.Rows, 1)
	if ready.Status != StatusReady {
		t.Errorf("valid assignment = %s, want READY: %v", ready.Status, ready.Issues)
	}
	if ready.Normalized["date_joined"] != "2024-03-15" {
		t.Errorf("date should normalize to ISO, got %v", ready.Normalized["date_joined"])
	}

	if got := rowByNumber(t, result.Rows, 2).Status; got != StatusFail {
		t.Errorf("unknown cadet = %s, want FAIL", got)
	}
	if got := rowByNumber(t, result.Rows, 3).Status; got != StatusFail {
		t.Errorf("unknown vessel = %s, want FAIL", got)
	}
	if got := rowByNumber(t, result.Rows, 4).Status; got != StatusSkip {
		t.Errorf("already recorded assignment = %s, want SKIP", got)
	}

	open := rowByNumber(t, result.Rows, 5)
	if open.Status != StatusReadyWithWarnings {
		t.Errorf("cadet with open assignment = %s, want READY_WITH_WARNINGS", open.Status)
	}

	badDate := rowByNumber(t, result.Rows, 6)
	if badDate.Status != StatusFail {
		t.Errorf("unparseable date = %s, want FAIL", badDate.Status)
	}
	if len(badDate.Issues) == 0 || !strings.Contains(badDate.Issues[0], "someday") {
		t.Errorf("issue should quote the bad input, got %v", badDate.Issues)
	}
}

func TestCommitRefusedByGate(t *testing.T) {
	repos := mocks.NewRepositories()
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"Bad Mail,not-an-email,deck_cadet,PH,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.Refused {
		t.Fatal("commit with a FAIL row must be refused")
	}
	if result.BatchID != "" {
		t.Error("refused commit must not allocate a batch")
	}
	if result.Summary.Fail != 1 || result.Summary.Total != 2 {
		t.Errorf("refusal summary = %+v", result.Summary)
	}
	if len(result.Rows) != 2 {
		t.Errorf("refusal should report every row, got %d", len(result.Rows))
	}

	// The gate fires before any persistence is attempted
	if mockStore(repos).BeginCalls != 0 {
		t.Error("refused commit must not open a transaction")
	}
	if count, _ := repos.Cadet.Count(context.Background()); count != 0 {
		t.Errorf("refused commit persisted %d cadets", count)
	}
}

func TestCommitCreatesAndAudits(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "existing@example.com")
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"John Roe,john@example.com,engine_rating,SG,",
		"Old Hand,existing@example.com,deck_cadet,PH,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Refused {
		t.Fatal("commit should not be refused")
	}
	if result.BatchID == "" {
		t.Fatal("successful commit must return a batch ID")
	}

	want := CommitSummary{Total: 3, Created: 2, Skipped: 1, Ready: 2, ReadyWithWarnings: 0}
	if result.Summary != want {
		t.Errorf("summary = %+v, want %+v", result.Summary, want)
	}
	if result.Summary.Created+result.Summary.Skipped+result.Summary.Fail != result.Summary.Total {
		t.Error("commit outcomes must partition the total")
	}

	if count, _ := repos.Cadet.Count(context.Background()); count != 3 {
		t.Errorf("cadet count after commit = %d, want 3", count)
	}
	created, _ := repos.Cadet.GetByEmail(context.Background(), "john@example.com")
	if created == nil {
		t.Fatal("committed cadet not found")
	}
	if created.TRBRequired {
		t.Error("engine_rating cadet should not require a TRB")
	}
	if created.RankLabel != "Engine Rating" {
		t.Errorf("rank label = %q, want Engine Rating", created.RankLabel)
	}

	batches, _ := repos.Batch.List(context.Background(), 10)
	if len(batches) != 1 {
		t.Fatalf("expected 1 recorded batch, got %d", len(batches))
	}
	batch := batches[0]
	if batch.ID != result.BatchID || batch.Created != 2 || batch.Skipped != 1 || batch.Actor != "admin@keel.test" {
		t.Errorf("unexpected batch record: %+v", batch)
	}

	audit, _ := repos.Audit.List(context.Background(), 10)
	if len(audit) != 2 {
		t.Fatalf("expected one audit entry per created row, got %d", len(audit))
	}
	for _, entry := range audit {
		if entry.BatchID == nil || *entry.BatchID != result.BatchID {
			t.Errorf("audit entry not linked to batch: %+v", entry)
		}
		if entry.Action != "import.create" || entry.Entity != "cadets" {
			t.Errorf("unexpected audit entry: %+v", entry)
		}
	}
}

func TestCommitIdempotent(t *testing.T) {
	repos := mocks.NewRepositories()
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"John Roe,john@example.com,deck_cadet,SG,",
	)

	first, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Summary.Created != 2 {
		t.Fatalf("first commit created = %d, want 2", first.Summary.Created)
	}

	second, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if second.Refused {
		t.Fatal("re-committing an imported file must succeed, not be refused")
	}
	if second.Summary.Created != 0 || second.Summary.Skipped != 2 {
		t.Errorf("second commit summary = %+v, want all skipped", second.Summary)
	}

	noted := false
	for _, n := range second.Notes {
		if strings.Contains(n, "nothing to create") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("all-skip commit should say nothing was created, got %v", second.Notes)
	}

	if count, _ := repos.Cadet.Count(context.Background()); count != 2 {
		t.Errorf("cadet count after re-commit = %d, want 2", count)
	}
}

// recordingStore wraps the mock store and logs the order of write statements
// a commit issues, so foreign-key ordering can be asserted
type recordingStore struct {
	inner repository.ImportStore
	ops   *[]string
}

func (s recordingStore) Begin(ctx context.Context) (repository.ImportTx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return recordingTx{ImportTx: tx, ops: s.ops}, nil
}

type recordingTx struct {
	repository.ImportTx
	ops *[]string
}

func (t recordingTx) CreateCadet(ctx context.Context, c *models.Cadet) error {
	*t.ops = append(*t.ops, "cadet")
	return t.ImportTx.CreateCadet(ctx, c)
}

func (t recordingTx) CreateBatch(ctx context.Context, b *models.ImportBatch) error {
	*t.ops = append(*t.ops, "batch")
	return t.ImportTx.CreateBatch(ctx, b)
}

func (t recordingTx) RecordAudit(ctx context.Context, e *models.AuditEntry) error {
	*t.ops = append(*t.ops, "audit")
	return t.ImportTx.RecordAudit(ctx, e)
}

func TestCommitWritesBatchBeforeAudit(t *testing.T) {
	repos := mocks.NewRepositories()
	var ops []string
	repos.Importer = recordingStore{inner: repos.Importer, ops: &ops}
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"John Roe,john@example.com,deck_cadet,SG,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Summary.Created != 2 {
		t.Fatalf("created = %d, want 2", result.Summary.Created)
	}

	// audit_log.import_batch_id references import_batches, so the batch row
	// must be inserted before any audit row
	batchAt := -1
	for i, op := range ops {
		if op == "batch" {
			batchAt = i
			break
		}
	}
	if batchAt == -1 {
		t.Fatalf("no batch insert recorded: %v", ops)
	}
	audits := 0
	for i, op := range ops {
		if op == "audit" {
			audits++
			if i < batchAt {
				t.Fatalf("audit row inserted before its batch parent: %v", ops)
			}
		}
	}
	if audits != 2 {
		t.Errorf("expected 2 audit inserts, got %d: %v", audits, ops)
	}
}

func TestCommitRefusalCountsEveryRow(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "existing@example.com")
	engine := newTestEngine(repos)

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"Old Hand,existing@example.com,deck_cadet,PH,",
		"Bad Mail,not-an-email,deck_cadet,PH,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.Refused {
		t.Fatal("commit must be refused")
	}

	s := result.Summary
	if s.Skipped != 1 {
		t.Errorf("refusal summary skipped = %d, want 1", s.Skipped)
	}
	if s.Created+s.Skipped+s.Fail+s.Ready+s.ReadyWithWarnings != s.Total {
		t.Errorf("refusal summary does not account for every row: %+v", s)
	}
}

func TestCommitRowDowngradeOnCreateRace(t *testing.T) {
	repos := mocks.NewRepositories()
	engine := newTestEngine(repos)

	// Simulate a concurrent insert landing between validation and create
	mockStore(repos).CreateErrors["jane@example.com"] = &pq.Error{Code: "23505"}

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"John Roe,john@example.com,deck_cadet,SG,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Refused {
		t.Fatal("a row-level create failure must not refuse the whole commit")
	}
	if result.Summary.Created != 1 || result.Summary.Fail != 1 {
		t.Errorf("summary = %+v, want 1 created 1 failed", result.Summary)
	}

	var downgraded *OutcomeRow
	for i := range result.Results {
		if result.Results[i].CommitOutcome == OutcomeFailed {
			downgraded = &result.Results[i]
		}
	}
	if downgraded == nil {
		t.Fatal("expected a FAILED outcome row")
	}
	if downgraded.PreviewStatus != StatusReady {
		t.Errorf("downgraded row preview status = %s, want READY", downgraded.PreviewStatus)
	}
	found := false
	for _, issue := range downgraded.Issues {
		if strings.Contains(issue, "created concurrently") {
			found = true
		}
	}
	if !found {
		t.Errorf("unique violation should be reported as a concurrent create, got %v", downgraded.Issues)
	}

	// The surviving row still lands
	if count, _ := repos.Cadet.Count(context.Background()); count != 1 {
		t.Errorf("cadet count = %d, want 1", count)
	}
	if c, _ := repos.Cadet.GetByEmail(context.Background(), "john@example.com"); c == nil {
		t.Error("unaffected row should have been committed")
	}
}

func TestCommitGenericCreateError(t *testing.T) {
	repos := mocks.NewRepositories()
	engine := newTestEngine(repos)
	mockStore(repos).CreateErrors["jane@example.com"] = errors.New("disk on fire")

	data := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Summary.Fail != 1 || result.Summary.Created != 0 {
		t.Errorf("summary = %+v, want the single row failed", result.Summary)
	}
}

func TestUnknownEntity(t *testing.T) {
	engine := newTestEngine(mocks.NewRepositories())

	if _, err := engine.Preview(context.Background(), "containers", "x.csv", csvBytes("a", "b")); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Preview unknown entity: %v", err)
	}
	if _, err := engine.Commit(context.Background(), "containers", "x.csv", csvBytes("a", "b"), "x"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Commit unknown entity: %v", err)
	}
	if _, err := engine.Template("containers"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Template unknown entity: %v", err)
	}
}

func TestEntities(t *testing.T) {
	engine := newTestEngine(mocks.NewRepositories())
	got := engine.Entities()
	want := []string{"assignments", "cadets", "tasks", "vessels"}
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entities = %v, want %v", got, want)
			break
		}
	}
}

func TestPreviewThenCommitWorkflow(t *testing.T) {
	repos := mocks.NewRepositories()
	seedCadet(repos, "c1", "existing@example.com")
	engine := newTestEngine(repos)

	broken := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"Old Hand,existing@example.com,deck_cadet,PH,",
		",noname@example.com,deck_cadet,PH,",
	)

	preview, err := engine.Preview(context.Background(), "cadets", "cadets.csv", broken)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := Summary{Total: 3, Ready: 1, ReadyWithWarnings: 0, Skip: 1, Fail: 1}
	if preview.Summary != want {
		t.Fatalf("preview summary = %+v, want %+v", preview.Summary, want)
	}

	refused, err := engine.Commit(context.Background(), "cadets", "cadets.csv", broken, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !refused.Refused {
		t.Fatal("commit of the broken file must be refused")
	}
	if count, _ := repos.Cadet.Count(context.Background()); count != 1 {
		t.Errorf("refused commit persisted rows: count = %d", count)
	}

	// Same workbook with the failing row corrected
	fixed := csvBytes(
		"full_name,email,trainee_type,nationality,notes",
		"Jane Doe,jane@example.com,deck_cadet,PH,",
		"Old Hand,existing@example.com,deck_cadet,PH,",
		"No Longer Nameless,noname@example.com,deck_cadet,PH,",
	)

	result, err := engine.Commit(context.Background(), "cadets", "cadets.csv", fixed, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit fixed file: %v", err)
	}
	if result.Refused {
		t.Fatal("corrected file must commit")
	}
	if result.Summary.Created != 2 || result.Summary.Skipped != 1 || result.Summary.Fail != 0 {
		t.Errorf("summary = %+v, want 2 created 1 skipped 0 failed", result.Summary)
	}
}

func TestCommitTasks(t *testing.T) {
	repos := mocks.NewRepositories()
	repos.Task.(*mocks.MockTaskRepository).Add(&models.TrainingTask{
		ID: "t1", PartNumber: "A1.2", Title: "Rig a pilot ladder", ShipType: "Bulk Carrier",
	})
	engine := newTestEngine(repos)

	data := csvBytes(
		"part_number,title,ship_type_name",
		"a1.2,Rig a pilot ladder,bulk_carrier",
		"B2.1,Test emergency steering,Bulk Carrier",
	)

	result, err := engine.Commit(context.Background(), "tasks", "tasks.csv", data, "admin@keel.test")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Refused {
		t.Fatal("commit should succeed")
	}
	// Row 1 normalizes to the same natural key as the seeded task
	if result.Summary.Skipped != 1 || result.Summary.Created != 1 {
		t.Errorf("summary = %+v, want 1 created 1 skipped", result.Summary)
	}
	if count, _ := repos.Task.Count(context.Background()); count != 2 {
		t.Errorf("task count = %d, want 2", count)
	}
}
