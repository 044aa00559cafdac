package mocks

import (
	"context"
	"sort"

	"github.com/keel-trb-api/internal/models"
	"github.com/keel-trb-api/internal/repository"
)

// MockCadetRepository is a mock implementation of CadetRepository
type MockCadetRepository struct {
	Cadets       map[string]*models.Cadet
	EmailToCadet map[string]*models.Cadet
	ListError    error
}

func NewMockCadetRepository() *MockCadetRepository {
	return &MockCadetRepository{
		Cadets:       make(map[string]*models.Cadet),
		EmailToCadet: make(map[string]*models.Cadet),
	}
}

func (m *MockCadetRepository) Add(c *models.Cadet) {
	m.Cadets[c.ID] = c
	m.EmailToCadet[c.Email] = c
}

func (m *MockCadetRepository) GetByID(ctx context.Context, id string) (*models.Cadet, error) {
	return m.Cadets[id], nil
}

func (m *MockCadetRepository) GetByEmail(ctx context.Context, email string) (*models.Cadet, error) {
	return m.EmailToCadet[email], nil
}

func (m *MockCadetRepository) EmailIndex(ctx context.Context) (map[string]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	idx := make(map[string]string, len(m.EmailToCadet))
	for email, c := range m.EmailToCadet {
		idx[email] = c.ID
	}
	return idx, nil
}

func (m *MockCadetRepository) List(ctx context.Context, limit, offset int) ([]*models.Cadet, error) {
	all := make([]*models.Cadet, 0, len(m.Cadets))
	for _, c := range m.Cadets {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FullName < all[j].FullName })
	return window(all, limit, offset), nil
}

func (m *MockCadetRepository) Count(ctx context.Context) (int, error) {
	return len(m.Cadets), nil
}

func (m *MockCadetRepository) StreamAll(ctx context.Context, callback func(*models.Cadet) error) error {
	all, _ := m.List(ctx, len(m.Cadets), 0)
	for _, c := range all {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockVesselRepository is a mock implementation of VesselRepository
type MockVesselRepository struct {
	Vessels     map[string]*models.Vessel
	IMOToVessel map[string]*models.Vessel
}

func NewMockVesselRepository() *MockVesselRepository {
	return &MockVesselRepository{
		Vessels:     make(map[string]*models.Vessel),
		IMOToVessel: make(map[string]*models.Vessel),
	}
}

func (m *MockVesselRepository) Add(v *models.Vessel) {
	m.Vessels[v.ID] = v
	m.IMOToVessel[v.IMONumber] = v
}

func (m *MockVesselRepository) GetByID(ctx context.Context, id string) (*models.Vessel, error) {
	return m.Vessels[id], nil
}

func (m *MockVesselRepository) GetByIMO(ctx context.Context, imo string) (*models.Vessel, error) {
	return m.IMOToVessel[imo], nil
}

func (m *MockVesselRepository) IMOIndex(ctx context.Context) (map[string]string, error) {
	idx := make(map[string]string, len(m.IMOToVessel))
	for imo, v := range m.IMOToVessel {
		idx[imo] = v.ID
	}
	return idx, nil
}

func (m *MockVesselRepository) List(ctx context.Context, limit, offset int) ([]*models.Vessel, error) {
	all := make([]*models.Vessel, 0, len(m.Vessels))
	for _, v := range m.Vessels {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return window(all, limit, offset), nil
}

func (m *MockVesselRepository) Count(ctx context.Context) (int, error) {
	return len(m.Vessels), nil
}

func (m *MockVesselRepository) StreamAll(ctx context.Context, callback func(*models.Vessel) error) error {
	all, _ := m.List(ctx, len(m.Vessels), 0)
	for _, v := range all {
		if err := callback(v); err != nil {
			return err
		}
	}
	return nil
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	Tasks     map[string]*models.TrainingTask // keyed by models.TaskKey
	ShipNames []string
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Tasks: make(map[string]*models.TrainingTask),
		ShipNames: []string{
			"Bulk Carrier", "Chemical Tanker", "Container", "General Cargo",
			"LNG Carrier", "LPG Carrier", "Oil Tanker", "Passenger", "Ro-Ro",
		},
	}
}

func (m *MockTaskRepository) Add(t *models.TrainingTask) {
	m.Tasks[models.TaskKey(t.PartNumber, t.Title, t.ShipType)] = t
}

func (m *MockTaskRepository) KeyIndex(ctx context.Context) (map[string]bool, error) {
	idx := make(map[string]bool, len(m.Tasks))
	for key := range m.Tasks {
		idx[key] = true
	}
	return idx, nil
}

func (m *MockTaskRepository) ShipTypes(ctx context.Context) ([]string, error) {
	return m.ShipNames, nil
}

func (m *MockTaskRepository) List(ctx context.Context, limit, offset int) ([]*models.TrainingTask, error) {
	all := make([]*models.TrainingTask, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PartNumber < all[j].PartNumber })
	return window(all, limit, offset), nil
}

func (m *MockTaskRepository) Count(ctx context.Context) (int, error) {
	return len(m.Tasks), nil
}

func (m *MockTaskRepository) StreamAll(ctx context.Context, callback func(*models.TrainingTask) error) error {
	all, _ := m.List(ctx, len(m.Tasks), 0)
	for _, t := range all {
		if err := callback(t); err != nil {
			return err
		}
	}
	return nil
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	Assignments map[string]*models.Assignment // keyed by models.AssignmentKey
}

func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{
		Assignments: make(map[string]*models.Assignment),
	}
}

func (m *MockAssignmentRepository) Add(a *models.Assignment) {
	m.Assignments[models.AssignmentKey(a.CadetID, a.VesselID, a.DateJoined)] = a
}

func (m *MockAssignmentRepository) KeyIndex(ctx context.Context) (map[string]bool, error) {
	idx := make(map[string]bool, len(m.Assignments))
	for key := range m.Assignments {
		idx[key] = true
	}
	return idx, nil
}

func (m *MockAssignmentRepository) OpenByCadet(ctx context.Context) (map[string]bool, error) {
	open := make(map[string]bool)
	for _, a := range m.Assignments {
		if a.DateLeft == nil {
			open[a.CadetID] = true
		}
	}
	return open, nil
}

func (m *MockAssignmentRepository) List(ctx context.Context, limit, offset int) ([]*models.Assignment, error) {
	all := make([]*models.Assignment, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DateJoined < all[j].DateJoined })
	return window(all, limit, offset), nil
}

func (m *MockAssignmentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Assignments), nil
}

func (m *MockAssignmentRepository) StreamAll(ctx context.Context, callback func(*models.Assignment) error) error {
	all, _ := m.List(ctx, len(m.Assignments), 0)
	for _, a := range all {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockBatchRepository is a mock implementation of ImportBatchRepository
type MockBatchRepository struct {
	Batches []*models.ImportBatch
}

func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{}
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*models.ImportBatch, error) {
	for _, b := range m.Batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (m *MockBatchRepository) List(ctx context.Context, limit int) ([]*models.ImportBatch, error) {
	if limit > len(m.Batches) {
		limit = len(m.Batches)
	}
	return m.Batches[:limit], nil
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	Entries []*models.AuditEntry
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	if limit > len(m.Entries) {
		limit = len(m.Entries)
	}
	return m.Entries[:limit], nil
}

// MockImportStore hands out transactions whose writes land back in the
// mock repositories only on Commit, mirroring the real transactional store.
type MockImportStore struct {
	Cadets      *MockCadetRepository
	Vessels     *MockVesselRepository
	Tasks       *MockTaskRepository
	Assignments *MockAssignmentRepository
	Batches     *MockBatchRepository
	Audit       *MockAuditRepository

	BeginError error
	// CreateErrors maps a row's natural key to the error its create returns,
	// for exercising per-row failure downgrades
	CreateErrors map[string]error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

func NewMockImportStore(c *MockCadetRepository, v *MockVesselRepository, t *MockTaskRepository, a *MockAssignmentRepository, b *MockBatchRepository, au *MockAuditRepository) *MockImportStore {
	return &MockImportStore{
		Cadets:       c,
		Vessels:      v,
		Tasks:        t,
		Assignments:  a,
		Batches:      b,
		Audit:        au,
		CreateErrors: make(map[string]error),
	}
}

func (m *MockImportStore) Begin(ctx context.Context) (repository.ImportTx, error) {
	m.BeginCalls++
	if m.BeginError != nil {
		return nil, m.BeginError
	}
	return &mockImportTx{store: m}, nil
}

// pending accumulates the writes of one transaction. Savepoints snapshot the
// slice lengths; RollbackTo truncates back to them.
type pending struct {
	cadets      []*models.Cadet
	vessels     []*models.Vessel
	tasks       []*models.TrainingTask
	assignments []*models.Assignment
	batches     []*models.ImportBatch
	audit       []*models.AuditEntry
}

type mark struct {
	cadets, vessels, tasks, assignments, batches, audit int
}

type mockImportTx struct {
	store *MockImportStore
	buf   pending
	saves map[string]mark
}

func (t *mockImportTx) failFor(key string) error {
	if err, ok := t.store.CreateErrors[key]; ok {
		return err
	}
	return nil
}

func (t *mockImportTx) CreateCadet(ctx context.Context, c *models.Cadet) error {
	if err := t.failFor(c.Email); err != nil {
		return err
	}
	t.buf.cadets = append(t.buf.cadets, c)
	return nil
}

func (t *mockImportTx) CreateVessel(ctx context.Context, v *models.Vessel) error {
	if err := t.failFor(v.IMONumber); err != nil {
		return err
	}
	t.buf.vessels = append(t.buf.vessels, v)
	return nil
}

func (t *mockImportTx) CreateTask(ctx context.Context, task *models.TrainingTask) error {
	if err := t.failFor(models.TaskKey(task.PartNumber, task.Title, task.ShipType)); err != nil {
		return err
	}
	t.buf.tasks = append(t.buf.tasks, task)
	return nil
}

func (t *mockImportTx) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if err := t.failFor(models.AssignmentKey(a.CadetID, a.VesselID, a.DateJoined)); err != nil {
		return err
	}
	t.buf.assignments = append(t.buf.assignments, a)
	return nil
}

func (t *mockImportTx) CreateBatch(ctx context.Context, b *models.ImportBatch) error {
	t.buf.batches = append(t.buf.batches, b)
	return nil
}

func (t *mockImportTx) RecordAudit(ctx context.Context, e *models.AuditEntry) error {
	t.buf.audit = append(t.buf.audit, e)
	return nil
}

func (t *mockImportTx) Savepoint(ctx context.Context, name string) error {
	if t.saves == nil {
		t.saves = make(map[string]mark)
	}
	t.saves[name] = mark{
		cadets:      len(t.buf.cadets),
		vessels:     len(t.buf.vessels),
		tasks:       len(t.buf.tasks),
		assignments: len(t.buf.assignments),
		batches:     len(t.buf.batches),
		audit:       len(t.buf.audit),
	}
	return nil
}

func (t *mockImportTx) RollbackTo(ctx context.Context, name string) error {
	m, ok := t.saves[name]
	if !ok {
		return nil
	}
	t.buf.cadets = t.buf.cadets[:m.cadets]
	t.buf.vessels = t.buf.vessels[:m.vessels]
	t.buf.tasks = t.buf.tasks[:m.tasks]
	t.buf.assignments = t.buf.assignments[:m.assignments]
	t.buf.batches = t.buf.batches[:m.batches]
	t.buf.audit = t.buf.audit[:m.audit]
	return nil
}

func (t *mockImportTx) Commit() error {
	t.store.CommitCalls++
	for _, c := range t.buf.cadets {
		t.store.Cadets.Add(c)
	}
	for _, v := range t.buf.vessels {
		t.store.Vessels.Add(v)
	}
	for _, task := range t.buf.tasks {
		t.store.Tasks.Add(task)
	}
	for _, a := range t.buf.assignments {
		t.store.Assignments.Add(a)
	}
	t.store.Batches.Batches = append(t.store.Batches.Batches, t.buf.batches...)
	t.store.Audit.Entries = append(t.store.Audit.Entries, t.buf.audit...)
	return nil
}

func (t *mockImportTx) Rollback() error {
	t.store.RollbackCalls++
	return nil
}

// NewRepositories wires a full in-memory repository set for tests
func NewRepositories() *repository.Repositories {
	cadets := NewMockCadetRepository()
	vessels := NewMockVesselRepository()
	tasks := NewMockTaskRepository()
	assignments := NewMockAssignmentRepository()
	batches := NewMockBatchRepository()
	audit := NewMockAuditRepository()
	return &repository.Repositories{
		Cadet:      cadets,
		Vessel:     vessels,
		Task:       tasks,
		Assignment: assignments,
		Batch:      batches,
		Audit:      audit,
		Importer:   NewMockImportStore(cadets, vessels, tasks, assignments, batches, audit),
	}
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}
