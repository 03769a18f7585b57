package report

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/storage"
)

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func callerCtx(t *testing.T, employeeID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"email":       employeeID + "@example.com",
		"role":        role,
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type idSet map[string]bool

func (s idSet) missing(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !s[id] {
			out = append(out, id)
		}
	}
	return out
}

type fakeEmployees struct {
	employee.EmployeeRepository
	known map[string]employee.Employee
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.known[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	set := idSet{}
	for id := range f.known {
		set[id] = true
	}
	return set.missing(ids), nil
}

type fakeProjects struct {
	project.ProjectRepository
	known idSet
}

func (f *fakeProjects) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return f.known.missing(ids), nil
}

type fakeClients struct {
	client.ClientRepository
	known idSet
}

func (f *fakeClients) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return f.known.missing(ids), nil
}

type fakeReader struct {
	records []report.ActivityRecord
}

func (f *fakeReader) ListRecords(ctx context.Context, filter report.ActivityFilter) ([]report.ActivityRecord, error) {
	return f.records, nil
}

type fakeDefinitions struct {
	mu   sync.Mutex
	defs map[string]report.Definition
}

func newFakeDefinitions(defs ...report.Definition) *fakeDefinitions {
	f := &fakeDefinitions{defs: make(map[string]report.Definition)}
	for _, d := range defs {
		f.defs[d.ID] = d
	}
	return f
}

func (f *fakeDefinitions) Create(ctx context.Context, d report.Definition) (report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = newID()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.UpdatedAt = d.CreatedAt
	f.defs[d.ID] = d
	return d, nil
}

func (f *fakeDefinitions) GetByID(ctx context.Context, id string) (report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.defs[id]
	if !ok {
		return report.Definition{}, report.ErrReportNotFound
	}
	return d, nil
}

func (f *fakeDefinitions) GetByURL(ctx context.Context, url string) (report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.defs {
		if d.URL == url {
			return d, nil
		}
	}
	return report.Definition{}, report.ErrReportNotFound
}

func (f *fakeDefinitions) ListByOwner(ctx context.Context, ownerID string) ([]report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.Definition
	for _, d := range f.defs {
		if d.OwnerID == ownerID && !d.Transient {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDefinitions) ListScheduled(ctx context.Context) ([]report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.Definition
	for _, d := range f.defs {
		if d.Schedule && d.CronString != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDefinitions) MarkRun(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.defs[id]
	if !ok {
		return report.ErrReportNotFound
	}
	d.LastRunAt = &at
	f.defs[id] = d
	return nil
}

func (f *fakeDefinitions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.defs[id]; !ok {
		return report.ErrReportNotFound
	}
	delete(f.defs, id)
	return nil
}

func (f *fakeDefinitions) ListTransientBefore(ctx context.Context, t time.Time) ([]report.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []report.Definition
	for _, d := range f.defs {
		if d.Transient && d.CreatedAt.Before(t) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDefinitions) get(id string) report.Definition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defs[id]
}

func (f *fakeDefinitions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.defs)
}

// countFiles returns the number of regular files under root
func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

type fixture struct {
	core    *ReportServiceImpl
	defs    *fakeDefinitions
	dir     string
	ownerID string
}

// wednesday 5 June 2024, 09:30 UTC
var fixedNow = time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, defs ...report.Definition) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost:8080/files")
	require.NoError(t, err)

	ownerID := newID()
	employees := &fakeEmployees{known: map[string]employee.Employee{
		ownerID: {ID: ownerID, FirstName: "Ana", LastName: "Wijaya"},
	}}

	fd := newFakeDefinitions(defs...)
	core := NewReportService(
		&fakeReader{records: sampleRecords()},
		fd,
		employees,
		&fakeProjects{known: idSet{}},
		&fakeClients{known: idSet{}},
		store,
		time.UTC,
	)
	core.now = func() time.Time { return fixedNow }

	return &fixture{core: core, defs: fd, dir: dir, ownerID: ownerID}
}
