package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
	reportsvc "github.com/cmlabs-hris/worktrack-backend-go/internal/service/report"
)

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func strPtr(s string) *string { return &s }

func callerCtx(t *testing.T, employeeID string, role user.Role) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        string(role),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

var errConnReset = errors.New("connection reset")

// store is the in-memory state behind every fake repository
type store struct {
	mu          sync.Mutex
	clients     map[string]client.Client
	projects    map[string]project.Project
	activities  map[string]activity.Activity
	screenshots map[string]activity.Screenshot
	employees   map[string]employee.Employee
	failOn      string
}

func newStore() *store {
	return &store{
		clients:     make(map[string]client.Client),
		projects:    make(map[string]project.Project),
		activities:  make(map[string]activity.Activity),
		screenshots: make(map[string]activity.Screenshot),
		employees:   make(map[string]employee.Employee),
	}
}

type fakeTransactor struct{ s *store }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	projects := make(map[string]project.Project, len(t.s.projects))
	for k, v := range t.s.projects {
		projects[k] = v
	}
	activities := make(map[string]activity.Activity, len(t.s.activities))
	for k, v := range t.s.activities {
		activities[k] = v
	}
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.projects = projects
		t.s.activities = activities
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type fakeClients struct {
	client.ClientRepository
	s *store
}

func (r fakeClients) GetByID(ctx context.Context, id string) (client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return client.Client{}, client.ErrClientNotFound
	}
	return c, nil
}

func (r fakeClients) List(ctx context.Context) ([]client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []client.Client
	for _, c := range r.s.clients {
		out = append(out, c)
	}
	return out, nil
}

func (r fakeClients) ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeClients) Create(ctx context.Context, c client.Client) (client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID()
	r.s.clients[c.ID] = c
	return c, nil
}

func (r fakeClients) Update(ctx context.Context, c client.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clients[c.ID] = c
	return nil
}

func (r fakeClients) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	return nil
}

type fakeProjects struct {
	project.ProjectRepository
	s *store
}

func (r fakeProjects) ListByClient(ctx context.Context, clientID string) ([]client.ProjectRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []client.ProjectRef
	for _, p := range r.s.projects {
		if p.ClientID != nil && *p.ClientID == clientID {
			out = append(out, client.ProjectRef{ID: p.ID, Name: p.Name})
		}
	}
	return out, nil
}

func (r fakeProjects) ClearClient(ctx context.Context, clientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.projects {
		if p.ClientID != nil && *p.ClientID == clientID {
			p.ClientID = nil
			r.s.projects[id] = p
			n++
		}
	}
	return n, nil
}

type fakeActivities struct {
	activity.ActivityRepository
	s *store
}

func (r fakeActivities) ClearClient(ctx context.Context, clientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.activities {
		if a.ClientID != nil && *a.ClientID == clientID {
			a.ClientID = nil
			r.s.activities[id] = a
			n++
		}
	}
	return n, nil
}

type fakeScreenshots struct {
	activity.ScreenshotRepository
	s *store
}

func (r fakeScreenshots) ClearClient(ctx context.Context, clientID string) (int64, error) {
	if r.s.failOn == "screenshots.clear" {
		return 0, errConnReset
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sh := range r.s.screenshots {
		if sh.ClientID != nil && *sh.ClientID == clientID {
			sh.ClientID = nil
			r.s.screenshots[id] = sh
			n++
		}
	}
	return n, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	s *store
}

func (r fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// fakeAggregator runs the real engine over the stored activities
type fakeAggregator struct{ s *store }

func (a fakeAggregator) Aggregate(ctx context.Context, filter report.ActivityFilter, views []report.View) (report.Summary, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var records []report.ActivityRecord
	for _, act := range a.s.activities {
		emp := a.s.employees[act.EmployeeID]
		records = append(records, report.ActivityRecord{
			ID:           act.ID,
			EmployeeID:   act.EmployeeID,
			EmployeeName: emp.FullName(),
			PayRate:      emp.PayRate,
			ClientID:     act.ClientID,
			ProjectID:    act.ProjectID,
			StartTime:    act.StartTime,
			EndTime:      act.EndTime,
			ActivityOn:   act.ActivityOn,
			IsInternal:   act.IsInternal,
		})
	}
	return reportsvc.Summarize(records, filter, views, time.UTC), nil
}

type fixture struct {
	svc     *ClientServiceImpl
	store   *store
	manager string
}

func newFixture() *fixture {
	s := newStore()
	manager := employee.Employee{ID: newID(), FirstName: "Maya", Role: user.RoleManager, PayRate: decimal.NewFromInt(30)}
	s.employees[manager.ID] = manager

	svc := NewClientService(
		fakeTransactor{s},
		fakeClients{s: s},
		fakeProjects{s: s},
		fakeActivities{s: s},
		fakeScreenshots{s: s},
		fakeEmployees{s: s},
		fakeAggregator{s},
	).(*ClientServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC) }
	return &fixture{svc: svc, store: s, manager: manager.ID}
}

func (f *fixture) ctx(t *testing.T) context.Context {
	return callerCtx(t, f.manager, user.RoleManager)
}

func (f *fixture) addClient(name string) client.Client {
	c := client.Client{ID: newID(), Name: name}
	f.store.clients[c.ID] = c
	return c
}

func (f *fixture) addProject(name string, clientID *string) project.Project {
	p := project.Project{ID: newID(), Name: name, ClientID: clientID}
	f.store.projects[p.ID] = p
	return p
}

func (f *fixture) addActivity(emp string, clientID *string, on time.Time, hours int64, internal bool) activity.Activity {
	start := on.UnixMilli()
	a := activity.Activity{
		ID: newID(), EmployeeID: emp, ClientID: clientID,
		StartTime: start, EndTime: start + hours*3600000, ConsumeTime: hours * 3600000,
		ActivityOn: on, IsInternal: internal,
	}
	f.store.activities[a.ID] = a
	sh := activity.Screenshot{ID: newID(), EmployeeID: emp, ActivityID: a.ID, ClientID: clientID, ActivityAt: start}
	f.store.screenshots[sh.ID] = sh
	return a
}

// ===== CREATE / UPDATE TESTS =====

func TestCreateClient(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateClient(f.ctx(t), client.CreateClientRequest{Name: "  Acme Corp ", ManagerID: &f.manager})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", resp.Name)
	assert.Equal(t, &f.manager, resp.CreatedBy)
	assert.Equal(t, []client.ProjectRef{}, resp.Projects)

	_, err = f.svc.CreateClient(f.ctx(t), client.CreateClientRequest{Name: "ACME corp"})
	assert.ErrorIs(t, err, client.ErrClientNameExists)

	_, err = f.svc.CreateClient(f.ctx(t), client.CreateClientRequest{Name: "Other", ManagerID: strPtr(newID())})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.CreateClient(f.ctx(t), client.CreateClientRequest{Name: " "})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.CreateClient(callerCtx(t, newID(), user.RoleEmployee), client.CreateClientRequest{Name: "Nope"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	assert.Len(t, f.store.clients, 1)
}

func TestGetClient_ListsProjects(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")
	p := f.addProject("Website", &c.ID)
	f.addProject("Unrelated", nil)

	resp, err := f.svc.GetClient(callerCtx(t, newID(), user.RoleEmployee), c.ID)
	require.NoError(t, err)
	assert.Equal(t, []client.ProjectRef{{ID: p.ID, Name: "Website"}}, resp.Projects)

	_, err = f.svc.GetClient(f.ctx(t), "not-a-uuid")
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestUpdateClient(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")
	f.addClient("Globex")
	c.ManagerID = &f.manager
	f.store.clients[c.ID] = c

	_, err := f.svc.UpdateClient(f.ctx(t), client.UpdateClientRequest{ID: c.ID, Name: strPtr("globex")})
	assert.ErrorIs(t, err, client.ErrClientNameExists)

	// renaming to its own name in another case is not a conflict
	resp, err := f.svc.UpdateClient(f.ctx(t), client.UpdateClientRequest{ID: c.ID, Name: strPtr("ACME"), ManagerID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "ACME", resp.Name)
	assert.Nil(t, resp.ManagerID)
}

// ===== DELETE TESTS =====

func TestDeleteClient_Cascade(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")
	other := f.addClient("Globex")
	p1 := f.addProject("Website", &c.ID)
	p2 := f.addProject("App", &c.ID)
	p3 := f.addProject("Intranet", &other.ID)
	on := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.addActivity(f.manager, &c.ID, on, 1, false)
	}
	kept := f.addActivity(f.manager, &other.ID, on, 1, false)

	require.NoError(t, f.svc.DeleteClient(f.ctx(t), c.ID))

	assert.NotContains(t, f.store.clients, c.ID)
	assert.Nil(t, f.store.projects[p1.ID].ClientID)
	assert.Nil(t, f.store.projects[p2.ID].ClientID)
	assert.Equal(t, &other.ID, f.store.projects[p3.ID].ClientID)
	for id, a := range f.store.activities {
		if id == kept.ID {
			assert.Equal(t, &other.ID, a.ClientID)
			continue
		}
		assert.Nil(t, a.ClientID)
	}
	for _, sh := range f.store.screenshots {
		if sh.ActivityID != kept.ID {
			assert.Nil(t, sh.ClientID)
		}
	}
	assert.Len(t, f.store.activities, 4, "activities survive the client")
}

func TestDeleteClient_FailureRollsBack(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")
	p := f.addProject("Website", &c.ID)
	a := f.addActivity(f.manager, &c.ID, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), 1, false)
	f.store.failOn = "screenshots.clear"

	err := f.svc.DeleteClient(f.ctx(t), c.ID)
	require.ErrorIs(t, err, errConnReset)

	assert.Contains(t, f.store.clients, c.ID)
	assert.Equal(t, &c.ID, f.store.projects[p.ID].ClientID)
	assert.Equal(t, &c.ID, f.store.activities[a.ID].ClientID)
}

func TestDeleteClient_NotFoundAndForbidden(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")

	assert.ErrorIs(t, f.svc.DeleteClient(f.ctx(t), newID()), client.ErrClientNotFound)
	assert.ErrorIs(t, f.svc.DeleteClient(callerCtx(t, newID(), user.RoleProjectLeader), c.ID), user.ErrInsufficientPermissions)
	assert.Contains(t, f.store.clients, c.ID)
}

// ===== TIME TESTS =====

func TestGetClientTime(t *testing.T) {
	f := newFixture()
	c := f.addClient("Acme")
	other := f.addClient("Globex")
	worker := employee.Employee{ID: newID(), FirstName: "Budi", PayRate: decimal.NewFromInt(15)}
	f.store.employees[worker.ID] = worker
	on := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	f.addActivity(worker.ID, &c.ID, on, 2, false)
	f.addActivity(worker.ID, &c.ID, on, 1, true)
	f.addActivity(f.manager, &c.ID, on, 3, false)
	f.addActivity(f.manager, &other.ID, on, 5, false)

	resp, err := f.svc.GetClientTime(f.ctx(t), c.ID)
	require.NoError(t, err)

	hour := int64(3600000)
	assert.Equal(t, "Acme", resp.Name)
	assert.Equal(t, 5*hour, resp.External)
	assert.Equal(t, 1*hour, resp.Internal)
	assert.Equal(t, 6*hour, resp.Total)

	require.Len(t, resp.Employees, 2)
	byName := map[string]client.EmployeeTime{}
	for _, e := range resp.Employees {
		byName[e.Name] = e
	}
	assert.Equal(t, 3*hour, byName["Budi"].Total)
	assert.Equal(t, 1*hour, byName["Budi"].Internal)
	assert.True(t, decimal.NewFromInt(15).Equal(byName["Budi"].PayRate))
	assert.Equal(t, 3*hour, byName["Maya"].External)
}
