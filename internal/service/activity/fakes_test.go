package activity

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
)

var errDiskFull = errors.New("disk full")

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func callerCtx(t *testing.T, employeeID, role string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        role,
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// store is the in-memory database shared by the fakes. The fake
// transactor snapshots it and restores the snapshot when fn fails.
type store struct {
	mu          sync.Mutex
	activities  map[string]activity.Activity
	screenshots map[string]activity.Screenshot
	days        map[string][]employee.DayBucket

	failOn   string // name of the operation that returns errDiskFull
	failWith error  // overrides errDiskFull when set
}

func newStore() *store {
	return &store{
		activities:  make(map[string]activity.Activity),
		screenshots: make(map[string]activity.Screenshot),
		days:        make(map[string][]employee.DayBucket),
	}
}

func (s *store) fail(op string) error {
	if s.failOn == op {
		if s.failWith != nil {
			return s.failWith
		}
		return errDiskFull
	}
	return nil
}

type snapshot struct {
	activities  map[string]activity.Activity
	screenshots map[string]activity.Screenshot
	days        map[string][]employee.DayBucket
}

func (s *store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		activities:  make(map[string]activity.Activity, len(s.activities)),
		screenshots: make(map[string]activity.Screenshot, len(s.screenshots)),
		days:        make(map[string][]employee.DayBucket, len(s.days)),
	}
	for k, v := range s.activities {
		snap.activities[k] = v
	}
	for k, v := range s.screenshots {
		snap.screenshots[k] = v
	}
	for k, v := range s.days {
		snap.days[k] = cloneDays(v)
	}
	return snap
}

func (s *store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = snap.activities
	s.screenshots = snap.screenshots
	s.days = snap.days
}

func cloneDays(days []employee.DayBucket) []employee.DayBucket {
	out := make([]employee.DayBucket, len(days))
	for i, d := range days {
		d.ActivityIDs = append([]string(nil), d.ActivityIDs...)
		out[i] = d
	}
	return out
}

type fakeTransactor struct{ s *store }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ===== ACTIVITY REPOSITORY =====

type fakeActivities struct{ s *store }

func (r fakeActivities) GetByID(ctx context.Context, id string) (activity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return activity.Activity{}, activity.ErrActivityNotFound
	}
	return a, nil
}

func (r fakeActivities) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]activity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []activity.Activity
	for _, a := range r.s.activities {
		if a.EmployeeID == employeeID && !a.ActivityOn.Before(from) && !a.ActivityOn.After(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r fakeActivities) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	if err := r.s.fail("activity.create"); err != nil {
		return activity.Activity{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = newID()
	r.s.activities[a.ID] = a
	return a, nil
}

func (r fakeActivities) Update(ctx context.Context, a activity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[a.ID]; !ok {
		return activity.ErrActivityNotFound
	}
	r.s.activities[a.ID] = a
	return nil
}

func (r fakeActivities) AdjustConsumeTime(ctx context.Context, id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return activity.ErrActivityNotFound
	}
	a.ConsumeTime += delta
	r.s.activities[id] = a
	return nil
}

func (r fakeActivities) Delete(ctx context.Context, id string) error {
	if err := r.s.fail("activity.delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[id]; !ok {
		return activity.ErrActivityNotFound
	}
	delete(r.s.activities, id)
	return nil
}

func (r fakeActivities) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return 0, errors.New("not used")
}

func (r fakeActivities) ClearClient(ctx context.Context, clientID string) (int64, error) {
	return 0, errors.New("not used")
}

func (r fakeActivities) ClearProject(ctx context.Context, projectID string) (int64, error) {
	return 0, errors.New("not used")
}

// ===== SCREENSHOT REPOSITORY =====

type fakeScreenshots struct {
	activity.ScreenshotRepository
	s *store
}

func (r fakeScreenshots) GetByID(ctx context.Context, id string) (activity.Screenshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.screenshots[id]
	if !ok {
		return activity.Screenshot{}, activity.ErrScreenshotNotFound
	}
	return sh, nil
}

func (r fakeScreenshots) ListByActivity(ctx context.Context, activityID string) ([]activity.Screenshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []activity.Screenshot
	for _, sh := range r.s.screenshots {
		if sh.ActivityID == activityID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActivityAt != out[j].ActivityAt {
			return out[i].ActivityAt < out[j].ActivityAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r fakeScreenshots) Create(ctx context.Context, sh activity.Screenshot) (activity.Screenshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh.ID = newID()
	r.s.screenshots[sh.ID] = sh
	return sh, nil
}

func (r fakeScreenshots) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.screenshots[id]; !ok {
		return activity.ErrScreenshotNotFound
	}
	delete(r.s.screenshots, id)
	return nil
}

func (r fakeScreenshots) DeleteByActivity(ctx context.Context, activityID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sh := range r.s.screenshots {
		if sh.ActivityID == activityID {
			delete(r.s.screenshots, id)
			n++
		}
	}
	return n, nil
}

func (r fakeScreenshots) Reassign(ctx context.Context, ids []string, activityID string) error {
	if err := r.s.fail("screenshot.reassign"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		sh := r.s.screenshots[id]
		sh.ActivityID = activityID
		r.s.screenshots[id] = sh
	}
	return nil
}

// ===== DAY BUCKETS =====

type fakeDayBuckets struct{ s *store }

func (f fakeDayBuckets) AttachActivities(ctx context.Context, employeeID, date string, activityIDs []string, consumed int64) error {
	if err := f.s.fail("days.attach"); err != nil {
		return err
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.days[employeeID], _ = employee.AttachActivity(f.s.days[employeeID], date, activityIDs, consumed)
	return nil
}

func (f fakeDayBuckets) DetachActivity(ctx context.Context, employeeID, activityID string, consumed int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	employee.DetachActivity(f.s.days[employeeID], activityID, consumed)
	return nil
}

// ===== FILES =====

type fakeFiles struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
	fail    bool
}

func (f *fakeFiles) UploadScreenshot(ctx context.Context, employeeID string, capturedAt time.Time, file io.Reader, filename string) (string, error) {
	if f.fail {
		return "", errDiskFull
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := "screenshots/" + employeeID + "/" + newID() + ".jpg"
	f.stored[key] = data
	return key, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFiles) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://files/" + path, nil
}

type fixture struct {
	svc   *ActivityServiceImpl
	store *store
	files *fakeFiles
}

func newFixture() *fixture {
	s := newStore()
	files := &fakeFiles{stored: make(map[string][]byte)}
	svc := NewActivityService(
		fakeTransactor{s},
		fakeActivities{s},
		fakeScreenshots{s: s},
		fakeDayBuckets{s},
		files,
		time.UTC,
	).(*ActivityServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC) }
	return &fixture{svc: svc, store: s, files: files}
}

// seed stores an activity with screenshots captured at the given times and
// registers it in the day bucket of its start time.
func (f *fixture) seed(employeeID string, start, end int64, shotTimes ...int64) activity.Activity {
	a := activity.Activity{
		ID:          newID(),
		EmployeeID:  employeeID,
		Task:        "Design review",
		StartTime:   start,
		EndTime:     end,
		ConsumeTime: end - start,
		ActivityOn:  time.UnixMilli(start).UTC(),
		Performance: 75,
		IsAccepted:  true,
	}
	f.store.activities[a.ID] = a
	for _, at := range shotTimes {
		sh := activity.Screenshot{ID: newID(), EmployeeID: employeeID, ActivityID: a.ID, ActivityAt: at, ConsumeTime: 60000, Title: "Editor"}
		f.store.screenshots[sh.ID] = sh
	}
	date := employee.FormatDayDateMillis(start, time.UTC)
	f.store.days[employeeID], _ = employee.AttachActivity(f.store.days[employeeID], date, []string{a.ID}, a.ConsumeTime)
	return a
}
