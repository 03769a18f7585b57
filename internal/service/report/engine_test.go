package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
)

func strPtr(s string) *string { return &s }

var (
	june1 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	hour  = int64(time.Hour / time.Millisecond)
)

type recOpt func(*report.ActivityRecord)

func withProject(id, name string) recOpt {
	return func(r *report.ActivityRecord) { r.ProjectID = strPtr(id); r.ProjectName = name }
}

func withClient(id, name string) recOpt {
	return func(r *report.ActivityRecord) { r.ClientID = strPtr(id); r.ClientName = name }
}

func internal() recOpt { return func(r *report.ActivityRecord) { r.IsInternal = true } }

func withShots(shots ...report.ScreenshotRecord) recOpt {
	return func(r *report.ActivityRecord) { r.Screenshots = shots }
}

func withPay(rate string) recOpt {
	return func(r *report.ActivityRecord) { r.PayRate = decimal.RequireFromString(rate) }
}

// rec builds an activity of the given length in hours starting at on
func rec(id, employeeID string, on time.Time, hours int64, perf float64, opts ...recOpt) report.ActivityRecord {
	start := on.UnixMilli()
	r := report.ActivityRecord{
		ID:           id,
		EmployeeID:   employeeID,
		EmployeeName: "Employee " + employeeID,
		PayRate:      decimal.NewFromInt(10),
		StartTime:    start,
		EndTime:      start + hours*hour,
		ActivityOn:   on,
		Performance:  perf,
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func sampleRecords() []report.ActivityRecord {
	return []report.ActivityRecord{
		rec("a1", "e1", june1, 2, 80, withProject("p1", "Apollo"), withClient("c1", "Acme"),
			withShots(
				report.ScreenshotRecord{ID: "s1", Title: "Editor", ConsumeTime: 600000, Performance: 70},
				report.ScreenshotRecord{ID: "s2", Title: "Browser", ConsumeTime: 300000, Performance: 50},
			)),
		rec("a2", "e1", june1.AddDate(0, 0, 1), 1, 60, withProject("p1", "Apollo"), withClient("c1", "Acme"), internal(),
			withShots(report.ScreenshotRecord{ID: "s3", Title: "Editor", ConsumeTime: 600000, Performance: 90})),
		rec("a3", "e2", june1.AddDate(0, 0, 1), 3, 40, withProject("p2", "Borealis")),
		rec("a4", "e2", june1.AddDate(0, 0, 4), 1, 100, internal(), withPay("25")),
	}
}

func juneFilter() report.ActivityFilter {
	return report.ActivityFilter{From: june1, To: june1.AddDate(0, 0, 10)}
}

func TestSelectBucket(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		span time.Duration
		want report.Bucket
	}{
		{0, report.BucketDaily},
		{31 * day, report.BucketDaily},
		{31*day + time.Millisecond, report.BucketWeekly},
		{120 * day, report.BucketWeekly},
		{121 * day, report.BucketMonthly},
		{365 * day, report.BucketMonthly},
		{366 * day, report.BucketYearly},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectBucket(june1, june1.Add(tt.span)), tt.span.String())
	}
}

func TestSummarize_DateBucketFollowsSpan(t *testing.T) {
	records := []report.ActivityRecord{
		rec("a1", "e1", time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC), 1, 0),
		rec("a2", "e1", time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC), 1, 0),
		rec("a3", "e1", time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC), 1, 0),
	}
	labels := func(groups []report.Group) []string {
		var out []string
		for _, g := range groups {
			out = append(out, g.Label)
		}
		return out
	}

	from := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	daily := Summarize(records, report.ActivityFilter{From: from, To: from.AddDate(0, 0, 31)}, []report.View{report.ViewDates}, time.UTC)
	assert.Equal(t, report.BucketDaily, daily.Bucket)
	assert.Equal(t, []string{"20/12/2024", "30/12/2024", "31/12/2024"}, labels(daily.Dates))

	weekly := Summarize(records, report.ActivityFilter{From: from, To: from.AddDate(0, 0, 60)}, []report.View{report.ViewDates}, time.UTC)
	assert.Equal(t, report.BucketWeekly, weekly.Bucket)
	// 30 and 31 December 2024 belong to ISO week 1 of 2025
	assert.Equal(t, []string{"W51/2024", "W1/2025"}, labels(weekly.Dates))
	assert.Equal(t, 2, weekly.Dates[1].Count)

	monthly := Summarize(records, report.ActivityFilter{From: from, To: from.AddDate(0, 0, 200)}, []report.View{report.ViewDates}, time.UTC)
	assert.Equal(t, report.BucketMonthly, monthly.Bucket)
	assert.Equal(t, []string{"12/2024"}, labels(monthly.Dates))

	yearly := Summarize(records, report.ActivityFilter{From: from.AddDate(-2, 0, 0), To: from.AddDate(0, 0, 30)}, []report.View{report.ViewDates}, time.UTC)
	assert.Equal(t, report.BucketYearly, yearly.Bucket)
	assert.Equal(t, []string{"2024"}, labels(yearly.Dates))
}

func TestSummarize_DatesAreChronological(t *testing.T) {
	records := sampleRecords()
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	s := Summarize(records, juneFilter(), []report.View{report.ViewDates}, time.UTC)
	require.Len(t, s.Dates, 3)
	assert.Equal(t, "1/6/2024", s.Dates[0].Label)
	assert.Equal(t, "2/6/2024", s.Dates[1].Label)
	assert.Equal(t, "5/6/2024", s.Dates[2].Label)
	assert.Equal(t, 2, s.Dates[1].Count)
}

func assertBalanced(t *testing.T, view string, groups []report.Group) {
	t.Helper()
	for _, g := range groups {
		assert.Equal(t, g.Total, g.Internal+g.External, "%s/%s", view, g.Label)
		assertBalanced(t, view+"/"+g.Label, g.Rows)
	}
}

func TestSummarize_InternalPlusExternalIsTotal(t *testing.T) {
	s := Summarize(sampleRecords(), juneFilter(), nil, time.UTC)

	assertBalanced(t, "projects", s.Projects)
	assertBalanced(t, "clients", s.Clients)
	assertBalanced(t, "employees", s.Employees)
	assertBalanced(t, "screenshots", s.Screenshots)
	assertBalanced(t, "employee_projects", s.EmployeeProjects)
	assertBalanced(t, "client_employees", s.ClientEmployees)
	assertBalanced(t, "project_employees", s.ProjectEmployees)
	assertBalanced(t, "employee_screenshots", s.EmployeeScreenshots)
	assertBalanced(t, "dates", s.Dates)
	require.NotNil(t, s.Total)
	assertBalanced(t, "total", []report.Group{*s.Total})

	assert.Equal(t, 7*hour, s.Total.Total)
	assert.Equal(t, 2*hour, s.Total.Internal)
	assert.Equal(t, 4, s.Total.Count)
	assert.Len(t, s.Details, 4)
}

func TestSummarize_Idempotent(t *testing.T) {
	records := sampleRecords()
	first := Summarize(records, juneFilter(), nil, time.UTC)

	shuffled := append([]report.ActivityRecord(nil), records...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := Summarize(shuffled, juneFilter(), nil, time.UTC)

	assert.Equal(t, first, second)
	assert.Equal(t, first, Summarize(records, juneFilter(), nil, time.UTC))
}

func TestSummarize_EmptyListMatchesNothing(t *testing.T) {
	f := juneFilter()
	f.ProjectIDs = []string{}

	s := Summarize(sampleRecords(), f, nil, time.UTC)

	assert.Empty(t, s.Projects)
	assert.Empty(t, s.Details)
	require.NotNil(t, s.Total)
	assert.Equal(t, 0, s.Total.Count)
	assert.Equal(t, float64(0), s.Total.AvgPerformance)
	assert.True(t, s.Total.AvgPayRate.IsZero())
}

func TestSummarize_GroupsAndOrdering(t *testing.T) {
	s := Summarize(sampleRecords(), juneFilter(), nil, time.UTC)

	// projects: label order, null project is its own group
	require.Len(t, s.Projects, 3)
	assert.Equal(t, "Apollo", s.Projects[0].Label)
	assert.Equal(t, 2, s.Projects[0].Count)
	assert.Equal(t, 3*hour, s.Projects[0].Total)
	assert.Equal(t, float64(70), s.Projects[0].AvgPerformance)
	assert.Equal(t, "Borealis", s.Projects[1].Label)
	assert.Equal(t, noProjectLabel, s.Projects[2].Label)
	assert.Nil(t, s.Projects[2].ID)

	require.Len(t, s.Clients, 2)
	assert.Equal(t, "Acme", s.Clients[0].Label)
	assert.Equal(t, noClientLabel, s.Clients[1].Label)
	assert.Equal(t, 4*hour, s.Clients[1].Total)

	// employees carry the first-seen pay rate
	require.Len(t, s.Employees, 2)
	assert.Equal(t, "Employee e2", s.Employees[1].Label)
	require.NotNil(t, s.Employees[1].PayRate)
	assert.True(t, decimal.NewFromInt(10).Equal(*s.Employees[1].PayRate))

	// total averages pay rate over activities: (10+10+10+25)/4
	assert.True(t, decimal.RequireFromString("13.75").Equal(*s.Total.AvgPayRate))

	// details follow start time
	assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, []string{
		s.Details[0].ActivityID, s.Details[1].ActivityID, s.Details[2].ActivityID, s.Details[3].ActivityID,
	})
}

func TestSummarize_ScreenshotViews(t *testing.T) {
	s := Summarize(sampleRecords(), juneFilter(), []report.View{report.ViewScreenshots, report.ViewEmployeeScreenshots}, time.UTC)

	require.Len(t, s.Screenshots, 2)
	browser, editor := s.Screenshots[0], s.Screenshots[1]

	assert.Equal(t, "Browser", browser.Label)
	assert.Equal(t, 1, browser.Count)
	assert.Equal(t, int64(300000), browser.External)

	assert.Equal(t, "Editor", editor.Label)
	assert.Equal(t, 2, editor.Count, "count is distinct activities")
	assert.Equal(t, int64(600000), editor.Internal, "internal flag comes from the owning activity")
	assert.Equal(t, int64(600000), editor.External)
	assert.Equal(t, float64(80), editor.AvgPerformance)

	require.Len(t, s.EmployeeScreenshots, 1, "employees without screenshots do not appear")
	assert.Len(t, s.EmployeeScreenshots[0].Rows, 2)
	assert.Nil(t, s.Projects, "unrequested views stay nil")
}

func TestSummarize_NestedViews(t *testing.T) {
	s := Summarize(sampleRecords(), juneFilter(), []report.View{
		report.ViewEmployeeProjects, report.ViewClientEmployees, report.ViewProjectEmployees,
	}, time.UTC)

	require.Len(t, s.EmployeeProjects, 2)
	e1 := s.EmployeeProjects[0]
	require.Len(t, e1.Rows, 1)
	assert.Equal(t, "Apollo", e1.Rows[0].Label)
	require.NotNil(t, e1.Rows[0].Client)
	assert.Equal(t, "Acme", e1.Rows[0].Client.Name)
	assert.NotNil(t, e1.PayRate)

	require.Len(t, s.ClientEmployees, 2)
	assert.Equal(t, "Acme", s.ClientEmployees[0].Label)
	require.Len(t, s.ClientEmployees[0].Rows, 1)
	assert.NotNil(t, s.ClientEmployees[0].Rows[0].PayRate)
	assert.Len(t, s.ClientEmployees[1].Rows, 1)

	require.Len(t, s.ProjectEmployees, 3)
	assert.Equal(t, noClientLabel, s.ProjectEmployees[1].Client.Name)
}

func TestSummarize_UsesLocationForDates(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	late := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	records := []report.ActivityRecord{rec("a1", "e1", late, 1, 0)}

	s := Summarize(records, juneFilter(), []report.View{report.ViewDates}, jakarta)
	require.Len(t, s.Dates, 1)
	assert.Equal(t, "2/6/2024", s.Dates[0].Label)
}
