package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// ========================================
// ENGINE INPUT
// ========================================

// ActivityFilter selects the activities a summary is computed over.
// A nil id list matches everything; a non-nil empty list matches nothing.
type ActivityFilter struct {
	EmployeeIDs []string
	ProjectIDs  []string
	ClientIDs   []string
	From        time.Time
	To          time.Time

	// WholeDayTo is set when To was given as a date and widened to the
	// last millisecond of that day.
	WholeDayTo bool
}

// SpanEnd is the end used to measure the range for bucket selection: the
// requested date itself, not the widened end of that day.
func (f ActivityFilter) SpanEnd() time.Time {
	if f.WholeDayTo {
		return f.To.Add(-(wholeDay - time.Millisecond))
	}
	return f.To
}

const wholeDay = 24 * time.Hour

// Matches reports whether rec passes the filter.
func (f ActivityFilter) Matches(rec ActivityRecord) bool {
	if !matchID(f.EmployeeIDs, &rec.EmployeeID) ||
		!matchID(f.ProjectIDs, rec.ProjectID) ||
		!matchID(f.ClientIDs, rec.ClientID) {
		return false
	}
	return !rec.ActivityOn.Before(f.From) && !rec.ActivityOn.After(f.To)
}

func matchID(ids []string, id *string) bool {
	if ids == nil {
		return true
	}
	if id == nil {
		return false
	}
	for _, want := range ids {
		if want == *id {
			return true
		}
	}
	return false
}

// ActivityRecord is one activity joined with the names the summary shows.
type ActivityRecord struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	PayRate      decimal.Decimal
	ClientID     *string
	ClientName   string
	ProjectID    *string
	ProjectName  string
	Task         string
	StartTime    int64
	EndTime      int64
	ActivityOn   time.Time
	IsInternal   bool
	Performance  float64
	Screenshots  []ScreenshotRecord
}

type ScreenshotRecord struct {
	ID          string
	Title       string
	ActivityAt  int64
	ConsumeTime int64
	Performance float64
}

// ========================================
// ENGINE OUTPUT
// ========================================

type View string

const (
	ViewProjects            View = "projects"
	ViewClients             View = "clients"
	ViewEmployees           View = "employees"
	ViewScreenshots         View = "screenshots"
	ViewEmployeeProjects    View = "employee_projects"
	ViewClientEmployees     View = "client_employees"
	ViewProjectEmployees    View = "project_employees"
	ViewEmployeeScreenshots View = "employee_screenshots"
	ViewDates               View = "dates"
	ViewDetails             View = "details"
	ViewTotal               View = "total"
)

// AllViews lists every view in output order
var AllViews = []View{
	ViewProjects, ViewClients, ViewEmployees, ViewScreenshots,
	ViewEmployeeProjects, ViewClientEmployees, ViewProjectEmployees, ViewEmployeeScreenshots,
	ViewDates, ViewDetails, ViewTotal,
}

func (v View) Valid() bool {
	for _, known := range AllViews {
		if v == known {
			return true
		}
	}
	return false
}

type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
	BucketYearly  Bucket = "yearly"
)

type Ref struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Group is one row of a view. Nested views carry their inner rows in Rows.
type Group struct {
	ID             *string          `json:"id"`
	Label          string           `json:"label"`
	Client         *Ref             `json:"client,omitempty"`
	Count          int              `json:"count"`
	Internal       int64            `json:"internal"`
	External       int64            `json:"external"`
	Total          int64            `json:"total"`
	AvgPerformance float64          `json:"avg_performance"`
	PayRate        *decimal.Decimal `json:"pay_rate,omitempty"`
	AvgPayRate     *decimal.Decimal `json:"avg_pay_rate,omitempty"`
	Rows           []Group          `json:"rows,omitempty"`
}

type DetailRow struct {
	ActivityID      string          `json:"activity_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	PayRate         decimal.Decimal `json:"pay_rate"`
	ClientName      string          `json:"client_name"`
	ProjectName     string          `json:"project_name"`
	Task            string          `json:"task"`
	StartTime       int64           `json:"start_time"`
	EndTime         int64           `json:"end_time"`
	ConsumeTime     int64           `json:"consume_time"`
	ActivityOn      time.Time       `json:"activity_on"`
	IsInternal      bool            `json:"is_internal"`
	Performance     float64         `json:"performance_data"`
	ScreenshotCount int             `json:"screenshot_count"`
}

// Summary holds the requested views; views that were not requested stay nil.
type Summary struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Bucket Bucket    `json:"bucket"`

	Projects            []Group     `json:"projects,omitempty"`
	Clients             []Group     `json:"clients,omitempty"`
	Employees           []Group     `json:"employees,omitempty"`
	Screenshots         []Group     `json:"screenshots,omitempty"`
	EmployeeProjects    []Group     `json:"employee_projects,omitempty"`
	ClientEmployees     []Group     `json:"client_employees,omitempty"`
	ProjectEmployees    []Group     `json:"project_employees,omitempty"`
	EmployeeScreenshots []Group     `json:"employee_screenshots,omitempty"`
	Dates               []Group     `json:"dates,omitempty"`
	Details             []DetailRow `json:"details,omitempty"`
	Total               *Group      `json:"total,omitempty"`
}

// ========================================
// REPORT DEFINITIONS
// ========================================

// Options is the saved aggregation request of a definition
type Options struct {
	ClientIDs   []string `json:"client_ids"`
	ProjectIDs  []string `json:"project_ids"`
	EmployeeIDs []string `json:"employee_ids"`
	DateOne     *string  `json:"date_one,omitempty"`
	DateTwo     *string  `json:"date_two,omitempty"`
	GroupBy     string   `json:"group_by,omitempty"`
	Views       []View   `json:"views,omitempty"`
}

type ScheduleKind string

const (
	ScheduleDaily   ScheduleKind = "Daily"
	ScheduleWeekly  ScheduleKind = "Weekly"
	ScheduleMonthly ScheduleKind = "Monthly"
)

type ScheduleType struct {
	Kind   ScheduleKind `json:"kind"`
	Anchor string       `json:"anchor,omitempty"` // weekday name or day of month
}

type Definition struct {
	ID            string
	OwnerID       string
	Name          string
	Options       Options
	Schedule      bool
	CronString    string
	ScheduleType  *ScheduleType
	ScheduledMail string
	Share         bool
	URL           string
	FileName      *string
	Transient     bool // created by a scheduled run, removed after delivery

	IncludeScreenshots   bool
	IncludeActivityLevel bool
	IncludePayRate       bool
	IncludeApps          bool

	LastRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ArtifactKey is where the saved summary JSON of a definition lives
func ArtifactKey(fileName string) string {
	return "saved-reports/" + fileName + ".json"
}
