package activity

import "time"

const DefaultScreenshotTitle = "No title"

type Activity struct {
	ID          string
	EmployeeID  string
	ClientID    *string
	ProjectID   *string
	Task        string
	StartTime   int64 // ms epoch
	EndTime     int64 // ms epoch
	ConsumeTime int64 // ms
	ActivityOn  time.Time
	IsInternal  bool
	Performance float64
	IsAccepted  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join, ordered by capture time
	Screenshots []Screenshot
}

// Span is the length of the tracked interval in ms.
func (a Activity) Span() int64 {
	return a.EndTime - a.StartTime
}

type Screenshot struct {
	ID          string
	EmployeeID  string
	ClientID    *string
	ProjectID   *string
	ActivityID  string
	ActivityAt  int64 // capture time, ms epoch
	TakenAt     *time.Time
	ConsumeTime int64
	Performance float64
	Title       string
	Task        string
	Image       *string // object key in the artifact store
	CreatedAt   time.Time
}
