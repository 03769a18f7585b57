package activity

import (
	"io"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type CreateActivityRequest struct {
	EmployeeID  *string `json:"employee_id,omitempty"` // defaults to the caller
	ClientID    *string `json:"client_id,omitempty"`
	ProjectID   *string `json:"project_id,omitempty"`
	Task        string  `json:"task"`
	StartTime   int64   `json:"start_time"`
	EndTime     int64   `json:"end_time"`
	ConsumeTime *int64  `json:"consume_time,omitempty"` // defaults to end - start
	Performance float64 `json:"performance_data"`
	IsInternal  bool    `json:"is_internal"`
	ActivityOn  *string `json:"activity_on,omitempty"` // defaults to now
}

func (r *CreateActivityRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartTime < 0 {
		errs.Add("start_time", "start_time must not be negative")
	}
	if r.EndTime < r.StartTime {
		errs.Add("end_time", "end_time must not be before start_time")
	}
	if r.ConsumeTime != nil && *r.ConsumeTime < 0 {
		errs.Add("consume_time", "consume_time must not be negative")
	}
	if r.EmployeeID != nil && !validator.IsValidUUID(*r.EmployeeID) {
		errs.Add("employee_id", "invalid employee_id format")
	}
	if r.ClientID != nil && !validator.IsValidUUID(*r.ClientID) {
		errs.Add("client_id", "invalid client_id format")
	}
	if r.ProjectID != nil && !validator.IsValidUUID(*r.ProjectID) {
		errs.Add("project_id", "invalid project_id format")
	}
	if r.ActivityOn != nil {
		if _, ok := validator.ParseFlexibleDate(*r.ActivityOn, time.UTC); !ok {
			errs.Add("activity_on", "invalid activity_on, expected RFC3339, YYYY-MM-DD or DD/MM/YYYY")
		}
	}

	return errs.Err()
}

type GetActivitiesRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"` // defaults to the caller
	From       *string `json:"from,omitempty"`
	To         *string `json:"to,omitempty"`
}

func (r *GetActivitiesRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil && !validator.IsValidUUID(*r.EmployeeID) {
		errs.Add("employee_id", "invalid employee_id format")
	}
	if r.From != nil {
		if _, ok := validator.ParseFlexibleDate(*r.From, time.UTC); !ok {
			errs.Add("from", "invalid date")
		}
	}
	if r.To != nil {
		if _, ok := validator.ParseFlexibleDate(*r.To, time.UTC); !ok {
			errs.Add("to", "invalid date")
		}
	}

	return errs.Err()
}

type UpdateActivityRequest struct {
	ID          string   `json:"-"`
	Task        *string  `json:"task,omitempty"`
	ClientID    *string  `json:"client_id,omitempty"`
	ProjectID   *string  `json:"project_id,omitempty"`
	IsInternal  *bool    `json:"is_internal,omitempty"`
	IsAccepted  *bool    `json:"is_accepted,omitempty"`
	Performance *float64 `json:"performance_data,omitempty"`
	StartTime   *int64   `json:"start_time,omitempty"`
	EndTime     *int64   `json:"end_time,omitempty"`
}

func (r *UpdateActivityRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid activity id")
	}
	if r.ClientID != nil && *r.ClientID != "" && !validator.IsValidUUID(*r.ClientID) {
		errs.Add("client_id", "invalid client_id format")
	}
	if r.ProjectID != nil && *r.ProjectID != "" && !validator.IsValidUUID(*r.ProjectID) {
		errs.Add("project_id", "invalid project_id format")
	}
	if r.StartTime != nil && r.EndTime != nil && *r.EndTime < *r.StartTime {
		errs.Add("end_time", "end_time must not be before start_time")
	}

	return errs.Err()
}

type SplitActivityRequest struct {
	ActivityID string `json:"activity_id"`
	SplitTime  int64  `json:"split_time"` // ms epoch
}

func (r *SplitActivityRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ActivityID) {
		errs.Add("activity_id", "activity_id is required")
	} else if !validator.IsValidUUID(r.ActivityID) {
		errs.Add("activity_id", "invalid activity_id format")
	}

	return errs.Err()
}

type SplitActivityResponse struct {
	First  ActivityResponse `json:"first"`
	Second ActivityResponse `json:"second"`
}

type CreateScreenshotRequest struct {
	ActivityID  string  `json:"activity_id"`
	Task        string  `json:"task"`
	Title       string  `json:"title"`
	ActivityAt  int64   `json:"activity_at"`
	TakenAt     *string `json:"taken_at,omitempty"`
	ConsumeTime int64   `json:"consume_time"`
	Performance float64 `json:"performance_data"`

	// Optional image upload
	Image            io.Reader `json:"-"`
	ImageFilename    string    `json:"-"`
	ImageContentType string    `json:"-"`
}

func (r *CreateScreenshotRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ActivityID) {
		errs.Add("activity_id", "activity_id is required")
	} else if !validator.IsValidUUID(r.ActivityID) {
		errs.Add("activity_id", "invalid activity_id format")
	}
	if r.ConsumeTime < 0 {
		errs.Add("consume_time", "consume_time must not be negative")
	}
	if r.TakenAt != nil {
		if _, ok := validator.IsValidDateTime(*r.TakenAt); !ok {
			errs.Add("taken_at", "invalid taken_at")
		}
	}
	if r.Image != nil && r.ImageContentType != "" &&
		!validator.IsInSlice(r.ImageContentType, []string{"image/png", "image/jpeg", "image/webp"}) {
		errs.Add("image", "image must be png, jpeg or webp")
	}

	return errs.Err()
}

type ScreenshotRef struct {
	ScreenshotID string `json:"screenshot_id"`
	ActivityID   string `json:"activity_id"`
}

type DeleteScreenshotsRequest struct {
	Items []ScreenshotRef `json:"items"`
}

func (r *DeleteScreenshotsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Items) == 0 {
		errs.Add("items", "at least one screenshot is required")
	}
	for _, it := range r.Items {
		if !validator.IsValidUUID(it.ScreenshotID) || !validator.IsValidUUID(it.ActivityID) {
			errs.Add("items", "screenshot_id and activity_id must be valid ids")
			break
		}
	}

	return errs.Err()
}

type ActivityResponse struct {
	ID          string               `json:"id"`
	EmployeeID  string               `json:"employee_id"`
	ClientID    *string              `json:"client_id"`
	ProjectID   *string              `json:"project_id"`
	Task        string               `json:"task"`
	StartTime   int64                `json:"start_time"`
	EndTime     int64                `json:"end_time"`
	ConsumeTime int64                `json:"consume_time"`
	ActivityOn  string               `json:"activity_on"`
	IsInternal  bool                 `json:"is_internal"`
	Performance float64              `json:"performance_data"`
	IsAccepted  bool                 `json:"is_accepted"`
	Screenshots []ScreenshotResponse `json:"screenshots"`
}

type ScreenshotResponse struct {
	ID          string  `json:"id"`
	ActivityID  string  `json:"activity_id"`
	EmployeeID  string  `json:"employee_id"`
	ClientID    *string `json:"client_id"`
	ProjectID   *string `json:"project_id"`
	ActivityAt  int64   `json:"activity_at"`
	TakenAt     *string `json:"taken_at,omitempty"`
	ConsumeTime int64   `json:"consume_time"`
	Performance float64 `json:"performance_data"`
	Title       string  `json:"title"`
	Task        string  `json:"task"`
	Image       *string `json:"image,omitempty"`
}

func ToActivityResponse(a Activity) ActivityResponse {
	shots := make([]ScreenshotResponse, 0, len(a.Screenshots))
	for _, s := range a.Screenshots {
		shots = append(shots, ToScreenshotResponse(s))
	}
	return ActivityResponse{
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		ClientID:    a.ClientID,
		ProjectID:   a.ProjectID,
		Task:        a.Task,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		ConsumeTime: a.ConsumeTime,
		ActivityOn:  a.ActivityOn.Format(time.RFC3339),
		IsInternal:  a.IsInternal,
		Performance: a.Performance,
		IsAccepted:  a.IsAccepted,
		Screenshots: shots,
	}
}

func ToScreenshotResponse(s Screenshot) ScreenshotResponse {
	resp := ScreenshotResponse{
		ID:          s.ID,
		ActivityID:  s.ActivityID,
		EmployeeID:  s.EmployeeID,
		ClientID:    s.ClientID,
		ProjectID:   s.ProjectID,
		ActivityAt:  s.ActivityAt,
		ConsumeTime: s.ConsumeTime,
		Performance: s.Performance,
		Title:       s.Title,
		Task:        s.Task,
		Image:       s.Image,
	}
	if s.TakenAt != nil {
		t := s.TakenAt.Format(time.RFC3339)
		resp.TakenAt = &t
	}
	return resp
}
