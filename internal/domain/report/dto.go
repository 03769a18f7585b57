package report

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

func (o *Options) validate(errs *validator.ValidationErrors) {
	if !validator.AllValidUUID(o.ClientIDs) {
		errs.Add("client_ids", "client_ids must contain valid ids")
	}
	if !validator.AllValidUUID(o.ProjectIDs) {
		errs.Add("project_ids", "project_ids must contain valid ids")
	}
	if !validator.AllValidUUID(o.EmployeeIDs) {
		errs.Add("employee_ids", "employee_ids must contain valid ids")
	}
	if o.DateOne != nil {
		if _, ok := validator.ParseFlexibleDate(*o.DateOne, time.UTC); !ok {
			errs.Add("date_one", "invalid date_one")
		}
	}
	if o.DateTwo != nil {
		if _, ok := validator.ParseFlexibleDate(*o.DateTwo, time.UTC); !ok {
			errs.Add("date_two", "invalid date_two")
		}
	}
	for _, v := range o.Views {
		if !v.Valid() {
			errs.Add("views", "unknown view "+string(v))
			break
		}
	}
}

// validateName checks a report name, which ends up in mail subjects and file names.
func validateName(errs *validator.ValidationErrors, name string) {
	if len(name) > 200 {
		errs.Add("name", "name must be at most 200 characters")
	} else if strings.ContainsAny(name, "\r\n") {
		errs.Add("name", "name must not contain line breaks")
	}
}

// ========================================
// GENERATE
// ========================================

type GenerateReportRequest struct {
	Options
}

func (r *GenerateReportRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Options.validate(&errs)
	return errs.Err()
}

// ========================================
// SAVE / SHARE
// ========================================

type IncludeFlags struct {
	Screenshots   bool `json:"include_ss"`
	ActivityLevel bool `json:"include_al"`
	PayRate       bool `json:"include_pr"`
	Apps          bool `json:"include_apps"`
}

type SaveReportRequest struct {
	Name    string  `json:"name"`
	Options Options `json:"options"`
	IncludeFlags
}

func (r *SaveReportRequest) Validate() error {
	var errs validator.ValidationErrors
	validateName(&errs, r.Name)
	r.Options.validate(&errs)
	return errs.Err()
}

// ========================================
// SCHEDULE
// ========================================

type ScheduleReportRequest struct {
	Name          string        `json:"name"`
	Options       Options       `json:"options"`
	CronString    *string       `json:"cron_string,omitempty"`
	ScheduleType  *ScheduleType `json:"schedule_type,omitempty"`
	Hour          *int          `json:"hour,omitempty"`
	ScheduledMail string        `json:"scheduled_mail"`
	IncludeFlags
}

func (r *ScheduleReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else {
		validateName(&errs, r.Name)
	}
	switch {
	case r.CronString != nil:
		if _, err := ParseCron(*r.CronString); err != nil {
			errs.Add("cron_string", err.Error())
		}
	case r.ScheduleType != nil:
		hour := 0
		if r.Hour != nil {
			hour = *r.Hour
		}
		if _, err := r.ScheduleType.CronString(hour); err != nil {
			errs.Add("schedule_type", err.Error())
		}
	default:
		errs.Add("cron_string", "cron_string or schedule_type is required")
	}
	if r.ScheduledMail != "" && !validator.IsValidEmail(r.ScheduledMail) {
		errs.Add("scheduled_mail", "invalid email format")
	}
	r.Options.validate(&errs)

	return errs.Err()
}

// ResolveCron returns the cron string the request describes. Call after Validate.
func (r *ScheduleReportRequest) ResolveCron() string {
	if r.CronString != nil {
		return *r.CronString
	}
	hour := 0
	if r.Hour != nil {
		hour = *r.Hour
	}
	s, _ := r.ScheduleType.CronString(hour)
	return s
}

// ========================================
// RESPONSES
// ========================================

type DefinitionResponse struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"owner_id"`
	Name          string        `json:"name"`
	Options       Options       `json:"options"`
	Schedule      bool          `json:"schedule"`
	CronString    string        `json:"cron_string,omitempty"`
	ScheduleType  *ScheduleType `json:"schedule_type,omitempty"`
	ScheduledMail string        `json:"scheduled_mail,omitempty"`
	Share         bool          `json:"share"`
	URL           string        `json:"url"`
	IncludeFlags
	LastRunAt *string `json:"last_run_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func ToDefinitionResponse(d Definition) DefinitionResponse {
	resp := DefinitionResponse{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Name:          d.Name,
		Options:       d.Options,
		Schedule:      d.Schedule,
		CronString:    d.CronString,
		ScheduleType:  d.ScheduleType,
		ScheduledMail: d.ScheduledMail,
		Share:         d.Share,
		URL:           d.URL,
		IncludeFlags: IncludeFlags{
			Screenshots:   d.IncludeScreenshots,
			ActivityLevel: d.IncludeActivityLevel,
			PayRate:       d.IncludePayRate,
			Apps:          d.IncludeApps,
		},
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
	if d.LastRunAt != nil {
		s := d.LastRunAt.Format(time.RFC3339)
		resp.LastRunAt = &s
	}
	return resp
}

// SavedReportDocument is what the report page fetches by url
type SavedReportDocument struct {
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	Options Options `json:"options"`
	IncludeFlags
	Summary Summary `json:"summary"`
}
