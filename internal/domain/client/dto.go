package client

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type CreateClientRequest struct {
	Name      string  `json:"name"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *CreateClientRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must be at most 100 characters")
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs.Add("manager_id", "invalid manager_id format")
	}

	return errs.Err()
}

type UpdateClientRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *UpdateClientRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid client id")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		if name == "" {
			errs.Add("name", "name must not be empty")
		}
	}
	if r.ManagerID != nil && *r.ManagerID != "" && !validator.IsValidUUID(*r.ManagerID) {
		errs.Add("manager_id", "invalid manager_id format")
	}

	return errs.Err()
}

type ClientResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatedBy *string      `json:"created_by"`
	ManagerID *string      `json:"manager_id"`
	CreatedAt string       `json:"created_at"`
	Projects  []ProjectRef `json:"projects"`
}

func ToResponse(c Client, projects []ProjectRef) ClientResponse {
	if projects == nil {
		projects = []ProjectRef{}
	}
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedBy: c.CreatedBy,
		ManagerID: c.ManagerID,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		Projects:  projects,
	}
}

// EmployeeTime is one employee's share of a client's or project's tracked time
type EmployeeTime struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	PayRate    decimal.Decimal `json:"pay_rate"`
	Internal   int64           `json:"internal"`
	External   int64           `json:"external"`
	Total      int64           `json:"total"`
}

type TimeSummaryResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Internal  int64          `json:"internal"`
	External  int64          `json:"external"`
	Total     int64          `json:"total"`
	Employees []EmployeeTime `json:"employees"`
}

// TimeViews are the aggregation views a TimeSummaryResponse is built from
var TimeViews = []report.View{report.ViewEmployees, report.ViewTotal}

// NewTimeSummary builds the rollup of id from a summary computed with TimeViews
func NewTimeSummary(id, name string, s report.Summary) TimeSummaryResponse {
	resp := TimeSummaryResponse{
		ID:        id,
		Name:      name,
		Employees: make([]EmployeeTime, 0, len(s.Employees)),
	}
	if s.Total != nil {
		resp.Internal = s.Total.Internal
		resp.External = s.Total.External
		resp.Total = s.Total.Total
	}
	for _, g := range s.Employees {
		et := EmployeeTime{
			Name:     g.Label,
			Internal: g.Internal,
			External: g.External,
			Total:    g.Total,
		}
		if g.ID != nil {
			et.EmployeeID = *g.ID
		}
		if g.PayRate != nil {
			et.PayRate = *g.PayRate
		}
		resp.Employees = append(resp.Employees, et)
	}
	return resp
}
