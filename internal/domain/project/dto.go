package project

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type BudgetRequest struct {
	TimePeriod *string          `json:"time_period,omitempty"`
	Time       *int64           `json:"time,omitempty"`
	Money      *decimal.Decimal `json:"money,omitempty"`
}

func (b *BudgetRequest) validate(errs *validator.ValidationErrors) {
	if b == nil {
		return
	}
	if b.TimePeriod != nil && !validator.IsInSlice(*b.TimePeriod, []string{string(BudgetWeek), string(BudgetMonth), string(BudgetTotal)}) {
		errs.Add("budget.time_period", "time_period must be Week, Month or Total")
	}
	if b.Time != nil && *b.Time < 0 {
		errs.Add("budget.time", "time must not be negative")
	}
	if b.Money != nil && b.Money.IsNegative() {
		errs.Add("budget.money", "money must not be negative")
	}
}

func (b *BudgetRequest) apply(budget *Budget) {
	if b == nil {
		return
	}
	if b.TimePeriod != nil {
		budget.TimePeriod = BudgetPeriod(*b.TimePeriod)
	}
	if b.Time != nil {
		budget.Time = *b.Time
	}
	if b.Money != nil {
		budget.Money = *b.Money
	}
}

// ApplyBudget merges the request onto budget
func (b *BudgetRequest) ApplyBudget(budget Budget) Budget {
	b.apply(&budget)
	return budget
}

type CreateProjectRequest struct {
	Name     string         `json:"name"`
	ClientID *string        `json:"client_id,omitempty"`
	LeaderID *string        `json:"project_leader,omitempty"`
	Budget   *BudgetRequest `json:"budget,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	}
	if r.ClientID != nil && !validator.IsValidUUID(*r.ClientID) {
		errs.Add("client_id", "invalid client_id format")
	}
	if r.LeaderID != nil && !validator.IsValidUUID(*r.LeaderID) {
		errs.Add("project_leader", "invalid project_leader format")
	}
	r.Budget.validate(&errs)

	return errs.Err()
}

type UpdateProjectRequest struct {
	ID       string         `json:"-"`
	Name     *string        `json:"name,omitempty"`
	ClientID *string        `json:"client_id,omitempty"` // "" detaches the client
	LeaderID *string        `json:"project_leader,omitempty"`
	Budget   *BudgetRequest `json:"budget,omitempty"`
}

func (r *UpdateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid project id")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		if name == "" {
			errs.Add("name", "name must not be empty")
		}
	}
	if r.ClientID != nil && *r.ClientID != "" && !validator.IsValidUUID(*r.ClientID) {
		errs.Add("client_id", "invalid client_id format")
	}
	if r.LeaderID != nil && *r.LeaderID != "" && !validator.IsValidUUID(*r.LeaderID) {
		errs.Add("project_leader", "invalid project_leader format")
	}
	r.Budget.validate(&errs)

	return errs.Err()
}

type MemberRequest struct {
	ProjectID  string `json:"-"`
	EmployeeID string `json:"employee_id"`
}

func (r *MemberRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "invalid project id")
	}
	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "invalid employee_id format")
	}

	return errs.Err()
}

type BudgetResponse struct {
	TimePeriod string          `json:"time_period"`
	Time       int64           `json:"time"`
	Money      decimal.Decimal `json:"money"`
}

type ProjectResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ClientID  *string        `json:"client_id"`
	LeaderID  *string        `json:"project_leader"`
	CreatedBy *string        `json:"created_by"`
	Members   []string       `json:"employees"`
	Budget    BudgetResponse `json:"budget"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func ToResponse(p Project) ProjectResponse {
	members := p.MemberIDs
	if members == nil {
		members = []string{}
	}
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		ClientID:  p.ClientID,
		LeaderID:  p.LeaderID,
		CreatedBy: p.CreatedBy,
		Members:   members,
		Budget: BudgetResponse{
			TimePeriod: string(p.Budget.TimePeriod),
			Time:       p.Budget.Time,
			Money:      p.Budget.Money,
		},
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
