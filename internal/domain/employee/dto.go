package employee

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type UpdateEmployeeRequest struct {
	ID        string           `json:"-"`
	FirstName *string          `json:"first_name,omitempty"`
	LastName  *string          `json:"last_name,omitempty"`
	PayRate   *decimal.Decimal `json:"pay_rate,omitempty"`
	Role      *string          `json:"role,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name must not be empty")
	}
	if r.PayRate != nil && r.PayRate.IsNegative() {
		errs.Add("pay_rate", "pay_rate must not be negative")
	}
	if r.Role != nil && !user.Role(*r.Role).Valid() {
		errs.Add("role", "invalid role")
	}

	return errs.Err()
}

type UpdateLastActiveRequest struct {
	LastActive *int64 `json:"last_active,omitempty"` // ms epoch, defaults to now
}

type EmployeeResponse struct {
	ID         string          `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	PayRate    decimal.Decimal `json:"pay_rate"`
	LastActive *string         `json:"last_active,omitempty"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`

	Days []DayBucketResponse `json:"days,omitempty"`
}

type DayBucketResponse struct {
	Date        string   `json:"date"`
	ActivityIDs []string `json:"activity_ids"`
	DailyTime   int64    `json:"daily_time"`
}

func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Role:      string(e.Role),
		PayRate:   e.PayRate,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
	if e.LastActive != nil {
		s := e.LastActive.Format(time.RFC3339)
		resp.LastActive = &s
	}
	return resp
}

func ToDayResponses(days []DayBucket) []DayBucketResponse {
	out := make([]DayBucketResponse, 0, len(days))
	for _, d := range days {
		ids := d.ActivityIDs
		if ids == nil {
			ids = []string{}
		}
		out = append(out, DayBucketResponse{Date: d.Date, ActivityIDs: ids, DailyTime: d.DailyTime})
	}
	return out
}
