package employee

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
)

type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Role       user.Role
	PayRate    decimal.Decimal
	LastActive *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// DayBucket is one calendar date of an employee's tracked work.
type DayBucket struct {
	Date        string // DD/MM/YYYY
	ActivityIDs []string
	DailyTime   int64 // ms
}
