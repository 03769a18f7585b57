package project

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetWeek  BudgetPeriod = "Week"
	BudgetMonth BudgetPeriod = "Month"
	BudgetTotal BudgetPeriod = "Total"
)

type Budget struct {
	TimePeriod BudgetPeriod
	Time       int64 // hours
	Money      decimal.Decimal
}

type Project struct {
	ID        string
	Name      string
	ClientID  *string
	LeaderID  *string
	CreatedBy *string
	Budget    Budget
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	MemberIDs []string
}

// HasMember reports whether employeeID is in the member list
func (p Project) HasMember(employeeID string) bool {
	for _, id := range p.MemberIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
