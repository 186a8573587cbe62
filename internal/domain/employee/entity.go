package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string
	EmployeeCode    string
	FullName        string
	BaseSalary      decimal.Decimal
	SalaryType      SalaryType
	HourlyRate      *decimal.Decimal
	Status          EmploymentStatus
	CurrentPosition *PositionAssignment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PositionAssignment is the employee's current position, joined from the
// position history.
type PositionAssignment struct {
	PositionID   string
	PositionName string
	StartDate    time.Time
}

type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "monthly"
	SalaryTypeHourly  SalaryType = "hourly"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusInactive   EmploymentStatus = "inactive"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsPayable reports whether the employee takes part in a period ending on
// periodEnd: active, with a position that started on or before that day.
func (e Employee) IsPayable(periodEnd time.Time) bool {
	if e.Status != EmploymentStatusActive || e.CurrentPosition == nil {
		return false
	}
	return !e.CurrentPosition.StartDate.After(periodEnd)
}
