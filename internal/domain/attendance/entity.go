package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	TotalHours *decimal.Decimal
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

// Hours returns the recorded hours, zero when none were captured.
func (a Attendance) Hours() decimal.Decimal {
	if a.TotalHours == nil {
		return decimal.Zero
	}
	return *a.TotalHours
}
