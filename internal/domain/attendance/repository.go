package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the read-only view of attendance used by payroll.
type AttendanceRepository interface {
	// ListPresent returns the employee's present records dated within
	// [start, end], both ends inclusive, ordered by date.
	ListPresent(ctx context.Context, employeeID string, start, end time.Time) ([]Attendance, error)
}
