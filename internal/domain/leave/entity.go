package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	LeaveTypeName string

	StartDate     time.Time
	EndDate       time.Time
	DaysRequested decimal.Decimal

	Status LeaveRequestStatus
	IsPaid bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUnpaidWithin reports whether the request is an approved unpaid leave
// starting inside [start, end]. A leave that starts before the period and
// spills into it is charged to the period it started in.
func (r LeaveRequest) IsUnpaidWithin(start, end time.Time) bool {
	if r.Status != LeaveRequestStatusApproved || r.IsPaid {
		return false
	}
	return !r.StartDate.Before(start) && !r.StartDate.After(end)
}
