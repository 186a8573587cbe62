package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListUnpaidApproved returns approved, unpaid leave requests of the
	// employee whose start date falls within [start, end].
	ListUnpaidApproved(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
}
