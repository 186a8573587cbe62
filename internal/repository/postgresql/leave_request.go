package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListUnpaidApproved implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListUnpaidApproved(ctx context.Context, employeeID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lt.name, lr.start_date, lr.end_date, lr.days_requested,
			   lr.status, lt.is_paid, lr.created_at, lr.updated_at
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lt.id = lr.leave_type_id
		WHERE lr.employee_id = $1
			AND lr.status = $2
			AND lt.is_paid = FALSE
			AND lr.start_date BETWEEN $3::date AND $4::date
		ORDER BY lr.start_date, lr.id
	`

	rows, err := q.Query(ctx, query, employeeID, leave.LeaveRequestStatusApproved, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid leave for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var lr leave.LeaveRequest
		err := rows.Scan(
			&lr.ID,
			&lr.EmployeeID,
			&lr.LeaveTypeName,
			&lr.StartDate,
			&lr.EndDate,
			&lr.DaysRequested,
			&lr.Status,
			&lr.IsPaid,
			&lr.CreatedAt,
			&lr.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}
