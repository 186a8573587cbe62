package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// HoursSummary - Worked time of one employee over a period
type HoursSummary struct {
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	TotalDays     int
	WorkedDays    int
}

// AttendanceAggregator turns raw attendance into regular and overtime hours.
type AttendanceAggregator struct {
	attendanceRepo attendance.AttendanceRepository
	standardHours  decimal.Decimal
}

func NewAttendanceAggregator(attendanceRepo attendance.AttendanceRepository, standardHours decimal.Decimal) *AttendanceAggregator {
	return &AttendanceAggregator{
		attendanceRepo: attendanceRepo,
		standardHours:  standardHours,
	}
}

func (a *AttendanceAggregator) Aggregate(ctx context.Context, employeeID string, start, end time.Time) (HoursSummary, error) {
	records, err := a.attendanceRepo.ListPresent(ctx, employeeID, start, end)
	if err != nil {
		return HoursSummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	return SplitHours(records, a.standardHours), nil
}

// SplitHours caps each present day at standard hours and books the excess
// as overtime. Records that are not present are ignored.
func SplitHours(records []attendance.Attendance, standard decimal.Decimal) HoursSummary {
	summary := HoursSummary{}
	for _, record := range records {
		if record.Status != attendance.StatusPresent {
			continue
		}
		daily := record.Hours()
		if daily.IsNegative() {
			daily = decimal.Zero
		}
		if daily.LessThanOrEqual(standard) {
			summary.RegularHours = summary.RegularHours.Add(daily)
		} else {
			summary.RegularHours = summary.RegularHours.Add(standard)
			summary.OvertimeHours = summary.OvertimeHours.Add(daily.Sub(standard))
		}
		summary.TotalDays++
	}
	summary.WorkedDays = summary.TotalDays
	return summary
}
