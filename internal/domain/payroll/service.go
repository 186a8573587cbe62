package payroll

import "context"

type PayrollService interface {
	// CalculatePayroll (re)calculates one employee's payroll for a period.
	CalculatePayroll(ctx context.Context, employeeID, periodID string) (PayrollResponse, error)
	// ProcessPeriod calculates every payable employee of the period. Employee
	// failures are reported in the result, not returned.
	ProcessPeriod(ctx context.Context, periodID string) (ProcessResult, error)

	GetPeriod(ctx context.Context, periodID string) (PeriodResponse, error)
	ApprovePeriod(ctx context.Context, periodID string) (PeriodResponse, error)
	ClosePeriod(ctx context.Context, periodID string) (PeriodResponse, error)
	ListPeriodPayrolls(ctx context.Context, periodID string) ([]PayrollResponse, error)
	PeriodRegister(ctx context.Context, periodID string) ([]RegisterRow, error)

	GetPayroll(ctx context.Context, payrollID string) (PayrollResponse, error)
}
