package payroll

import "errors"

var (
	ErrInvalidEmployeeData     = errors.New("invalid employee data")
	ErrConceptNotFound         = errors.New("payroll concept not found")
	ErrPeriodNotFound          = errors.New("payroll period not found")
	ErrPeriodLocked            = errors.New("payroll period is approved or closed")
	ErrPeriodBusy              = errors.New("payroll period is being processed")
	ErrPayrollNotFound         = errors.New("payroll not found")
	ErrPayrollLocked           = errors.New("payroll is approved, paid or cancelled, cannot recalculate")
	ErrInvalidStatusTransition = errors.New("invalid payroll period status transition")
	ErrInvalidConfig           = errors.New("invalid payroll configuration")
)
