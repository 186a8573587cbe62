package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// State conflicts
	case errors.Is(err, payroll.ErrPeriodLocked),
		errors.Is(err, payroll.ErrPeriodBusy),
		errors.Is(err, payroll.ErrPayrollLocked),
		errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, err.Error())

	// Unusable input data
	case errors.Is(err, payroll.ErrInvalidEmployeeData),
		errors.Is(err, employee.ErrEmployeeNotPayable):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
