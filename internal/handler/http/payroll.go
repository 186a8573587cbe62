package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
)

type PayrollHandler interface {
	// Calculation
	ProcessPeriod(w http.ResponseWriter, r *http.Request)
	CalculatePayroll(w http.ResponseWriter, r *http.Request)

	// Periods
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriodPayrolls(w http.ResponseWriter, r *http.Request)
	ExportRegister(w http.ResponseWriter, r *http.Request)
	ApprovePeriod(w http.ResponseWriter, r *http.Request)
	ClosePeriod(w http.ResponseWriter, r *http.Request)

	// Payrolls
	GetPayroll(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// uuidParam reads a path parameter and writes a 400 when it is not a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := chi.URLParam(r, name)
	if validator.IsEmpty(value) {
		response.BadRequest(w, label+" is required", nil)
		return "", false
	}
	if !validator.IsValidUUID(value) {
		response.BadRequest(w, label+" must be a valid UUID", map[string]string{name: "invalid format"})
		return "", false
	}
	return value, true
}

// ========== CALCULATION ==========

func (h *payrollHandlerImpl) ProcessPeriod(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	result, err := h.payrollService.ProcessPeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := fmt.Sprintf("Processed %d payrolls with %d errors", result.Processed, result.Errors)
	response.SuccessWithMessage(w, message, result)
}

func (h *payrollHandlerImpl) CalculatePayroll(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}
	employeeID, ok := uuidParam(w, r, "employeeID", "Employee ID")
	if !ok {
		return
	}

	result, err := h.payrollService.CalculatePayroll(r.Context(), employeeID, periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll calculated", result)
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	result, err := h.payrollService.GetPeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriodPayrolls(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	result, err := h.payrollService.ListPeriodPayrolls(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result == nil {
		result = []payroll.PayrollResponse{}
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportRegister(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	rows, err := h.payrollService.PeriodRegister(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	body, err := gocsv.MarshalString(&rows)
	if err != nil {
		slog.Error("Failed to encode payroll register", "period_id", periodID, "error", err)
		response.InternalServerError(w, "Failed to encode payroll register")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payroll-register-%s.csv\"", periodID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *payrollHandlerImpl) ApprovePeriod(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	result, err := h.payrollService.ApprovePeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period approved", result)
}

func (h *payrollHandlerImpl) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	periodID, ok := uuidParam(w, r, "id", "Period ID")
	if !ok {
		return
	}

	result, err := h.payrollService.ClosePeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period closed", result)
}

// ========== PAYROLLS ==========

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	payrollID, ok := uuidParam(w, r, "id", "Payroll ID")
	if !ok {
		return
	}

	result, err := h.payrollService.GetPayroll(r.Context(), payrollID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
