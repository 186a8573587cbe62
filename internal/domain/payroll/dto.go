package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type PeriodResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Status          string          `json:"status"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalTaxes      decimal.Decimal `json:"total_taxes"`
	TotalNet        decimal.Decimal `json:"total_net"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:              p.ID,
		Name:            p.Name,
		StartDate:       p.StartDate.Format("2006-01-02"),
		EndDate:         p.EndDate.Format("2006-01-02"),
		Status:          string(p.Status),
		TotalEmployees:  p.TotalEmployees,
		TotalGross:      p.TotalGross,
		TotalDeductions: p.TotalDeductions,
		TotalTaxes:      p.TotalTaxes,
		TotalNet:        p.TotalNet,
		ProcessedAt:     p.ProcessedAt,
	}
}

// ========== PAYROLL DTOs ==========

type PayrollDetailResponse struct {
	ConceptCode string          `json:"concept_code"`
	ConceptName string          `json:"concept_name"`
	ConceptType string          `json:"concept_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type PayrollResponse struct {
	ID              string                  `json:"id"`
	EmployeeID      string                  `json:"employee_id"`
	EmployeeName    *string                 `json:"employee_name,omitempty"`
	EmployeeCode    *string                 `json:"employee_code,omitempty"`
	PeriodID        string                  `json:"period_id"`
	BaseSalary      decimal.Decimal         `json:"base_salary"`
	RegularHours    decimal.Decimal         `json:"regular_hours"`
	OvertimeHours   decimal.Decimal         `json:"overtime_hours"`
	WorkedDays      int                     `json:"worked_days"`
	GrossSalary     decimal.Decimal         `json:"gross_salary"`
	TotalEarnings   decimal.Decimal         `json:"total_earnings"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	TotalTaxes      decimal.Decimal         `json:"total_taxes"`
	NetSalary       decimal.Decimal         `json:"net_salary"`
	Status          string                  `json:"status"`
	CalculatedAt    *time.Time              `json:"calculated_at,omitempty"`
	Details         []PayrollDetailResponse `json:"details,omitempty"`
}

func NewPayrollResponse(p Payroll, details []PayrollDetail) PayrollResponse {
	resp := PayrollResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		EmployeeCode:    p.EmployeeCode,
		PeriodID:        p.PeriodID,
		BaseSalary:      p.BaseSalary,
		RegularHours:    p.RegularHours,
		OvertimeHours:   p.OvertimeHours,
		WorkedDays:      p.WorkedDays,
		GrossSalary:     p.GrossSalary,
		TotalEarnings:   p.TotalEarnings,
		TotalDeductions: p.TotalDeductions,
		TotalTaxes:      p.TotalTaxes,
		NetSalary:       p.NetSalary,
		Status:          string(p.Status),
		CalculatedAt:    p.CalculatedAt,
	}
	for _, d := range details {
		resp.Details = append(resp.Details, PayrollDetailResponse{
			ConceptCode: d.ConceptCode,
			ConceptName: d.ConceptName,
			ConceptType: string(d.ConceptType),
			Quantity:    d.Quantity,
			Rate:        d.Rate,
			Amount:      d.Amount,
		})
	}
	return resp
}

// ========== PROCESSING DTOs ==========

// ProcessStatus enum
type ProcessStatus string

const (
	ProcessStatusSuccess ProcessStatus = "success"
	ProcessStatusError   ProcessStatus = "error"
)

// ProcessDetail - Outcome of one employee within a period run
type ProcessDetail struct {
	EmployeeID string           `json:"employee_id"`
	PayrollID  string           `json:"payroll_id,omitempty"`
	NetSalary  *decimal.Decimal `json:"net_salary,omitempty"`
	Status     ProcessStatus    `json:"status"`
	Message    string           `json:"message,omitempty"`
}

// ProcessResult - Outcome of a period run
type ProcessResult struct {
	PeriodID  string          `json:"period_id"`
	Processed int             `json:"processed"`
	Errors    int             `json:"errors"`
	Details   []ProcessDetail `json:"details"`
	Totals    PeriodResponse  `json:"totals"`
}

// ========== REGISTER DTOs ==========

// RegisterRow - One line of the period payroll register export
type RegisterRow struct {
	EmployeeCode    string `csv:"employee_code"`
	EmployeeName    string `csv:"employee_name"`
	WorkedDays      int    `csv:"worked_days"`
	RegularHours    string `csv:"regular_hours"`
	OvertimeHours   string `csv:"overtime_hours"`
	BaseSalary      string `csv:"base_salary"`
	TotalEarnings   string `csv:"total_earnings"`
	GrossSalary     string `csv:"gross_salary"`
	TotalDeductions string `csv:"total_deductions"`
	TotalTaxes      string `csv:"total_taxes"`
	NetSalary       string `csv:"net_salary"`
	Status          string `csv:"status"`
}

func NewRegisterRow(p Payroll) RegisterRow {
	row := RegisterRow{
		WorkedDays:      p.WorkedDays,
		RegularHours:    p.RegularHours.StringFixed(2),
		OvertimeHours:   p.OvertimeHours.StringFixed(2),
		BaseSalary:      p.BaseSalary.StringFixed(2),
		TotalEarnings:   p.TotalEarnings.StringFixed(2),
		GrossSalary:     p.GrossSalary.StringFixed(2),
		TotalDeductions: p.TotalDeductions.StringFixed(2),
		TotalTaxes:      p.TotalTaxes.StringFixed(2),
		NetSalary:       p.NetSalary.StringFixed(2),
		Status:          string(p.Status),
	}
	if p.EmployeeCode != nil {
		row.EmployeeCode = *p.EmployeeCode
	}
	if p.EmployeeName != nil {
		row.EmployeeName = *p.EmployeeName
	}
	return row
}
