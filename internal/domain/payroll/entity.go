package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusOpen       PeriodStatus = "open"
	PeriodStatusCalculated PeriodStatus = "calculated"
	PeriodStatusApproved   PeriodStatus = "approved"
	PeriodStatusClosed     PeriodStatus = "closed"
)

// AcceptsCalculation reports whether payrolls of the period may still be
// (re)calculated.
func (s PeriodStatus) AcceptsCalculation() bool {
	return s == PeriodStatusOpen || s == PeriodStatusCalculated
}

// CanTransitionTo enforces open -> calculated -> approved -> closed.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	switch s {
	case PeriodStatusOpen:
		return next == PeriodStatusCalculated
	case PeriodStatusCalculated:
		return next == PeriodStatusCalculated || next == PeriodStatusApproved
	case PeriodStatusApproved:
		return next == PeriodStatusClosed
	}
	return false
}

// Period - A payroll period with aggregated totals
type Period struct {
	ID              string
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	Status          PeriodStatus
	TotalEmployees  int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalTaxes      decimal.Decimal
	TotalNet        decimal.Decimal
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PeriodTotals - Aggregate of all non-cancelled payrolls of a period
type PeriodTotals struct {
	TotalEmployees  int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalTaxes      decimal.Decimal
	TotalNet        decimal.Decimal
}

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusCalculated PayrollStatus = "calculated"
	PayrollStatusApproved   PayrollStatus = "approved"
	PayrollStatusPaid       PayrollStatus = "paid"
	PayrollStatusCancelled  PayrollStatus = "cancelled"
)

// IsLocked reports whether the payroll can no longer be recalculated.
func (s PayrollStatus) IsLocked() bool {
	return s == PayrollStatusApproved || s == PayrollStatusPaid || s == PayrollStatusCancelled
}

// Payroll - One employee's result for one period, unique per (employee, period)
type Payroll struct {
	ID              string
	EmployeeID      string
	PeriodID        string
	BaseSalary      decimal.Decimal
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	WorkedDays      int
	GrossSalary     decimal.Decimal
	TotalEarnings   decimal.Decimal // everything above base pay
	TotalDeductions decimal.Decimal
	TotalTaxes      decimal.Decimal
	NetSalary       decimal.Decimal
	Status          PayrollStatus
	CalculatedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// ConceptType enum
type ConceptType string

const (
	ConceptTypeEarning   ConceptType = "earning"
	ConceptTypeDeduction ConceptType = "deduction"
	ConceptTypeTax       ConceptType = "tax"
)

// ConceptCode identifies a catalog concept.
type ConceptCode string

const (
	ConceptBaseSalary         ConceptCode = "SALARIO_BASE"
	ConceptOvertime           ConceptCode = "HORAS_EXTRA"
	ConceptTransportAllowance ConceptCode = "AUXILIO_TRANSPORTE"
	ConceptHealth             ConceptCode = "SALUD_EMP"
	ConceptPension            ConceptCode = "PENSION_EMP"
	ConceptUnpaidLeave        ConceptCode = "UNPAID_LEAVE"
	ConceptIncomeTax          ConceptCode = "RETENCION_FUENTE"
)

// StandardConcepts must all be present in the catalog before any payroll is
// calculated.
var StandardConcepts = []ConceptCode{
	ConceptBaseSalary,
	ConceptOvertime,
	ConceptTransportAllowance,
	ConceptHealth,
	ConceptPension,
	ConceptUnpaidLeave,
	ConceptIncomeTax,
}

// Concept - Catalog entry a payroll detail line refers to
type Concept struct {
	ID   string
	Code ConceptCode // empty for ad-hoc benefit concepts
	Name string
	Type ConceptType
}

// BenefitStatus enum
type BenefitStatus string

const (
	BenefitStatusActive   BenefitStatus = "active"
	BenefitStatusInactive BenefitStatus = "inactive"
)

// Benefit - Recurring earning, deduction or tax assigned to an employee.
// Exactly one of Amount and Percentage is set.
type Benefit struct {
	ID         string
	EmployeeID string
	Concept    Concept
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
	Status     BenefitStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PayrollDetail - Persisted line of a payroll
type PayrollDetail struct {
	ID          string
	PayrollID   string
	ConceptID   string
	ConceptCode string
	ConceptName string
	ConceptType ConceptType
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// Line is a calculated, not yet persisted, payroll detail.
type Line struct {
	ConceptID string
	Code      string
	Name      string
	Type      ConceptType
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal
}

// Breakdown is an ordered list of lines and their sum.
type Breakdown struct {
	Lines []Line
	Total decimal.Decimal
}

// Add appends the line when its amount is positive.
func (b *Breakdown) Add(line Line) {
	if !line.Amount.IsPositive() {
		return
	}
	b.Lines = append(b.Lines, line)
	b.Total = b.Total.Add(line.Amount)
}

// Merge appends every line of other.
func (b *Breakdown) Merge(other Breakdown) {
	for _, line := range other.Lines {
		b.Add(line)
	}
}

// ToDetails binds the lines to a payroll for persistence.
func (b Breakdown) ToDetails(payrollID string) []PayrollDetail {
	details := make([]PayrollDetail, 0, len(b.Lines))
	for _, line := range b.Lines {
		details = append(details, PayrollDetail{
			PayrollID:   payrollID,
			ConceptID:   line.ConceptID,
			ConceptCode: line.Code,
			ConceptName: line.Name,
			ConceptType: line.Type,
			Quantity:    line.Quantity,
			Rate:        line.Rate,
			Amount:      line.Amount,
		})
	}
	return details
}
