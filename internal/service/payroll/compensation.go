package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// money rounds a currency amount to cents.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func rate(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// ValidateEmployee rejects employees whose salary data cannot be paid.
func ValidateEmployee(emp employee.Employee) error {
	if !emp.BaseSalary.IsPositive() {
		return fmt.Errorf("%w: base salary of employee %s must be positive", payroll.ErrInvalidEmployeeData, emp.ID)
	}
	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
	case employee.SalaryTypeHourly:
		if emp.HourlyRate != nil && !emp.HourlyRate.IsPositive() {
			return fmt.Errorf("%w: hourly rate of employee %s must be positive", payroll.ErrInvalidEmployeeData, emp.ID)
		}
	default:
		return fmt.Errorf("%w: %v", payroll.ErrInvalidEmployeeData, employee.ErrInvalidSalaryType)
	}
	return nil
}

// CompensationCalculator computes base pay, overtime pay and the transport allowance.
type CompensationCalculator struct {
	cfg payroll.Config
}

func NewCompensationCalculator(cfg payroll.Config) *CompensationCalculator {
	return &CompensationCalculator{cfg: cfg}
}

// BasePay returns the base salary line. Hourly employees are paid for their
// regular hours; monthly employees are pro-rated when they worked fewer days
// than the standard.
func (c *CompensationCalculator) BasePay(emp employee.Employee, hours HoursSummary, catalog payroll.Catalog) payroll.Line {
	if emp.SalaryType == employee.SalaryTypeHourly {
		hourly := emp.BaseSalary.Div(c.cfg.HourlyDivisor)
		amount := emp.BaseSalary.Mul(hours.RegularHours).Div(c.cfg.HourlyDivisor)
		if emp.HourlyRate != nil {
			hourly = *emp.HourlyRate
			amount = hourly.Mul(hours.RegularHours)
		}
		return catalog.Line(payroll.ConceptBaseSalary, hours.RegularHours, rate(hourly), money(amount))
	}

	expected := decimal.NewFromInt(int64(c.cfg.StandardWorkingDays))
	if hours.WorkedDays < c.cfg.StandardWorkingDays {
		worked := decimal.NewFromInt(int64(hours.WorkedDays))
		amount := emp.BaseSalary.Mul(worked).Div(expected)
		return catalog.Line(payroll.ConceptBaseSalary, worked, rate(emp.BaseSalary.Div(expected)), money(amount))
	}
	return catalog.Line(payroll.ConceptBaseSalary, one, emp.BaseSalary, money(emp.BaseSalary))
}

// OvertimePay is overtime hours at base salary / divisor, times the multiplier.
func (c *CompensationCalculator) OvertimePay(emp employee.Employee, overtimeHours decimal.Decimal, catalog payroll.Catalog) payroll.Line {
	hourly := emp.BaseSalary.Mul(c.cfg.OvertimeMultiplier).Div(c.cfg.OvertimeDivisor)
	amount := overtimeHours.Mul(emp.BaseSalary).Mul(c.cfg.OvertimeMultiplier).Div(c.cfg.OvertimeDivisor)
	return catalog.Line(payroll.ConceptOvertime, overtimeHours, rate(hourly), money(amount))
}

// QualifiesForTransport reports whether the employee earns at most twice the minimum wage.
func (c *CompensationCalculator) QualifiesForTransport(emp employee.Employee) bool {
	return emp.BaseSalary.LessThanOrEqual(c.cfg.MinimumWage.Mul(two))
}

// Earnings returns overtime pay and the transport allowance, omitting zero lines.
func (c *CompensationCalculator) Earnings(emp employee.Employee, hours HoursSummary, catalog payroll.Catalog) payroll.Breakdown {
	var earnings payroll.Breakdown
	if hours.OvertimeHours.IsPositive() {
		earnings.Add(c.OvertimePay(emp, hours.OvertimeHours, catalog))
	}
	if c.QualifiesForTransport(emp) {
		earnings.Add(catalog.Line(payroll.ConceptTransportAllowance, one, c.cfg.TransportAllowance, money(c.cfg.TransportAllowance)))
	}
	return earnings
}
