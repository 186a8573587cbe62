package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
)

// Calculation - Persisted result of one employee's payroll
type Calculation struct {
	Payroll payroll.Payroll
	Details []payroll.PayrollDetail
}

// PayrollAssembler runs the calculators for one employee and persists the
// payroll with its details atomically.
type PayrollAssembler struct {
	tx           payroll.Transactor
	conceptRepo  payroll.ConceptRepository
	payrollRepo  payroll.PayrollRepository
	aggregator   *AttendanceAggregator
	compensation *CompensationCalculator
	benefits     *BenefitResolver
	deductions   *DeductionEngine
	taxes        *TaxEngine
	now          func() time.Time
}

func NewPayrollAssembler(
	tx payroll.Transactor,
	conceptRepo payroll.ConceptRepository,
	payrollRepo payroll.PayrollRepository,
	aggregator *AttendanceAggregator,
	compensation *CompensationCalculator,
	benefits *BenefitResolver,
	deductions *DeductionEngine,
	taxes *TaxEngine,
) *PayrollAssembler {
	return &PayrollAssembler{
		tx:           tx,
		conceptRepo:  conceptRepo,
		payrollRepo:  payrollRepo,
		aggregator:   aggregator,
		compensation: compensation,
		benefits:     benefits,
		deductions:   deductions,
		taxes:        taxes,
		now:          time.Now,
	}
}

// ResolveCatalog loads every standard concept, failing on the first missing one.
func (a *PayrollAssembler) ResolveCatalog(ctx context.Context) (payroll.Catalog, error) {
	catalog := make(payroll.Catalog, len(payroll.StandardConcepts))
	for _, code := range payroll.StandardConcepts {
		concept, err := a.conceptRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolve concept %s: %w", code, err)
		}
		catalog[code] = concept
	}
	return catalog, nil
}

// Calculate (re)computes the employee's payroll for the period. Previous
// details are replaced; on any error nothing of this employee is written.
func (a *PayrollAssembler) Calculate(ctx context.Context, emp employee.Employee, period payroll.Period) (Calculation, error) {
	if err := ValidateEmployee(emp); err != nil {
		return Calculation{}, err
	}

	var result Calculation
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		catalog, err := a.ResolveCatalog(txCtx)
		if err != nil {
			return err
		}

		record, err := a.payrollRepo.FindOrCreate(txCtx, emp.ID, period.ID)
		if err != nil {
			return fmt.Errorf("failed to find or create payroll: %w", err)
		}
		if record.Status.IsLocked() {
			return fmt.Errorf("%w: payroll %s is %s", payroll.ErrPayrollLocked, record.ID, record.Status)
		}
		if err := a.payrollRepo.DeleteDetails(txCtx, record.ID); err != nil {
			return fmt.Errorf("failed to clear payroll details: %w", err)
		}

		hours, err := a.aggregator.Aggregate(txCtx, emp.ID, period.StartDate, period.EndDate)
		if err != nil {
			return err
		}

		benefits, err := a.benefits.Load(txCtx, emp.ID)
		if err != nil {
			return err
		}

		var lines payroll.Breakdown
		basePay := a.compensation.BasePay(emp, hours, catalog)
		lines.Add(basePay)

		earnings := a.compensation.Earnings(emp, hours, catalog)
		earnings.Merge(a.benefits.Resolve(benefits, payroll.ConceptTypeEarning, basePay.Amount))
		lines.Merge(earnings)
		gross := basePay.Amount.Add(earnings.Total)

		deductions, err := a.deductions.Calculate(txCtx, emp, period, gross, benefits, catalog)
		if err != nil {
			return err
		}
		lines.Merge(deductions)

		taxes := a.taxes.Calculate(gross, benefits, catalog)
		lines.Merge(taxes)

		calculatedAt := a.now()
		record.BaseSalary = basePay.Amount
		record.RegularHours = hours.RegularHours
		record.OvertimeHours = hours.OvertimeHours
		record.WorkedDays = hours.WorkedDays
		record.GrossSalary = gross
		record.TotalEarnings = earnings.Total
		record.TotalDeductions = deductions.Total
		record.TotalTaxes = taxes.Total
		record.NetSalary = gross.Sub(deductions.Total).Sub(taxes.Total)
		record.Status = payroll.PayrollStatusCalculated
		record.CalculatedAt = &calculatedAt

		details := lines.ToDetails(record.ID)
		if err := a.payrollRepo.InsertDetails(txCtx, details); err != nil {
			return fmt.Errorf("failed to insert payroll details: %w", err)
		}
		if err := a.payrollRepo.SaveResult(txCtx, record); err != nil {
			return fmt.Errorf("failed to save payroll: %w", err)
		}

		result = Calculation{Payroll: record, Details: details}
		return nil
	})
	if err != nil {
		return Calculation{}, err
	}

	return result, nil
}
