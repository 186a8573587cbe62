package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// DeductionEngine computes statutory contributions, benefit deductions and
// unpaid leave.
type DeductionEngine struct {
	cfg       payroll.Config
	leaveRepo leave.LeaveRequestRepository
	benefits  *BenefitResolver
}

func NewDeductionEngine(cfg payroll.Config, leaveRepo leave.LeaveRequestRepository, benefits *BenefitResolver) *DeductionEngine {
	return &DeductionEngine{
		cfg:       cfg,
		leaveRepo: leaveRepo,
		benefits:  benefits,
	}
}

func (e *DeductionEngine) Calculate(
	ctx context.Context,
	emp employee.Employee,
	period payroll.Period,
	gross decimal.Decimal,
	benefits []payroll.Benefit,
	catalog payroll.Catalog,
) (payroll.Breakdown, error) {
	var deductions payroll.Breakdown

	deductions.Add(catalog.Line(payroll.ConceptHealth, gross, e.cfg.HealthContributionRate, money(gross.Mul(e.cfg.HealthContributionRate))))
	deductions.Add(catalog.Line(payroll.ConceptPension, gross, e.cfg.PensionContributionRate, money(gross.Mul(e.cfg.PensionContributionRate))))

	deductions.Merge(e.benefits.Resolve(benefits, payroll.ConceptTypeDeduction, gross))

	unpaid, err := e.UnpaidLeave(ctx, emp, period, catalog)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	deductions.Merge(unpaid)

	return deductions, nil
}

// UnpaidLeave charges days_requested * base salary / leave day divisor for
// every approved unpaid leave starting inside the period, one line each.
func (e *DeductionEngine) UnpaidLeave(ctx context.Context, emp employee.Employee, period payroll.Period, catalog payroll.Catalog) (payroll.Breakdown, error) {
	requests, err := e.leaveRepo.ListUnpaidApproved(ctx, emp.ID, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.Breakdown{}, fmt.Errorf("failed to list unpaid leave: %w", err)
	}

	var lines payroll.Breakdown
	daily := emp.BaseSalary.Div(e.cfg.LeaveDayDivisor)
	for _, req := range requests {
		if !req.IsUnpaidWithin(period.StartDate, period.EndDate) {
			continue
		}
		amount := req.DaysRequested.Mul(emp.BaseSalary).Div(e.cfg.LeaveDayDivisor)
		lines.Add(catalog.Line(payroll.ConceptUnpaidLeave, req.DaysRequested, rate(daily), money(amount)))
	}
	return lines, nil
}
