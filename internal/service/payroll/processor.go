package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

// totalsTimeout bounds the totals write that ends a run; that write does not
// follow the caller's cancellation.
const totalsTimeout = 30 * time.Second

// PeriodProcessor calculates every payable employee of a period and refreshes
// the period totals.
type PeriodProcessor struct {
	tx           payroll.Transactor
	locker       payroll.PeriodLocker
	periodRepo   payroll.PeriodRepository
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	assembler    *PayrollAssembler
	workers      int
}

func NewPeriodProcessor(
	tx payroll.Transactor,
	locker payroll.PeriodLocker,
	periodRepo payroll.PeriodRepository,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	assembler *PayrollAssembler,
	workers int,
) *PeriodProcessor {
	if workers < 1 {
		workers = 1
	}
	return &PeriodProcessor{
		tx:           tx,
		locker:       locker,
		periodRepo:   periodRepo,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		assembler:    assembler,
		workers:      workers,
	}
}

// lockPeriod takes the period lock and loads a period that still accepts
// calculation. The returned unlock func must be called when done.
func (p *PeriodProcessor) lockPeriod(ctx context.Context, periodID string) (payroll.Period, func(), error) {
	unlock, err := p.locker.TryLock(ctx, periodID)
	if err != nil {
		return payroll.Period{}, nil, err
	}

	period, err := p.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		unlock()
		return payroll.Period{}, nil, err
	}
	if !period.Status.AcceptsCalculation() {
		unlock()
		return payroll.Period{}, nil, fmt.Errorf("%w: period %s is %s", payroll.ErrPeriodLocked, period.ID, period.Status)
	}
	return period, unlock, nil
}

// Process runs the period. Per-employee failures are collected in the result
// and never abort the run; only precondition failures are returned.
func (p *PeriodProcessor) Process(ctx context.Context, periodID string) (payroll.ProcessResult, error) {
	period, unlock, err := p.lockPeriod(ctx, periodID)
	if err != nil {
		return payroll.ProcessResult{}, err
	}
	defer unlock()

	employees, err := p.employeeRepo.ListPayable(ctx, period.EndDate)
	if err != nil {
		return payroll.ProcessResult{}, fmt.Errorf("failed to list payable employees: %w", err)
	}

	start := time.Now()
	slog.Info("Payroll period processing started", "period_id", period.ID, "employees", len(employees), "workers", p.workers)

	details := make([]payroll.ProcessDetail, len(employees))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, emp := range employees {
		g.Go(func() error {
			details[i] = p.processEmployee(ctx, emp, period)
			return nil
		})
	}
	_ = g.Wait()

	result := payroll.ProcessResult{
		PeriodID: period.ID,
		Details:  details,
	}
	for _, d := range details {
		if d.Status == payroll.ProcessStatusSuccess {
			result.Processed++
		} else {
			result.Errors++
		}
	}

	updated, err := p.refreshTotals(ctx, period)
	if err != nil {
		slog.Error("Payroll period totals not updated", "period_id", period.ID, "error", err)
		return result, err
	}
	result.Totals = payroll.NewPeriodResponse(updated)

	slog.Info("Payroll period processing finished",
		"period_id", period.ID,
		"processed", result.Processed,
		"errors", result.Errors,
		"duration", time.Since(start),
	)

	return result, nil
}

func (p *PeriodProcessor) processEmployee(ctx context.Context, emp employee.Employee, period payroll.Period) payroll.ProcessDetail {
	if err := ctx.Err(); err != nil {
		return payroll.ProcessDetail{EmployeeID: emp.ID, Status: payroll.ProcessStatusError, Message: err.Error()}
	}

	calc, err := p.assembler.Calculate(ctx, emp, period)
	if err != nil {
		slog.Warn("Payroll calculation failed", "period_id", period.ID, "employee_id", emp.ID, "error", err)
		return payroll.ProcessDetail{EmployeeID: emp.ID, Status: payroll.ProcessStatusError, Message: err.Error()}
	}

	net := calc.Payroll.NetSalary
	return payroll.ProcessDetail{
		EmployeeID: emp.ID,
		PayrollID:  calc.Payroll.ID,
		NetSalary:  &net,
		Status:     payroll.ProcessStatusSuccess,
	}
}

// CalculateOne recalculates a single employee under the period lock and
// refreshes the period totals.
func (p *PeriodProcessor) CalculateOne(ctx context.Context, employeeID, periodID string) (Calculation, error) {
	period, unlock, err := p.lockPeriod(ctx, periodID)
	if err != nil {
		return Calculation{}, err
	}
	defer unlock()

	emp, err := p.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return Calculation{}, err
	}
	if !emp.IsPayable(period.EndDate) {
		return Calculation{}, fmt.Errorf("%w: %s", employee.ErrEmployeeNotPayable, emp.ID)
	}

	calc, err := p.assembler.Calculate(ctx, emp, period)
	if err != nil {
		return Calculation{}, err
	}

	if _, err := p.refreshTotals(ctx, period); err != nil {
		return calc, err
	}
	return calc, nil
}

// refreshTotals recomputes the period totals from its payrolls and advances
// an open period to calculated. Cancellation of ctx is ignored.
func (p *PeriodProcessor) refreshTotals(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), totalsTimeout)
	defer cancel()

	err := p.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		totals, err := p.payrollRepo.SumByPeriod(txCtx, period.ID)
		if err != nil {
			return fmt.Errorf("failed to sum period payrolls: %w", err)
		}
		if err := p.periodRepo.UpdateTotals(txCtx, period.ID, totals); err != nil {
			return fmt.Errorf("failed to update period totals: %w", err)
		}
		if period.Status == payroll.PeriodStatusOpen {
			if err := p.periodRepo.UpdateStatus(txCtx, period.ID, payroll.PeriodStatusCalculated); err != nil {
				return fmt.Errorf("failed to update period status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.Period{}, err
	}

	updated, err := p.periodRepo.GetByID(ctx, period.ID)
	if err != nil {
		return payroll.Period{}, err
	}
	return updated, nil
}

// IsPreconditionError reports whether err stems from the period state rather
// than a failure while running.
func IsPreconditionError(err error) bool {
	return errors.Is(err, payroll.ErrPeriodNotFound) ||
		errors.Is(err, payroll.ErrPeriodLocked) ||
		errors.Is(err, payroll.ErrPeriodBusy)
}
