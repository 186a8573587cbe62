package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	payrollService "github.com/cmlabs-hris/payroll-service/internal/service/payroll"
)

// PeriodRunner is the part of the payroll service the jobs drive.
type PeriodRunner interface {
	DuePeriods(ctx context.Context) ([]payroll.Period, error)
	ProcessPeriod(ctx context.Context, periodID string) (payroll.ProcessResult, error)
}

type PayrollJobs struct {
	runner   PeriodRunner
	interval time.Duration
}

func NewPayrollJobs(runner PeriodRunner, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{runner: runner, interval: interval}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_process_due_periods", j.interval, j.ProcessDuePeriods)
}

// ProcessDuePeriods processes every open period whose end date has passed.
// Periods another run holds, or that changed status meanwhile, are skipped.
func (j *PayrollJobs) ProcessDuePeriods(ctx context.Context) error {
	periods, err := j.runner.DuePeriods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list due periods: %w", err)
	}

	if len(periods) == 0 {
		slog.Debug("Cron: No due payroll periods")
		return nil
	}

	var errs []error
	for _, period := range periods {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := j.runner.ProcessPeriod(ctx, period.ID)
		switch {
		case payrollService.IsPreconditionError(err):
			slog.Info("Cron: Skipping payroll period", "period_id", period.ID, "reason", err)
		case err != nil:
			errs = append(errs, fmt.Errorf("process period %s: %w", period.ID, err))
		default:
			slog.Info("Cron: Payroll period processed",
				"period_id", period.ID,
				"processed", result.Processed,
				"errors", result.Errors,
			)
		}
	}

	return errors.Join(errs...)
}
