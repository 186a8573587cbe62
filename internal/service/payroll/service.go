package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
)

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

type PayrollServiceImpl struct {
	tx          payroll.Transactor
	periodRepo  payroll.PeriodRepository
	payrollRepo payroll.PayrollRepository
	processor   *PeriodProcessor
}

func NewPayrollService(
	cfg payroll.Config,
	tx payroll.Transactor,
	locker payroll.PeriodLocker,
	periodRepo payroll.PeriodRepository,
	payrollRepo payroll.PayrollRepository,
	conceptRepo payroll.ConceptRepository,
	benefitRepo payroll.BenefitRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
) (*PayrollServiceImpl, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", payroll.ErrInvalidConfig, err)
	}

	benefits := NewBenefitResolver(benefitRepo)
	assembler := NewPayrollAssembler(
		tx,
		conceptRepo,
		payrollRepo,
		NewAttendanceAggregator(attendanceRepo, cfg.StandardWorkingHours),
		NewCompensationCalculator(cfg),
		benefits,
		NewDeductionEngine(cfg, leaveRepo, benefits),
		NewTaxEngine(cfg, benefits),
	)

	return &PayrollServiceImpl{
		tx:          tx,
		periodRepo:  periodRepo,
		payrollRepo: payrollRepo,
		processor:   NewPeriodProcessor(tx, locker, periodRepo, payrollRepo, employeeRepo, assembler, cfg.Workers),
	}, nil
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) CalculatePayroll(ctx context.Context, employeeID, periodID string) (payroll.PayrollResponse, error) {
	calc, err := s.processor.CalculateOne(ctx, employeeID, periodID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.NewPayrollResponse(calc.Payroll, calc.Details), nil
}

func (s *PayrollServiceImpl) ProcessPeriod(ctx context.Context, periodID string) (payroll.ProcessResult, error) {
	return s.processor.Process(ctx, periodID)
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

// ApprovePeriod moves a calculated period to approved and freezes its payrolls.
func (s *PayrollServiceImpl) ApprovePeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	return s.transition(ctx, periodID, payroll.PeriodStatusApproved, payroll.PayrollStatusCalculated, payroll.PayrollStatusApproved)
}

// ClosePeriod moves an approved period to closed and marks its payrolls paid.
func (s *PayrollServiceImpl) ClosePeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	return s.transition(ctx, periodID, payroll.PeriodStatusClosed, payroll.PayrollStatusApproved, payroll.PayrollStatusPaid)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, periodID string, next payroll.PeriodStatus, from, to payroll.PayrollStatus) (payroll.PeriodResponse, error) {
	unlock, err := s.processor.locker.TryLock(ctx, periodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	defer unlock()

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status == next || !period.Status.CanTransitionTo(next) {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidStatusTransition, period.Status, next)
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.payrollRepo.TransitionByPeriod(txCtx, periodID, from, to); err != nil {
			return fmt.Errorf("failed to update payroll statuses: %w", err)
		}
		if err := s.periodRepo.UpdateStatus(txCtx, periodID, next); err != nil {
			return fmt.Errorf("failed to update period status: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period.Status = next
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriodPayrolls(ctx context.Context, periodID string) ([]payroll.PayrollResponse, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PayrollResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, payroll.NewPayrollResponse(record, nil))
	}
	return responses, nil
}

func (s *PayrollServiceImpl) PeriodRegister(ctx context.Context, periodID string) ([]payroll.RegisterRow, error) {
	if _, err := s.periodRepo.GetByID(ctx, periodID); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	rows := make([]payroll.RegisterRow, 0, len(records))
	for _, record := range records {
		if record.Status == payroll.PayrollStatusCancelled {
			continue
		}
		rows = append(rows, payroll.NewRegisterRow(record))
	}
	return rows, nil
}

// ========== PAYROLLS ==========

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, payrollID string) (payroll.PayrollResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	details, err := s.payrollRepo.ListDetails(ctx, payrollID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.NewPayrollResponse(record, details), nil
}

// DuePeriods lists open periods that ended before now, for scheduled processing.
func (s *PayrollServiceImpl) DuePeriods(ctx context.Context) ([]payroll.Period, error) {
	return s.periodRepo.ListDue(ctx, s.processor.assembler.now())
}
