package payroll

import (
	"context"
	"time"
)

// PeriodRepository defines data access methods for payroll periods.
type PeriodRepository interface {
	GetByID(ctx context.Context, id string) (Period, error)
	// ListDue returns open periods whose end date is before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]Period, error)
	UpdateStatus(ctx context.Context, id string, status PeriodStatus) error
	// UpdateTotals stores the totals and stamps processed_at.
	UpdateTotals(ctx context.Context, id string, totals PeriodTotals) error
}

// PayrollRepository defines data access methods for payrolls and their details.
type PayrollRepository interface {
	// FindOrCreate returns the payroll of (employeeID, periodID), inserting a
	// draft one when none exists. Concurrent callers converge on one row.
	FindOrCreate(ctx context.Context, employeeID, periodID string) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	ListByPeriod(ctx context.Context, periodID string) ([]Payroll, error)
	// SaveResult writes the calculated amounts, status and calculated_at.
	SaveResult(ctx context.Context, p Payroll) error
	// TransitionByPeriod moves every payroll of the period in status from to status to.
	TransitionByPeriod(ctx context.Context, periodID string, from, to PayrollStatus) (int64, error)
	SumByPeriod(ctx context.Context, periodID string) (PeriodTotals, error)

	DeleteDetails(ctx context.Context, payrollID string) error
	InsertDetails(ctx context.Context, details []PayrollDetail) error
	ListDetails(ctx context.Context, payrollID string) ([]PayrollDetail, error)
}

// ConceptRepository is the read-only concept catalog.
type ConceptRepository interface {
	GetByCode(ctx context.Context, code ConceptCode) (Concept, error)
}

// BenefitRepository is the read-only view of employee benefits.
type BenefitRepository interface {
	// ListActiveByEmployee returns active benefits with their concept joined.
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]Benefit, error)
}

// Transactor runs fn in a transaction carried by the context passed to fn.
// Repositories called with that context take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PeriodLocker gives a caller exclusive processing rights on a period.
// TryLock fails with ErrPeriodBusy when another holder exists.
type PeriodLocker interface {
	TryLock(ctx context.Context, periodID string) (unlock func(), err error)
}
