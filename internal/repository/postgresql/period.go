package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

const periodColumns = `
	id, name, start_date, end_date, status, total_employees, total_gross,
	total_deductions, total_taxes, total_net, processed_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.TotalEmployees, &p.TotalGross,
		&p.TotalDeductions, &p.TotalTaxes, &p.TotalNet, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period with id %s: %w", id, err)
	}
	return p, nil
}

// ListDue implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) ListDue(ctx context.Context, asOf time.Time) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE status = $1 AND end_date < $2::date
		ORDER BY end_date
	`

	rows, err := q.Query(ctx, query, payroll.PeriodStatusOpen, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll periods: %w", err)
	}

	return periods, nil
}

// UpdateStatus implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) UpdateStatus(ctx context.Context, id string, status payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_periods SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payroll period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

// UpdateTotals implements payroll.PeriodRepository.
func (r *periodRepositoryImpl) UpdateTotals(ctx context.Context, id string, totals payroll.PeriodTotals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			total_employees = $2, total_gross = $3, total_deductions = $4,
			total_taxes = $5, total_net = $6, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id,
		totals.TotalEmployees, totals.TotalGross, totals.TotalDeductions,
		totals.TotalTaxes, totals.TotalNet,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll period totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}
