package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	p.id, p.employee_id, p.period_id, p.base_salary, p.regular_hours, p.overtime_hours,
	p.worked_days, p.gross_salary, p.total_earnings, p.total_deductions, p.total_taxes,
	p.net_salary, p.status, p.calculated_at, p.created_at, p.updated_at`

func scanPayroll(row pgx.Row, extra ...any) (payroll.Payroll, error) {
	var p payroll.Payroll
	dest := []any{
		&p.ID, &p.EmployeeID, &p.PeriodID, &p.BaseSalary, &p.RegularHours, &p.OvertimeHours,
		&p.WorkedDays, &p.GrossSalary, &p.TotalEarnings, &p.TotalDeductions, &p.TotalTaxes,
		&p.NetSalary, &p.Status, &p.CalculatedAt, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return payroll.Payroll{}, err
	}
	return p, nil
}

// ========== PAYROLLS ==========

func (r *payrollRepository) FindOrCreate(ctx context.Context, employeeID, periodID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	// DO UPDATE instead of DO NOTHING so the existing row is both locked and returned.
	query := `
		INSERT INTO payrolls AS p (employee_id, period_id, status)
		VALUES ($1, $2, 'draft')
		ON CONFLICT (employee_id, period_id) DO UPDATE SET updated_at = p.updated_at
		RETURNING ` + payrollColumns

	p, err := scanPayroll(q.QueryRow(ctx, query, employeeID, periodID))
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to find or create payroll: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.employee_code
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	var name, code string
	p, err := scanPayroll(q.QueryRow(ctx, query, id), &name, &code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	p.EmployeeName = &name
	p.EmployeeCode = &code
	return p, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.employee_code
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.period_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		var name, code string
		p, err := scanPayroll(rows, &name, &code)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		p.EmployeeName = &name
		p.EmployeeCode = &code
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payrolls: %w", err)
	}

	return payrolls, nil
}

func (r *payrollRepository) SaveResult(ctx context.Context, p payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls SET
			base_salary = $2, regular_hours = $3, overtime_hours = $4, worked_days = $5,
			gross_salary = $6, total_earnings = $7, total_deductions = $8, total_taxes = $9,
			net_salary = $10, status = $11, calculated_at = $12, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.BaseSalary, p.RegularHours, p.OvertimeHours, p.WorkedDays,
		p.GrossSalary, p.TotalEarnings, p.TotalDeductions, p.TotalTaxes,
		p.NetSalary, p.Status, p.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) TransitionByPeriod(ctx context.Context, periodID string, from, to payroll.PayrollStatus) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payrolls SET status = $3, updated_at = NOW()
		WHERE period_id = $1 AND status = $2
	`, periodID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to update payroll statuses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepository) SumByPeriod(ctx context.Context, periodID string) (payroll.PeriodTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(gross_salary), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(total_taxes), 0),
			COALESCE(SUM(net_salary), 0)
		FROM payrolls
		WHERE period_id = $1 AND status <> 'cancelled'
	`

	var t payroll.PeriodTotals
	err := q.QueryRow(ctx, query, periodID).Scan(
		&t.TotalEmployees, &t.TotalGross, &t.TotalDeductions, &t.TotalTaxes, &t.TotalNet,
	)
	if err != nil {
		return payroll.PeriodTotals{}, fmt.Errorf("failed to sum payrolls: %w", err)
	}
	return t, nil
}

// ========== DETAILS ==========

func (r *payrollRepository) DeleteDetails(ctx context.Context, payrollID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_details WHERE payroll_id = $1`, payrollID); err != nil {
		return fmt.Errorf("failed to delete payroll details: %w", err)
	}
	return nil
}

func (r *payrollRepository) InsertDetails(ctx context.Context, details []payroll.PayrollDetail) error {
	if len(details) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_details (
			payroll_id, concept_id, concept_code, concept_name, concept_type,
			quantity, rate, amount, position
		) VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for i, d := range details {
		batch.Queue(query,
			d.PayrollID, d.ConceptID, d.ConceptCode, d.ConceptName, d.ConceptType,
			d.Quantity, d.Rate, d.Amount, i,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for range details {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert payroll detail: %w", err)
		}
	}
	return nil
}

func (r *payrollRepository) ListDetails(ctx context.Context, payrollID string) ([]payroll.PayrollDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_id, COALESCE(concept_id::text, ''), concept_code, concept_name,
			concept_type, quantity, rate, amount, created_at
		FROM payroll_details
		WHERE payroll_id = $1
		ORDER BY position
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll details: %w", err)
	}
	defer rows.Close()

	var details []payroll.PayrollDetail
	for rows.Next() {
		var d payroll.PayrollDetail
		if err := rows.Scan(
			&d.ID, &d.PayrollID, &d.ConceptID, &d.ConceptCode, &d.ConceptName,
			&d.ConceptType, &d.Quantity, &d.Rate, &d.Amount, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll details: %w", err)
	}

	return details, nil
}
