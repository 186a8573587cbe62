package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// The current position is joined so payability can be judged without a second query.
const employeeSelect = `
	SELECT e.id, e.employee_code, e.full_name, e.base_salary, e.salary_type, e.hourly_rate,
		e.status, e.created_at, e.updated_at, ep.position_id, p.name, ep.start_date
	FROM employees e
	LEFT JOIN employee_positions ep ON ep.employee_id = e.id AND ep.is_current
	LEFT JOIN positions p ON p.id = ep.position_id`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		emp          employee.Employee
		positionID   *string
		positionName *string
		startDate    *time.Time
	)
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.BaseSalary, &emp.SalaryType, &emp.HourlyRate,
		&emp.Status, &emp.CreatedAt, &emp.UpdatedAt, &positionID, &positionName, &startDate,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	if positionID != nil && startDate != nil {
		emp.CurrentPosition = &employee.PositionAssignment{
			PositionID: *positionID,
			StartDate:  *startDate,
		}
		if positionName != nil {
			emp.CurrentPosition.PositionName = *positionName
		}
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	emp, err := scanEmployee(q.QueryRow(ctx, employeeSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// ListPayable implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListPayable(ctx context.Context, periodEnd time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := employeeSelect + `
		WHERE e.status = $1 AND ep.start_date <= $2::date
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list payable employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}
