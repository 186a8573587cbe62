package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
)

type benefitRepositoryImpl struct {
	db *database.DB
}

func NewBenefitRepository(db *database.DB) payroll.BenefitRepository {
	return &benefitRepositoryImpl{db: db}
}

// ListActiveByEmployee implements payroll.BenefitRepository.
func (r *benefitRepositoryImpl) ListActiveByEmployee(ctx context.Context, employeeID string) ([]payroll.Benefit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.employee_id, b.amount, b.percentage, b.status, b.created_at, b.updated_at,
			c.id, COALESCE(c.code, ''), c.name, c.type
		FROM employee_benefits b
		INNER JOIN payroll_concepts c ON c.id = b.concept_id
		WHERE b.employee_id = $1 AND b.status = $2
		ORDER BY b.created_at, b.id
	`

	rows, err := q.Query(ctx, query, employeeID, payroll.BenefitStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefits for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var benefits []payroll.Benefit
	for rows.Next() {
		var b payroll.Benefit
		err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.Amount, &b.Percentage, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&b.Concept.ID, &b.Concept.Code, &b.Concept.Name, &b.Concept.Type,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate benefits: %w", err)
	}

	return benefits, nil
}
