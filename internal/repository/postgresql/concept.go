package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type conceptRepositoryImpl struct {
	db *database.DB
}

func NewConceptRepository(db *database.DB) payroll.ConceptRepository {
	return &conceptRepositoryImpl{db: db}
}

// GetByCode implements payroll.ConceptRepository.
func (r *conceptRepositoryImpl) GetByCode(ctx context.Context, code payroll.ConceptCode) (payroll.Concept, error) {
	q := GetQuerier(ctx, r.db)

	var c payroll.Concept
	err := q.QueryRow(ctx, `
		SELECT id, code, name, type FROM payroll_concepts WHERE code = $1
	`, code).Scan(&c.ID, &c.Code, &c.Name, &c.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Concept{}, fmt.Errorf("%w: %s", payroll.ErrConceptNotFound, code)
		}
		return payroll.Concept{}, fmt.Errorf("failed to get payroll concept %s: %w", code, err)
	}
	return c, nil
}
