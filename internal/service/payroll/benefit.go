package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BenefitResolver turns an employee's recurring benefits into detail lines.
type BenefitResolver struct {
	benefitRepo payroll.BenefitRepository
}

func NewBenefitResolver(benefitRepo payroll.BenefitRepository) *BenefitResolver {
	return &BenefitResolver{benefitRepo: benefitRepo}
}

// Load fetches the active benefits of an employee once per calculation.
func (r *BenefitResolver) Load(ctx context.Context, employeeID string) ([]payroll.Benefit, error) {
	benefits, err := r.benefitRepo.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee benefits: %w", err)
	}
	return benefits, nil
}

// Resolve returns one line per active benefit of the given type. Fixed
// benefits contribute their amount; percentage benefits contribute
// base * percentage / 100. Non-positive results are skipped.
func (r *BenefitResolver) Resolve(benefits []payroll.Benefit, conceptType payroll.ConceptType, base decimal.Decimal) payroll.Breakdown {
	var resolved payroll.Breakdown
	for _, b := range benefits {
		if !b.IsActive() || b.Concept.Type != conceptType {
			continue
		}

		var line payroll.Line
		switch {
		case b.Amount != nil:
			line = benefitLine(b, one, *b.Amount, *b.Amount)
		case b.Percentage != nil:
			line = benefitLine(b, base, b.Percentage.Div(hundred), base.Mul(*b.Percentage).Div(hundred))
		default:
			continue
		}
		resolved.Add(line)
	}
	return resolved
}

func benefitLine(b payroll.Benefit, quantity, r, amount decimal.Decimal) payroll.Line {
	return payroll.Line{
		ConceptID: b.Concept.ID,
		Code:      b.LineCode(),
		Name:      b.Concept.Name,
		Type:      b.Concept.Type,
		Quantity:  quantity,
		Rate:      r,
		Amount:    money(amount),
	}
}
