package payroll

import (
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// TaxEngine computes progressive income tax withholding and benefit taxes.
type TaxEngine struct {
	cfg      payroll.Config
	benefits *BenefitResolver
}

func NewTaxEngine(cfg payroll.Config, benefits *BenefitResolver) *TaxEngine {
	return &TaxEngine{cfg: cfg, benefits: benefits}
}

// IncomeTax returns the withholding for a period's gross salary. The taxable
// excess over the exempt amount is annualized and run through the brackets;
// the annual figure is withheld as is, without dividing back by twelve.
// Existing payrolls were produced this way and recalculations must match them.
func (e *TaxEngine) IncomeTax(gross decimal.Decimal) decimal.Decimal {
	if !gross.GreaterThan(e.cfg.IncomeTaxExemptAmount) {
		return decimal.Zero
	}
	annual := gross.Sub(e.cfg.IncomeTaxExemptAmount).Mul(monthsPerYear)
	return money(BracketTax(annual, e.cfg.TaxBrackets))
}

// BracketTax applies the first bracket whose limit covers amount, falling
// back to the last one.
func BracketTax(amount decimal.Decimal, brackets []payroll.TaxBracket) decimal.Decimal {
	if len(brackets) == 0 || !amount.IsPositive() {
		return decimal.Zero
	}
	bracket := brackets[len(brackets)-1]
	for _, b := range brackets {
		if b.UpTo == nil || amount.LessThanOrEqual(*b.UpTo) {
			bracket = b
			break
		}
	}
	tax := bracket.Base.Add(amount.Sub(bracket.Floor).Mul(bracket.Rate))
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax
}

func (e *TaxEngine) Calculate(gross decimal.Decimal, benefits []payroll.Benefit, catalog payroll.Catalog) payroll.Breakdown {
	var taxes payroll.Breakdown
	incomeTax := e.IncomeTax(gross)
	taxes.Add(catalog.Line(payroll.ConceptIncomeTax, one, incomeTax, incomeTax))
	taxes.Merge(e.benefits.Resolve(benefits, payroll.ConceptTypeTax, gross))
	return taxes
}
