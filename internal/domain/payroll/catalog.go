package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog holds the resolved standard concepts, keyed by code.
type Catalog map[ConceptCode]Concept

// Line builds a detail line for a standard concept. The catalog is expected
// to have been resolved against StandardConcepts beforehand.
func (c Catalog) Line(code ConceptCode, quantity, rate, amount decimal.Decimal) Line {
	concept := c[code]
	name := concept.Name
	if name == "" {
		name = string(code)
	}
	return Line{
		ConceptID: concept.ID,
		Code:      string(code),
		Name:      name,
		Type:      concept.Type,
		Quantity:  quantity,
		Rate:      rate,
		Amount:    amount,
	}
}

// LineCode is the concept code, or TYPE_<benefit id> when the benefit's
// concept carries no code.
func (b Benefit) LineCode() string {
	if b.Concept.Code != "" {
		return string(b.Concept.Code)
	}
	return strings.ToUpper(string(b.Concept.Type)) + "_" + b.ID
}

// IsActive reports whether the benefit applies to new calculations.
func (b Benefit) IsActive() bool {
	return b.Status == BenefitStatusActive
}
