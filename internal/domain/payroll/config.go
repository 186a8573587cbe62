package payroll

import (
	"github.com/cmlabs-hris/payroll-service/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// TaxBracket - One step of the progressive income tax table.
// Tax for an annual taxable amount within the bracket is
// Base + (amount - Floor) * Rate. A nil UpTo marks the open-ended top bracket.
type TaxBracket struct {
	UpTo  *decimal.Decimal
	Base  decimal.Decimal
	Floor decimal.Decimal
	Rate  decimal.Decimal
}

// Config - Statutory and company constants used by every calculator
type Config struct {
	StandardWorkingHours    decimal.Decimal // per day
	StandardWorkingDays     int             // per period
	HourlyDivisor           decimal.Decimal // base salary -> hourly rate
	OvertimeDivisor         decimal.Decimal // base salary -> overtime hourly rate
	OvertimeMultiplier      decimal.Decimal
	TransportAllowance      decimal.Decimal
	MinimumWage             decimal.Decimal
	HealthContributionRate  decimal.Decimal
	PensionContributionRate decimal.Decimal
	IncomeTaxExemptAmount   decimal.Decimal
	LeaveDayDivisor         decimal.Decimal // base salary -> daily rate for unpaid leave
	TaxBrackets             []TaxBracket
	Workers                 int
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// DefaultTaxBrackets returns the withholding table. The 410,640 and
// 1,038,320 bases are kept as published even though they do not equal the
// cumulative tax of the lower brackets.
func DefaultTaxBrackets() []TaxBracket {
	return []TaxBracket{
		{UpTo: ptr(decimal.NewFromInt(1340000)), Base: decimal.Zero, Floor: decimal.Zero, Rate: decimal.Zero},
		{UpTo: ptr(decimal.NewFromInt(3496000)), Base: decimal.Zero, Floor: decimal.NewFromInt(1340000), Rate: decimal.RequireFromString("0.19")},
		{UpTo: ptr(decimal.NewFromInt(5738000)), Base: decimal.NewFromInt(410640), Floor: decimal.NewFromInt(3496000), Rate: decimal.RequireFromString("0.28")},
		{UpTo: nil, Base: decimal.NewFromInt(1038320), Floor: decimal.NewFromInt(5738000), Rate: decimal.RequireFromString("0.33")},
	}
}

func DefaultConfig() Config {
	return Config{
		StandardWorkingHours:    decimal.NewFromInt(8),
		StandardWorkingDays:     22,
		HourlyDivisor:           decimal.NewFromInt(160),
		OvertimeDivisor:         decimal.NewFromInt(240),
		OvertimeMultiplier:      decimal.RequireFromString("1.25"),
		TransportAllowance:      decimal.NewFromInt(162000),
		MinimumWage:             decimal.NewFromInt(1300000),
		HealthContributionRate:  decimal.RequireFromString("0.04"),
		PensionContributionRate: decimal.RequireFromString("0.04"),
		IncomeTaxExemptAmount:   decimal.NewFromInt(2392000),
		LeaveDayDivisor:         decimal.NewFromInt(30),
		TaxBrackets:             DefaultTaxBrackets(),
		Workers:                 1,
	}
}

func (c Config) Validate() error {
	var errs validator.ValidationErrors

	positive := []struct {
		field string
		value decimal.Decimal
	}{
		{"standard_working_hours", c.StandardWorkingHours},
		{"hourly_divisor", c.HourlyDivisor},
		{"overtime_divisor", c.OvertimeDivisor},
		{"overtime_multiplier", c.OvertimeMultiplier},
		{"leave_day_divisor", c.LeaveDayDivisor},
	}
	for _, p := range positive {
		if !p.value.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: p.field, Message: "must be positive"})
		}
	}

	nonNegative := []struct {
		field string
		value decimal.Decimal
	}{
		{"transport_allowance", c.TransportAllowance},
		{"minimum_wage", c.MinimumWage},
		{"health_contribution_rate", c.HealthContributionRate},
		{"pension_contribution_rate", c.PensionContributionRate},
		{"income_tax_exempt_amount", c.IncomeTaxExemptAmount},
	}
	for _, n := range nonNegative {
		if n.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: n.field, Message: "must be non-negative"})
		}
	}

	if c.StandardWorkingDays <= 0 {
		errs = append(errs, validator.ValidationError{Field: "standard_working_days", Message: "must be positive"})
	}
	if c.Workers < 1 {
		errs = append(errs, validator.ValidationError{Field: "workers", Message: "must be at least 1"})
	}

	if len(c.TaxBrackets) == 0 {
		errs = append(errs, validator.ValidationError{Field: "tax_brackets", Message: "is required"})
	} else {
		for i, b := range c.TaxBrackets {
			last := i == len(c.TaxBrackets)-1
			if b.UpTo == nil && !last {
				errs = append(errs, validator.ValidationError{Field: "tax_brackets", Message: "only the last bracket may be open-ended"})
				break
			}
			if i > 0 && b.UpTo != nil && c.TaxBrackets[i-1].UpTo != nil && !b.UpTo.GreaterThan(*c.TaxBrackets[i-1].UpTo) {
				errs = append(errs, validator.ValidationError{Field: "tax_brackets", Message: "limits must be ascending"})
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
