/*
Package payroll computes monthly payslips from attendance totals.

PURPOSE:
  Turns a PeriodAttendance and a CompensationProfile into a Payslip with
  itemised payments and deductions. No I/O; the caller loads the profile and
  the attendance.

PRECISION:
  All money and rates are decimal.Decimal. Each line item is rounded half
  away from zero to whole currency units when it is computed, and totals are
  sums of the rounded items, so a payslip always adds up on paper.

FORMULAS (defaults in parentheses):
  hourly        = base salary / standard monthly hours (160)
  overtime pay  = overtime hours * hourly * overtime multiplier (1.25)
  night premium = night hours * hourly * night premium (0.25)
  gross         = base + overtime + night + commuting allowance
  health        = gross * 5.3%
  pension       = gross * 8.1%
  employment    = gross * 0.3%
  income tax    = (gross - health - pension - employment) * 5%
  resident tax  = flat monthly amount from the profile
  net           = gross - deductions

  Night premium is additive with overtime: an overtime hour at night earns
  both.

SEE ALSO:
  - attendance/: source of the minutes
  - store/sqlite: profile persistence
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/punch"
)

var ErrInvalidProfile = errors.New("payroll: invalid compensation profile")

// CompensationProfile is an employee's pay terms.
type CompensationProfile struct {
	EmployeeID punch.EmployeeID

	BaseSalary           decimal.Decimal
	StandardMonthlyHours decimal.Decimal
	CommutingAllowance   decimal.Decimal
	ResidentTax          decimal.Decimal

	HealthInsuranceRate     decimal.Decimal
	PensionRate             decimal.Decimal
	EmploymentInsuranceRate decimal.Decimal
	IncomeTaxRate           decimal.Decimal

	OvertimeMultiplier decimal.Decimal
	NightPremium       decimal.Decimal
}

// DefaultProfile returns a profile with the standard rates and the given
// monthly amounts.
func DefaultProfile(employeeID punch.EmployeeID, base, commuting, residentTax decimal.Decimal) CompensationProfile {
	return CompensationProfile{
		EmployeeID:              employeeID,
		BaseSalary:              base,
		StandardMonthlyHours:    decimal.NewFromInt(160),
		CommutingAllowance:      commuting,
		ResidentTax:             residentTax,
		HealthInsuranceRate:     decimal.RequireFromString("0.053"),
		PensionRate:             decimal.RequireFromString("0.081"),
		EmploymentInsuranceRate: decimal.RequireFromString("0.003"),
		IncomeTaxRate:           decimal.RequireFromString("0.05"),
		OvertimeMultiplier:      decimal.RequireFromString("1.25"),
		NightPremium:            decimal.RequireFromString("0.25"),
	}
}

// Validate rejects negative amounts and a non-positive hour base.
func (p CompensationProfile) Validate() error {
	if p.EmployeeID == "" {
		return fmt.Errorf("%w: missing employee", ErrInvalidProfile)
	}
	if !p.StandardMonthlyHours.IsPositive() {
		return fmt.Errorf("%w: standard monthly hours must be positive", ErrInvalidProfile)
	}
	for name, v := range map[string]decimal.Decimal{
		"base_salary":               p.BaseSalary,
		"commuting_allowance":       p.CommutingAllowance,
		"resident_tax":              p.ResidentTax,
		"health_insurance_rate":     p.HealthInsuranceRate,
		"pension_rate":              p.PensionRate,
		"employment_insurance_rate": p.EmploymentInsuranceRate,
		"income_tax_rate":           p.IncomeTaxRate,
		"overtime_multiplier":       p.OvertimeMultiplier,
		"night_premium":             p.NightPremium,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidProfile, name)
		}
	}
	return nil
}

// HourlyRate is base salary over standard monthly hours, unrounded.
func (p CompensationProfile) HourlyRate() decimal.Decimal {
	hours := p.StandardMonthlyHours
	if !hours.IsPositive() {
		hours = decimal.NewFromInt(160)
	}
	return p.BaseSalary.Div(hours)
}
