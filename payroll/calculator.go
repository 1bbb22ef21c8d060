package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
)

var sixty = decimal.NewFromInt(60)

// Calculator computes payslips. Stateless.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// ComputePayslip derives the payslip for pa under profile. ok is false when
// the period has no punches (NoData): there is nothing to pay against.
func (c *Calculator) ComputePayslip(pa attendance.PeriodAttendance, profile CompensationProfile) (Payslip, bool) {
	if pa.Empty() {
		return Payslip{}, false
	}

	slip := Payslip{
		EmployeeID:  pa.EmployeeID,
		Period:      pa.Period,
		PaymentDate: PaymentDate(pa.Period),
		Attendance:  pa.Totals,
	}
	if slip.EmployeeID == "" {
		slip.EmployeeID = profile.EmployeeID
	}

	hourly := profile.HourlyRate()

	// Payments
	slip.Payments = append(slip.Payments, LineItem{
		Code:   CodeBaseSalary,
		Name:   "Base salary",
		Amount: round(profile.BaseSalary),
	})
	if pa.Totals.OvertimeMinutes > 0 {
		rate := hourly.Mul(profile.OvertimeMultiplier)
		slip.Payments = append(slip.Payments, timeItem(CodeOvertime, "Overtime pay", pa.Totals.OvertimeMinutes, rate))
	}
	if pa.Totals.NightMinutes > 0 {
		rate := hourly.Mul(profile.NightPremium)
		slip.Payments = append(slip.Payments, timeItem(CodeNightPremium, "Night premium", pa.Totals.NightMinutes, rate))
	}
	if profile.CommutingAllowance.IsPositive() {
		slip.Payments = append(slip.Payments, LineItem{
			Code:   CodeCommuting,
			Name:   "Commuting allowance",
			Amount: round(profile.CommutingAllowance),
		})
	}
	slip.GrossTotal = sum(slip.Payments)

	// Deductions
	gross := slip.GrossTotal
	health := round(gross.Mul(profile.HealthInsuranceRate))
	pension := round(gross.Mul(profile.PensionRate))
	employment := round(gross.Mul(profile.EmploymentInsuranceRate))
	taxable := gross.Sub(health).Sub(pension).Sub(employment)
	incomeTax := round(taxable.Mul(profile.IncomeTaxRate))

	slip.Deductions = []LineItem{
		{Code: CodeHealthInsurance, Name: "Health insurance", Amount: health},
		{Code: CodePension, Name: "Pension insurance", Amount: pension},
		{Code: CodeEmploymentInsurance, Name: "Employment insurance", Amount: employment},
		{Code: CodeIncomeTax, Name: "Income tax", Amount: incomeTax},
		{Code: CodeResidentTax, Name: "Resident tax", Amount: round(profile.ResidentTax)},
	}
	slip.DeductionTotal = sum(slip.Deductions)
	slip.NetTotal = slip.GrossTotal.Sub(slip.DeductionTotal)

	return slip, true
}

func timeItem(code, name string, minutes int, rate decimal.Decimal) LineItem {
	hours := decimal.NewFromInt(int64(minutes)).Div(sixty)
	return LineItem{
		Code:      code,
		Name:      name,
		Quantity:  &hours,
		UnitPrice: &rate,
		Amount:    round(decimal.NewFromInt(int64(minutes)).Mul(rate).Div(sixty)),
	}
}

// round rounds half away from zero to whole units.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

func sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
