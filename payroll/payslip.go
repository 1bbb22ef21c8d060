package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/punch"
)

// Line item codes.
const (
	CodeBaseSalary          = "base_salary"
	CodeOvertime            = "overtime"
	CodeNightPremium        = "night_premium"
	CodeCommuting           = "commuting_allowance"
	CodeHealthInsurance     = "health_insurance"
	CodePension             = "pension"
	CodeEmploymentInsurance = "employment_insurance"
	CodeIncomeTax           = "income_tax"
	CodeResidentTax         = "resident_tax"
)

// LineItem is one payment or deduction. Quantity (hours) and UnitPrice are
// set only for time-based items.
type LineItem struct {
	Code      string
	Name      string
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
	Amount    decimal.Decimal
}

// Payslip is one employee's pay for one period.
type Payslip struct {
	EmployeeID  punch.EmployeeID
	Period      attendance.Period
	PaymentDate time.Time

	Payments   []LineItem
	Deductions []LineItem

	GrossTotal     decimal.Decimal
	DeductionTotal decimal.Decimal
	NetTotal       decimal.Decimal

	Attendance attendance.Totals
}

// Payment returns the payment line with code, if present.
func (p Payslip) Payment(code string) (LineItem, bool) {
	return find(p.Payments, code)
}

// Deduction returns the deduction line with code, if present.
func (p Payslip) Deduction(code string) (LineItem, bool) {
	return find(p.Deductions, code)
}

func find(items []LineItem, code string) (LineItem, bool) {
	for _, it := range items {
		if it.Code == code {
			return it, true
		}
	}
	return LineItem{}, false
}

// PaymentDate is the 25th of the month after the period ends.
func PaymentDate(period attendance.Period) time.Time {
	end := period.End
	return time.Date(end.Year(), end.Month()+1, 25, 0, 0, 0, 0, end.Location())
}
