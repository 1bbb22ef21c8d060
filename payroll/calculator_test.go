package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/payroll"
)

var jst = time.FixedZone("JST", 9*60*60)

func yen(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func assertYen(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(yen(want)), "%s: want %d, got %s", msg, want, got)
}

func attendanceWith(totals attendance.Totals) attendance.PeriodAttendance {
	return attendance.PeriodAttendance{
		EmployeeID: "emp-1",
		Period:     attendance.MonthPeriod(2025, time.March, jst),
		Totals:     totals,
		PunchCount: 40,
	}
}

func standardProfile() payroll.CompensationProfile {
	return payroll.DefaultProfile("emp-1", yen(300000), yen(15000), yen(11100))
}

func TestComputePayslip_NoOvertime(t *testing.T) {
	// GIVEN: 300,000 base, 15,000 commuting, no overtime or night work
	pa := attendanceWith(attendance.Totals{WorkedMinutes: 9600, ScheduledMinutes: 9600, WorkDays: 20})

	// WHEN: computing the payslip
	slip, ok := payroll.NewCalculator().ComputePayslip(pa, standardProfile())
	require.True(t, ok)

	// THEN: each deduction is rounded on its own
	assertYen(t, 315000, slip.GrossTotal, "gross")
	deductions := map[string]int64{
		payroll.CodeHealthInsurance:     16695,
		payroll.CodePension:             25515,
		payroll.CodeEmploymentInsurance: 945,
		payroll.CodeIncomeTax:           13592, // 271,845 * 5% = 13,592.25
		payroll.CodeResidentTax:         11100,
	}
	for code, want := range deductions {
		item, found := slip.Deduction(code)
		require.True(t, found, code)
		assertYen(t, want, item.Amount, code)
	}
	assertYen(t, 67847, slip.DeductionTotal, "deductions")
	assertYen(t, 247153, slip.NetTotal, "net")

	// AND: no overtime or night items are emitted
	_, found := slip.Payment(payroll.CodeOvertime)
	assert.False(t, found)
	_, found = slip.Payment(payroll.CodeNightPremium)
	assert.False(t, found)

	assert.Equal(t, time.Date(2025, time.April, 25, 0, 0, 0, 0, jst), slip.PaymentDate)
}

func TestComputePayslip_OvertimeAndNightRoundHalfAwayFromZero(t *testing.T) {
	// GIVEN: 10h overtime and 2h night at an hourly rate of 1,875
	pa := attendanceWith(attendance.Totals{OvertimeMinutes: 600, NightMinutes: 120})

	slip, ok := payroll.NewCalculator().ComputePayslip(pa, standardProfile())
	require.True(t, ok)

	// THEN: 23,437.5 -> 23,438 and 937.5 -> 938
	ot, found := slip.Payment(payroll.CodeOvertime)
	require.True(t, found)
	assertYen(t, 23438, ot.Amount, "overtime")
	require.NotNil(t, ot.Quantity)
	assert.True(t, ot.Quantity.Equal(yen(10)))

	night, found := slip.Payment(payroll.CodeNightPremium)
	require.True(t, found)
	assertYen(t, 938, night.Amount, "night")

	assertYen(t, 300000+23438+938+15000, slip.GrossTotal, "gross")
}

func TestComputePayslip_NetEqualsGrossMinusDeductions(t *testing.T) {
	for _, base := range []int64{187500, 213333, 250001, 999999} {
		profile := payroll.DefaultProfile("emp-1", yen(base), yen(7777), yen(5000))
		pa := attendanceWith(attendance.Totals{OvertimeMinutes: 137, NightMinutes: 59})

		slip, ok := payroll.NewCalculator().ComputePayslip(pa, profile)
		require.True(t, ok)

		assert.True(t, slip.NetTotal.Equal(slip.GrossTotal.Sub(slip.DeductionTotal)))
		for _, it := range append(slip.Payments, slip.Deductions...) {
			assert.True(t, it.Amount.Equal(it.Amount.Round(0)), "%s not whole: %s", it.Code, it.Amount)
		}
	}
}

func TestComputePayslip_NoData(t *testing.T) {
	pa := attendance.PeriodAttendance{Period: attendance.MonthPeriod(2025, time.March, jst)}

	_, ok := payroll.NewCalculator().ComputePayslip(pa, standardProfile())
	assert.False(t, ok)
}

func TestComputePayslip_NoCommutingLineWhenZero(t *testing.T) {
	profile := payroll.DefaultProfile("emp-1", yen(300000), decimal.Zero, yen(0))

	slip, ok := payroll.NewCalculator().ComputePayslip(attendanceWith(attendance.Totals{}), profile)
	require.True(t, ok)

	_, found := slip.Payment(payroll.CodeCommuting)
	assert.False(t, found)
	assertYen(t, 300000, slip.GrossTotal, "gross")
}

func TestCompensationProfile_Validate(t *testing.T) {
	assert.NoError(t, standardProfile().Validate())

	p := standardProfile()
	p.StandardMonthlyHours = decimal.Zero
	assert.ErrorIs(t, p.Validate(), payroll.ErrInvalidProfile)

	p = standardProfile()
	p.BaseSalary = yen(-1)
	assert.ErrorIs(t, p.Validate(), payroll.ErrInvalidProfile)
}

func TestPaymentDate_December(t *testing.T) {
	got := payroll.PaymentDate(attendance.MonthPeriod(2025, time.December, jst))
	assert.Equal(t, time.Date(2026, time.January, 25, 0, 0, 0, 0, jst), got)
}
