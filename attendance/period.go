package attendance

import (
	"fmt"
	"time"

	"github.com/warp/punchclock/clock"
)

// =============================================================================
// PERIOD - Inclusive range of calendar dates
// =============================================================================

// Period is an inclusive range of calendar dates. Start and End are local
// midnights in the zone the period was built for.
//
// Examples:
//   - Payroll month March 2025: Mar 1 - Mar 31
//   - A week for a report: Mon - Sun
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod truncates start and end to their local dates in loc.
func NewPeriod(start, end time.Time, loc *time.Location) Period {
	return Period{Start: clock.StartOfDay(start, loc), End: clock.StartOfDay(end, loc)}
}

// MonthPeriod returns the calendar month containing year/month in loc.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time, loc *time.Location) Period {
	lt := t.In(loc)
	return MonthPeriod(lt.Year(), lt.Month(), loc)
}

// ParseMonth parses "2006-01".
func ParseMonth(s string, loc *time.Location) (Period, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthPeriod(t.Year(), t.Month(), loc), nil
}

// ParseRange parses two "2006-01-02" dates into a period.
func ParseRange(from, to string, loc *time.Location) (Period, error) {
	start, err := time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate rejects empty and inverted periods.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return nil
}

// Bounds returns the half-open instant range [from, to) covered by p.
func (p Period) Bounds() (from, to time.Time) {
	return p.Start, p.End.AddDate(0, 0, 1)
}

// Contains reports whether instant t falls on one of p's dates.
func (p Period) Contains(t time.Time) bool {
	from, to := p.Bounds()
	return !t.Before(from) && t.Before(to)
}

// Location is the zone the period's dates belong to.
func (p Period) Location() *time.Location {
	return p.Start.Location()
}

func (p Period) String() string {
	return "[" + p.Start.Format(time.DateOnly) + ", " + p.End.Format(time.DateOnly) + "]"
}

// Month formats a single-month period as "2006-01".
func (p Period) Month() string {
	return p.Start.Format("2006-01")
}

// PreviousMonth returns the month before the one containing p.Start.
func (p Period) PreviousMonth() Period {
	return MonthPeriod(p.Start.Year(), p.Start.Month()-1, p.Location())
}
