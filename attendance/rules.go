package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// RULES - Schedule and thresholds
// =============================================================================

// Rules holds the working schedule. Times of day are offsets from local
// midnight and are applied as wall-clock times.
type Rules struct {
	ScheduledStart  time.Duration
	ScheduledEnd    time.Duration
	LateGrace       time.Duration
	EarlyLeaveGrace time.Duration

	OvertimeThresholdMinutes int
	ScheduledMinutesPerDay   int

	// NightEnd <= NightStart means the window wraps past midnight.
	NightStart time.Duration
	NightEnd   time.Duration
}

// DefaultRules is the standard 09:00-18:00 schedule with an 8 hour overtime
// threshold and the 22:00-05:00 night window.
func DefaultRules() Rules {
	return Rules{
		ScheduledStart:           9 * time.Hour,
		ScheduledEnd:             18 * time.Hour,
		LateGrace:                15 * time.Minute,
		EarlyLeaveGrace:          15 * time.Minute,
		OvertimeThresholdMinutes: 480,
		ScheduledMinutesPerDay:   480,
		NightStart:               22 * time.Hour,
		NightEnd:                 5 * time.Hour,
	}
}

func (r Rules) Validate() error {
	day := 24 * time.Hour
	for name, d := range map[string]time.Duration{
		"scheduled_start": r.ScheduledStart,
		"scheduled_end":   r.ScheduledEnd,
		"night_start":     r.NightStart,
		"night_end":       r.NightEnd,
	} {
		if d < 0 || d >= day {
			return fmt.Errorf("%w: %s must be within a day", ErrInvalidRules, name)
		}
	}
	if r.ScheduledEnd <= r.ScheduledStart {
		return fmt.Errorf("%w: scheduled_end must be after scheduled_start", ErrInvalidRules)
	}
	if r.NightStart == r.NightEnd {
		return fmt.Errorf("%w: night window is empty", ErrInvalidRules)
	}
	if r.LateGrace < 0 || r.EarlyLeaveGrace < 0 {
		return fmt.Errorf("%w: grace must not be negative", ErrInvalidRules)
	}
	if r.OvertimeThresholdMinutes < 0 || r.ScheduledMinutesPerDay < 0 {
		return fmt.Errorf("%w: minute thresholds must not be negative", ErrInvalidRules)
	}
	return nil
}

// wallClock returns date's local time-of-day offset as an instant. date must
// be a local midnight.
func wallClock(date time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	s := int(offset % time.Minute / time.Second)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, date.Location())
}
