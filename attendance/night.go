package attendance

import (
	"time"

	"github.com/warp/punchclock/clock"
)

// NightMinutes returns the minutes of [in, out] that fall inside the night
// window opened on in's local date: 22:00 that day to 05:00 the next morning
// with the default rules. A shift from 21:00 to 06:00 yields the full 7 hours;
// an early shift from 04:00 to 09:00 yields none, because the window that
// opened the previous evening belongs to the previous work date.
//
// The result is not capped at worked minutes; Aggregate does that.
func NightMinutes(in, out time.Time, rules Rules, loc *time.Location) int {
	if !out.After(in) {
		return 0
	}
	start, end := nightWindow(clock.StartOfDay(in, loc), rules)
	return int(overlap(in, out, start, end) / time.Minute)
}

// nightWindow returns the window that opens on date.
func nightWindow(date time.Time, rules Rules) (time.Time, time.Time) {
	start := wallClock(date, rules.NightStart)
	if rules.NightEnd <= rules.NightStart {
		return start, wallClock(date.AddDate(0, 0, 1), rules.NightEnd)
	}
	return start, wallClock(date, rules.NightEnd)
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
