package config

import (
	"fmt"
	"os"
	"time"

	"github.com/warp/punchclock/attendance"
	"gopkg.in/yaml.v3"
)

// RuleFile is the YAML form of attendance.Rules. Omitted fields keep their
// defaults.
//
//	schedule:
//	  start: "09:00"
//	  end: "18:00"
//	  late_grace: 15m
//	  early_leave_grace: 15m
//	  minutes_per_day: 480
//	overtime:
//	  threshold_minutes: 480
//	night:
//	  start: "22:00"
//	  end: "05:00"
type RuleFile struct {
	Schedule struct {
		Start           string `yaml:"start"`
		End             string `yaml:"end"`
		LateGrace       string `yaml:"late_grace"`
		EarlyLeaveGrace string `yaml:"early_leave_grace"`
		MinutesPerDay   *int   `yaml:"minutes_per_day"`
	} `yaml:"schedule"`
	Overtime struct {
		ThresholdMinutes *int `yaml:"threshold_minutes"`
	} `yaml:"overtime"`
	Night struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"night"`
}

// LoadRules reads a rule file and returns validated rules.
func LoadRules(path string) (attendance.Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return attendance.Rules{}, fmt.Errorf("config: read rules %s: %w", path, err)
	}
	return ParseRules(b)
}

// ParseRules decodes YAML rules over the defaults.
func ParseRules(b []byte) (attendance.Rules, error) {
	var f RuleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return attendance.Rules{}, fmt.Errorf("config: parse rules yaml: %w", err)
	}
	return f.toRules()
}

func (f RuleFile) toRules() (attendance.Rules, error) {
	r := attendance.DefaultRules()

	clocks := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"schedule.start", f.Schedule.Start, &r.ScheduledStart},
		{"schedule.end", f.Schedule.End, &r.ScheduledEnd},
		{"night.start", f.Night.Start, &r.NightStart},
		{"night.end", f.Night.End, &r.NightEnd},
	}
	for _, c := range clocks {
		if c.raw == "" {
			continue
		}
		d, err := parseClock(c.raw)
		if err != nil {
			return attendance.Rules{}, fmt.Errorf("config: %s: %w", c.name, err)
		}
		*c.dst = d
	}

	graces := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"schedule.late_grace", f.Schedule.LateGrace, &r.LateGrace},
		{"schedule.early_leave_grace", f.Schedule.EarlyLeaveGrace, &r.EarlyLeaveGrace},
	}
	for _, g := range graces {
		if g.raw == "" {
			continue
		}
		d, err := time.ParseDuration(g.raw)
		if err != nil {
			return attendance.Rules{}, fmt.Errorf("config: %s: %w", g.name, err)
		}
		*g.dst = d
	}

	if f.Schedule.MinutesPerDay != nil {
		r.ScheduledMinutesPerDay = *f.Schedule.MinutesPerDay
	}
	if f.Overtime.ThresholdMinutes != nil {
		r.OvertimeThresholdMinutes = *f.Overtime.ThresholdMinutes
	}

	if err := r.Validate(); err != nil {
		return attendance.Rules{}, err
	}
	return r, nil
}

// parseClock parses "15:04" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
