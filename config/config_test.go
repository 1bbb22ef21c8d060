package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "APP_ENV", "DB_PATH", "TIME_ZONE", "RULES_FILE", "LOG_LEVEL", "SCHEDULER_INTERVAL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "punchclock.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, attendance.DefaultRules(), cfg.Rules)
}

func TestLoad_EnvFileAndRules(t *testing.T) {
	for _, k := range []string{"APP_PORT", "APP_ENV", "DB_PATH", "TIME_ZONE", "RULES_FILE", "LOG_LEVEL", "SCHEDULER_INTERVAL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("schedule:\n  start: \"08:30\"\n"), 0o600))

	envPath := filepath.Join(dir, "test.env")
	env := "APP_PORT=9090\nAPP_ENV=production\nLOG_LEVEL=debug\nRULES_FILE=" + rulesPath + "\nTIME_ZONE=UTC\n"
	require.NoError(t, os.WriteFile(envPath, []byte(env), 0o600))

	cfg, err := Load(envPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 8*time.Hour+30*time.Minute, cfg.Rules.ScheduledStart)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hr.example.com, ,https://admin.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.App.AllowedOrigins)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestParseRules_OverridesDefaults(t *testing.T) {
	rules, err := ParseRules([]byte(`
schedule:
  start: "10:00"
  end: "19:00"
  late_grace: 5m
  minutes_per_day: 450
overtime:
  threshold_minutes: 450
night:
  start: "23:00"
  end: "06:00"
`))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Hour, rules.ScheduledStart)
	assert.Equal(t, 19*time.Hour, rules.ScheduledEnd)
	assert.Equal(t, 5*time.Minute, rules.LateGrace)
	assert.Equal(t, 15*time.Minute, rules.EarlyLeaveGrace)
	assert.Equal(t, 450, rules.ScheduledMinutesPerDay)
	assert.Equal(t, 450, rules.OvertimeThresholdMinutes)
	assert.Equal(t, 23*time.Hour, rules.NightStart)
	assert.Equal(t, 6*time.Hour, rules.NightEnd)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad clock":     "schedule:\n  start: \"9am\"\n",
		"bad grace":     "schedule:\n  late_grace: soon\n",
		"end not after": "schedule:\n  start: \"18:00\"\n  end: \"09:00\"\n",
		"not yaml":      "schedule: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
