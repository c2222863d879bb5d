package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		name      string
		interval  string
		wantError bool
	}{
		// Empty interval
		{"empty interval", "", false},

		// Valid minute durations
		{"valid 1m", "1m", false},
		{"valid 5m", "5m", false},
		{"valid 10m", "10m", false},
		{"valid 15m", "15m", false},
		{"valid 20m", "20m", false},
		{"valid 30m", "30m", false},

		// Valid hour durations
		{"valid 1h", "1h", false},
		{"valid 2h", "2h", false},
		{"valid 4h", "4h", false},
		{"valid 6h", "6h", false},
		{"valid 12h", "12h", false},
		{"valid 24h", "24h", false},

		// Invalid minute durations
		{"invalid 7m", "7m", true},
		{"invalid 13m", "13m", true},
		{"invalid 45m", "45m", true},

		// Invalid hour durations
		{"invalid 5h", "5h", true},
		{"invalid 7h", "7h", true},

		// Sub-minute intervals are rejected
		{"invalid 30s", "30s", true},
		{"invalid 1s", "1s", true},

		// Valid cron expressions
		{"cron every 5 min", "*/5 * * * *", false},
		{"cron every 2 hours", "0 */2 * * *", false},
		{"cron weekday mornings", "0 9,17 * * 1-5", false},
		{"cron at midnight", "0 0 * * *", false},

		// Invalid cron expressions
		{"cron too few fields", "*/5 * * *", true},
		{"cron six fields", "*/30 * * * * *", true},
		{"cron 2 fields", "*/5 *", true},

		// Invalid format
		{"non-duration non-cron", "invalid", true},
		{"mixed units", "1h30m", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterval(tt.interval)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurationToCron(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     string
		wantErr  bool
	}{
		// Minutes
		{"1 minute", "1m", "*/1 * * * *", false},
		{"5 minutes", "5m", "*/5 * * * *", false},
		{"15 minutes", "15m", "*/15 * * * *", false},
		{"30 minutes", "30m", "*/30 * * * *", false},

		// Hours
		{"1 hour", "1h", "0 */1 * * *", false},
		{"2 hours", "2h", "0 */2 * * *", false},
		{"6 hours", "6h", "0 */6 * * *", false},
		{"24 hours", "24h", "0 */24 * * *", false},

		// Invalid
		{"7 minutes", "7m", "", true},
		{"45 minutes", "45m", "", true},
		{"5 hours", "5h", "", true},
		{"30 seconds", "30s", "", true},
		{"90 seconds", "90s", "", true},
		{"mixed units", "1h30m", "", true},
		{"non-duration", "invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := durationToCron(tt.duration)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCronExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"5-field cron", "*/5 * * * *", true},
		{"complex cron", "0 9,17 * * 1-5", true},
		{"6-field cron", "*/30 * * * * *", false},
		{"duration 5m", "5m", false},
		{"duration 1h", "1h", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCronExpression(tt.input))
		})
	}
}

func TestDescribeSchedule(t *testing.T) {
	brussels, err := time.LoadLocation("Europe/Brussels")
	require.NoError(t, err)

	tests := []struct {
		name     string
		interval string
		timezone *time.Location
		want     string
	}{
		{"30m UTC", "30m", time.UTC, "every 30m (clock-aligned, cron: */30 * * * *, UTC)"},
		{"1h UTC", "1h", time.UTC, "every 1h (clock-aligned, cron: 0 */1 * * *, UTC)"},
		{"1h Brussels", "1h", brussels, "every 1h (clock-aligned, cron: 0 */1 * * *, Europe/Brussels)"},
		{"cron UTC", "0 9,17 * * 1-5", time.UTC, "cron: 0 9,17 * * 1-5 (UTC)"},
		{"cron Brussels", "*/5 * * * *", brussels, "cron: */5 * * * * (Europe/Brussels)"},
		{"nil timezone defaults to UTC", "30m", nil, "every 30m (clock-aligned, cron: */30 * * * *, UTC)"},
		{"invalid duration", "7m", time.UTC, "invalid: 7m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeSchedule(tt.interval, tt.timezone))
		})
	}
}

func TestNewRejectsBadIntervals(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	tests := []struct {
		name     string
		interval string
	}{
		{"uneven duration", "7m"},
		{"sub-minute duration", "30s"},
		{"prose", "often"},
		{"out-of-range cron", "61 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), Config{Interval: tt.interval}, noop)
			assert.Error(t, err)
		})
	}
}

func TestNewStartStop(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	// RunImmediately is off, so nothing executes before the first half-hour
	// boundary and Stop comes long before that.
	s, err := New(context.Background(), Config{Interval: "30m"}, noop)
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}

func TestExpectedInterval(t *testing.T) {
	s := &Scheduler{interval: "30m"}
	d, err := s.ExpectedInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	s = &Scheduler{interval: "0 9,17 * * *"}
	d, err = s.ExpectedInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestGocronLoggerAdapter(t *testing.T) {
	adapter := newGocronLoggerAdapter(slog.Default())

	// The adapter must accept gocron's variadic key-value form without
	// panicking.
	adapter.Debug("debug message", "key", "value")
	adapter.Info("info message", "key", "value")
	adapter.Warn("warn message", "key", "value")
	adapter.Error("error message", "key", "value")
}
