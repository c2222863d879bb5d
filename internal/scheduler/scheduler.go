package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobFunc is the function signature for scheduled jobs
type JobFunc func(ctx context.Context) error

// Scheduler wraps gocron v2 and provides clock-aligned scheduling
type Scheduler struct {
	gocronScheduler gocron.Scheduler
	job             gocron.Job
	interval        string
	timezone        *time.Location
	runImmediately  bool
	logger          *slog.Logger
}

// Config holds scheduler configuration
type Config struct {
	Interval       string         // Duration (e.g., "30m") or 5-field cron expression (e.g., "*/30 * * * *")
	Timezone       *time.Location // Timezone for cron expressions (default: UTC)
	RunImmediately bool           // Execute immediately on start (default: true)
	Logger         *slog.Logger   // Logger for scheduler events
}

// cronPattern matches 5-field cron expressions. Sub-minute schedules are not
// supported; polling a rate-limited explorer API that often is pointless.
var cronPattern = regexp.MustCompile(`^(\S+\s+){4}\S+$`)

// New creates a scheduler running jobFunc on the configured interval.
// Durations are converted to clock-aligned cron expressions, so "30m" fires
// at :00 and :30 rather than 30 minutes after whenever the process started.
func New(ctx context.Context, cfg Config, jobFunc JobFunc) (*Scheduler, error) {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Scheduler{
		interval:       cfg.Interval,
		timezone:       cfg.Timezone,
		runImmediately: cfg.RunImmediately,
		logger:         cfg.Logger,
	}

	cronExpr := cfg.Interval
	if !isCronExpression(cfg.Interval) {
		var err error
		cronExpr, err = durationToCron(cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval: %w", err)
		}
		s.logger.Info("Converted duration to cron", "duration", cfg.Interval, "cron", cronExpr, "timezone", cfg.Timezone.String())
	}

	gocronScheduler, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Timezone),
		gocron.WithLogger(newGocronLoggerAdapter(cfg.Logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s.gocronScheduler = gocronScheduler

	job, err := gocronScheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			if err := jobFunc(ctx); err != nil {
				s.logger.Error("Job execution failed", "error", err)
			}
		}),
	)
	if err != nil {
		_ = gocronScheduler.Shutdown()
		return nil, fmt.Errorf("failed to create scheduled job: %w", err)
	}
	s.job = job

	return s, nil
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if s.runImmediately {
		s.logger.Info("Executing job immediately before starting scheduler")
		if err := s.job.RunNow(); err != nil {
			// Continue with scheduled execution regardless.
			s.logger.Error("Immediate execution failed", "error", err)
		}
	}

	s.gocronScheduler.Start()

	if nextRun, err := s.NextRun(); err == nil {
		s.logger.Info("Scheduler started", "next_run", nextRun.Format(time.RFC3339), "timezone", s.timezone.String())
	} else {
		s.logger.Info("Scheduler started")
	}

	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.gocronScheduler.Shutdown()
}

// NextRun returns the next scheduled run time
func (s *Scheduler) NextRun() (time.Time, error) {
	nextRun, err := s.job.NextRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get next run: %w", err)
	}
	return nextRun, nil
}

// LastRun returns the last run time
func (s *Scheduler) LastRun() (time.Time, error) {
	lastRun, err := s.job.LastRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last run: %w", err)
	}
	return lastRun, nil
}

// ExpectedInterval estimates the gap between executions, which the health
// checker uses to size its grace period. Cron expressions may be irregular
// ("0 9,17 * * *"), so they get a conservative default instead.
func (s *Scheduler) ExpectedInterval() (time.Duration, error) {
	if duration, err := time.ParseDuration(s.interval); err == nil {
		return duration, nil
	}
	return 5 * time.Minute, nil
}

// ValidateInterval checks a schedule interval (duration or cron expression).
// Empty is accepted; requiring an interval is the caller's concern.
func ValidateInterval(interval string) error {
	if interval == "" {
		return nil
	}
	if isCronExpression(interval) {
		// Field syntax is validated by gocron when the job is created.
		return nil
	}
	if len(strings.Fields(interval)) > 1 {
		return errors.New("cron expressions must have exactly 5 fields (minute hour day month weekday)")
	}
	_, err := durationToCron(interval)
	return err
}

// isCronExpression distinguishes cron expressions from durations
func isCronExpression(s string) bool {
	return cronPattern.MatchString(s)
}

// durationToCron converts a duration to a clock-aligned cron expression:
// "15m" becomes "*/15 * * * *", "2h" becomes "0 */2 * * *". Intervals must
// be whole minutes or hours and divide evenly into the hour or day, so every
// run lands on a predictable boundary.
func durationToCron(durationStr string) (string, error) {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		return "", fmt.Errorf("invalid duration format: %w", err)
	}

	switch {
	case duration < time.Minute:
		return "", fmt.Errorf("interval %s is below the one minute minimum", durationStr)

	case duration < time.Hour:
		if duration%time.Minute != 0 {
			return "", fmt.Errorf("interval must be whole minutes (got %s)", durationStr)
		}
		minutes := int(duration / time.Minute)
		if 60%minutes != 0 {
			return "", fmt.Errorf("minute intervals must divide evenly into 60 (got %dm)", minutes)
		}
		return fmt.Sprintf("*/%d * * * *", minutes), nil

	case duration%time.Hour == 0:
		hours := int(duration / time.Hour)
		if 24%hours != 0 {
			return "", fmt.Errorf("hour intervals must divide evenly into 24 (got %dh)", hours)
		}
		return fmt.Sprintf("0 */%d * * *", hours), nil

	default:
		return "", fmt.Errorf("interval must be whole minutes or hours (got %s)", durationStr)
	}
}

// DescribeSchedule renders a schedule for startup logs
func DescribeSchedule(interval string, timezone *time.Location) string {
	if timezone == nil {
		timezone = time.UTC
	}

	if isCronExpression(interval) {
		return fmt.Sprintf("cron: %s (%s)", interval, timezone.String())
	}

	cronExpr, err := durationToCron(interval)
	if err != nil {
		return fmt.Sprintf("invalid: %s", interval)
	}

	return fmt.Sprintf("every %s (clock-aligned, cron: %s, %s)", interval, cronExpr, timezone.String())
}

// gocronLoggerAdapter adapts slog.Logger to the gocron.Logger interface
type gocronLoggerAdapter struct {
	logger *slog.Logger
}

func newGocronLoggerAdapter(logger *slog.Logger) gocron.Logger {
	return &gocronLoggerAdapter{logger: logger}
}

func (a *gocronLoggerAdapter) Debug(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

func (a *gocronLoggerAdapter) Info(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

func (a *gocronLoggerAdapter) Warn(msg string, args ...any) {
	a.logger.Warn(msg, args...)
}

func (a *gocronLoggerAdapter) Error(msg string, args ...any) {
	a.logger.Error(msg, args...)
}
