package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger probes the upstream data source. *etherscan.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker performs health checks for watch mode: upstream API reachability
// and whether analysis runs happen on schedule.
type Checker struct {
	source   Pinger
	interval time.Duration

	mu             sync.RWMutex
	lastRunTime    time.Time
	lastRunSuccess bool
}

// NewChecker creates a health checker. interval is the expected gap between
// analysis runs.
func NewChecker(source Pinger, interval time.Duration) *Checker {
	return &Checker{
		source:   source,
		interval: interval,
	}
}

// UpdateLastRun records the timestamp and outcome of the latest analysis run
func (c *Checker) UpdateLastRun(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRunTime = time.Now()
	c.lastRunSuccess = success
}

// CheckStatus represents the health status of a component
type CheckStatus string

const (
	StatusOK       CheckStatus = "ok"
	StatusDegraded CheckStatus = "degraded"
	StatusError    CheckStatus = "error"
)

// Response is the JSON body of the health endpoint
type Response struct {
	Status    CheckStatus            `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckDetail `json:"checks"`
	Uptime    string                 `json:"uptime,omitempty"`
}

// CheckDetail contains details about a specific health check
type CheckDetail struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

var startTime = time.Now()

// Check performs all health checks and returns the aggregated status.
// An unreachable explorer API is an error; runs off schedule only degrade,
// since the next tick may well recover on its own.
func (c *Checker) Check(ctx context.Context) Response {
	checks := make(map[string]CheckDetail)
	overallStatus := StatusOK

	sourceCheck := c.checkSource(ctx)
	checks["explorer_api"] = sourceCheck
	if sourceCheck.Status != StatusOK {
		overallStatus = StatusError
	}

	runsCheck := c.checkRuns()
	checks["analysis_runs"] = runsCheck
	if runsCheck.Status != StatusOK && overallStatus == StatusOK {
		overallStatus = StatusDegraded
	}

	return Response{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    checks,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
}

// checkSource verifies the explorer API answers
func (c *Checker) checkSource(ctx context.Context) CheckDetail {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := c.source.Ping(ctx); err != nil {
		slog.Error("Health check: explorer API unreachable", "error", err)
		return CheckDetail{
			Status:  StatusError,
			Message: "explorer API unreachable: " + err.Error(),
		}
	}

	return CheckDetail{
		Status:  StatusOK,
		Message: "explorer API responding",
	}
}

// checkRuns verifies analysis runs happen at the expected interval
func (c *Checker) checkRuns() CheckDetail {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Never having run is fine, the process may just have started.
	if c.lastRunTime.IsZero() {
		return CheckDetail{
			Status:  StatusOK,
			Message: "no run completed yet (startup)",
		}
	}

	if !c.lastRunSuccess {
		return CheckDetail{
			Status:  StatusDegraded,
			Message: "last run failed",
		}
	}

	// Allow a 2x interval grace period before flagging.
	timeSinceLastRun := time.Since(c.lastRunTime)
	if timeSinceLastRun > c.interval*2 {
		return CheckDetail{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("no run in %s (expected every %s)", timeSinceLastRun.Round(time.Second), c.interval),
		}
	}

	return CheckDetail{
		Status:  StatusOK,
		Message: fmt.Sprintf("last run %s ago", timeSinceLastRun.Round(time.Second)),
	}
}

// Router returns the HTTP handler serving the health endpoint
func (c *Checker) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", c.handleHealth)
	return r
}

func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := c.Check(r.Context())

	statusCode := http.StatusOK
	if status.Status == StatusError {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}
