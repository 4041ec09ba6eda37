// Package health provides health checking functionality for the reminder service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/medreminder/interfaces"
)

// staleTicks is how many missed check intervals mark the scheduler as stalled
const staleTicks = 3

// NoticeCounter reports the number of stored notices
type NoticeCounter interface {
	Count() int
}

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	tracker       interfaces.Tracker
	notices       NoticeCounter
	checkInterval time.Duration
	startedAt     time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(tracker interfaces.Tracker, notices NoticeCounter, checkInterval time.Duration) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		tracker:       tracker,
		notices:       notices,
		checkInterval: checkInterval,
		startedAt:     tracker.Now(),
	}
}

// HealthCheck judges the service by how recently the scheduler ticked.
// Reminders and the daily reset depend on it, so a stalled tick is
// reported as unavailable.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.tracker.Now()
	lastTick := h.tracker.LastTick()
	tickAge := now.Sub(lastTick)

	switch {
	case lastTick.IsZero():
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case tickAge > staleTicks*h.checkInterval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	listed, deleted := 0, 0
	for _, r := range h.tracker.Records() {
		if r.Deleted {
			deleted++
		} else {
			listed++
		}
	}

	data = map[string]any{
		"medicines":      listed,
		"deleted":        deleted,
		"last_reset":     h.tracker.LastReset(),
		"uptime_seconds": math.Round(now.Sub(h.startedAt).Seconds()),
	}
	if !lastTick.IsZero() {
		data["last_tick"] = lastTick.Format(time.RFC3339)
		data["tick_age_seconds"] = math.Round(tickAge.Seconds()*10) / 10
	}
	if h.notices != nil {
		data["active_notices"] = h.notices.Count()
	}

	return status, data, httpStatus
}
