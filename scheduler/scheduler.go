// Package scheduler drives the periodic tick of the reminder: the daily reset
// of taken flags and the per-minute reminder scan. It runs one gocron job in
// singleton mode and watches that ticks keep happening.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/metrics"
)

// DefaultInterval matches the minute resolution of dose times
const DefaultInterval = time.Minute

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler runs a Ticker on a fixed interval
type Scheduler struct {
	ticker    interfaces.Ticker
	interval  time.Duration
	scheduler *gocron.Scheduler

	monitorEvery time.Duration
	lastTick     func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a scheduler for ticker. lastTick feeds the stall
// monitor and may be nil.
func NewScheduler(ticker interfaces.Ticker, interval time.Duration, loc *time.Location, lastTick func() time.Time) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if loc == nil {
		loc = time.Local
	}

	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	s.WaitForScheduleAll()

	return &Scheduler{
		ticker:       ticker,
		interval:     interval,
		scheduler:    s,
		monitorEvery: 10 * interval,
		lastTick:     lastTick,
		done:         make(chan struct{}),
	}
}

// Start runs one tick right away, so the daily reset applies before the first
// page is served, then schedules the rest
func (s *Scheduler) Start() error {
	if err := s.tick(); err != nil {
		logging.Error("Failed to perform initial tick", "error", err)
		return fmt.Errorf("initial tick failed: %w", err)
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.tick(); err != nil {
			logging.Error("Tick failed", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule ticks", "error", err)
		return fmt.Errorf("failed to schedule ticks: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "interval", s.interval.String())

	if s.lastTick != nil {
		s.startHealthMonitoring()
	}
	return nil
}

// Stop stops the scheduler and the stall monitor. It is safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.scheduler.Stop()
		close(s.done)
		logging.Info("Scheduler stopped")
	})
}

// tick runs the ticker with a deadline of one interval
func (s *Scheduler) tick() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	start := time.Now()
	err := s.ticker.Tick(ctx)
	metrics.ObserveTick(err)

	logging.Debug("Tick completed", "duration", time.Since(start).String(), "error", err)
	return err
}

// startHealthMonitoring warns when ticks stop arriving
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.monitorEvery)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if stale(s.lastTick(), time.Now(), s.interval) {
					logging.Warn("No tick in over three intervals", "last_tick", s.lastTick().Format(time.RFC3339))
				}
			}
		}
	}()
}

// stale reports whether lastTick is more than three intervals before now
func stale(lastTick, now time.Time, interval time.Duration) bool {
	return now.Sub(lastTick) > 3*interval
}
