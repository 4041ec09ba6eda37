package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/medreminder/config"
	"github.com/giygas/medreminder/data"
	"github.com/giygas/medreminder/handlers"
	"github.com/giygas/medreminder/health"
	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/metrics"
	"github.com/giygas/medreminder/notify"
	"github.com/giygas/medreminder/render"
	"github.com/giygas/medreminder/scheduler"
	"github.com/giygas/medreminder/server"
	"github.com/giygas/medreminder/tracker"
)

func main() {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(logging.Options{
		Dir:           cfg.LogDir,
		RetentionDays: cfg.LogRetentionDays,
		MaxFileSize:   cfg.MaxLogFileSize,
		Level:         logging.ParseLevel(cfg.LogLevel),
	})
	defer func() {
		if err := logging.Close(); err != nil {
			logging.Error("Failed to close log file", "error", err)
		}
	}()

	logging.Info("Configuration loaded",
		"env", cfg.Env,
		"locale", cfg.Locale,
		"timezone", cfg.Location.String(),
		"data_file", cfg.DataFile)

	if err := run(cfg); err != nil {
		logging.Error("Medicine reminder stopped with an error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	translator, err := i18n.New(cfg.Locale)
	if err != nil {
		return err
	}

	store, err := data.NewFileStore(cfg.DataFile)
	if err != nil {
		return err
	}

	clock := func() time.Time { return time.Now().In(cfg.Location) }

	notices := notify.NewCenter(translator,
		notify.WithTTL(cfg.NoticeTTL),
		notify.WithLeadMinutes(cfg.ReminderLead),
		notify.WithClock(clock),
		notify.WithRaiseHook(metrics.ObserveReminder),
	)

	trk, err := tracker.New(store,
		tracker.WithClock(clock),
		tracker.WithLocation(cfg.Location),
		tracker.WithNotifier(notices),
		tracker.WithTranslator(translator),
		tracker.WithLeadMinutes(cfg.ReminderLead),
		tracker.WithListener(metrics.StateListener{}),
	)
	if err != nil {
		return err
	}

	pages, err := render.New(translator, render.DefaultPollInterval)
	if err != nil {
		return err
	}

	checker := health.NewHealthChecker(trk, notices, cfg.CheckInterval)
	handler := handlers.NewHTTPHandler(trk, notices, pages, translator, checker)

	// The first tick applies a pending daily reset before anything is served
	sched := scheduler.NewScheduler(trk, cfg.CheckInterval, cfg.Location, trk.LastTick)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
