// Package logging configures slog for the reminder: text to the console,
// JSON to a daily rotating file, plus an HTTP request logging middleware.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix         = "medreminder-"
	defaultRetention   = 14
	defaultMaxFileSize = 100 * 1024 * 1024
)

var numberedFile = regexp.MustCompile(`^medreminder-\d{4}-\d{2}-\d{2}_(\d{2})\.log$`)

// Options configures SetupLogger
type Options struct {
	Dir           string
	RetentionDays int
	MaxFileSize   int64
	Level         slog.Level
}

// DailyLogger is an io.Writer that starts a new file every calendar day and
// whenever the current file would exceed MaxFileSize.
type DailyLogger struct {
	dir         string
	retention   time.Duration
	maxFileSize int64
	now         func() time.Time

	mu          sync.Mutex
	file        *os.File
	day         string
	size        int64
	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// NewDailyLogger creates a rotating writer in dir. No file is opened until
// the first write.
func NewDailyLogger(dir string, retentionDays int, maxFileSize int64) *DailyLogger {
	if retentionDays <= 0 {
		retentionDays = defaultRetention
	}
	return &DailyLogger{
		dir:         dir,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
		cleanupDone: make(chan struct{}),
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Write writes p to the current file, rotating first if needed
func (dl *DailyLogger) Write(p []byte) (int, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	today := dayKey(dl.now())
	overflow := dl.maxFileSize > 0 && dl.size+int64(len(p)) > dl.maxFileSize

	if dl.file == nil || dl.day != today || overflow {
		if err := dl.rotate(today, overflow && dl.day == today); err != nil {
			return 0, err
		}
	}

	n, err := dl.file.Write(p)
	dl.size += int64(n)
	return n, err
}

// rotate opens the file for day; caller must hold the lock
func (dl *DailyLogger) rotate(day string, forceNew bool) error {
	if dl.file != nil {
		if err := dl.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		dl.file = nil
	}

	name := dl.pickFile(day, forceNew)
	path := filepath.Join(dl.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	dl.file = file
	dl.day = day
	dl.size = 0
	if info, err := file.Stat(); err == nil {
		dl.size = info.Size()
	}
	return nil
}

// pickFile returns the base file of the day while it has room, otherwise the
// next numbered file ("medreminder-2024-01-10_01.log").
func (dl *DailyLogger) pickFile(day string, forceNew bool) string {
	base := filePrefix + day + ".log"
	if !forceNew && !dl.full(filepath.Join(dl.dir, base)) {
		return base
	}

	matches, _ := filepath.Glob(filepath.Join(dl.dir, filePrefix+day+"_??.log"))
	highest := 0
	for _, m := range matches {
		sub := numberedFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		if n, _ := strconv.Atoi(sub[1]); n > highest {
			highest = n
		}
	}

	if highest > 0 {
		last := fmt.Sprintf("%s%s_%02d.log", filePrefix, day, highest)
		if !forceNew && !dl.full(filepath.Join(dl.dir, last)) {
			return last
		}
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, day, highest+1)
}

func (dl *DailyLogger) full(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return dl.maxFileSize > 0 && info.Size() >= dl.maxFileSize
}

// cleanupOldLogs removes log files not modified within the retention period
func (dl *DailyLogger) cleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(dl.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := dl.now().Add(-dl.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dl.dir, name)); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// startCleanup runs retention cleanup hourly until Close
func (dl *DailyLogger) startCleanup() {
	ctx, cancel := context.WithCancel(context.Background())
	dl.cancel = cancel

	go func() {
		defer close(dl.cleanupDone)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := dl.cleanupOldLogs(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to clean up old logs: %v\n", err)
				} else if n > 0 {
					// Console only, the file handler would recurse
					fmt.Printf("Cleaned up %d old log files\n", n)
				}
			}
		}
	}()
}

// Close stops background cleanup and closes the current file
func (dl *DailyLogger) Close() error {
	if dl.cancel != nil {
		dl.cancel()
		select {
		case <-dl.cleanupDone:
		case <-time.After(time.Second):
		}
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	return err
}

// SetupLogger builds a logger writing text to stdout and, when opts.Dir is
// usable, JSON to a DailyLogger. The returned DailyLogger is nil when file
// logging is off.
func SetupLogger(opts Options) (*slog.Logger, *DailyLogger) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: opts.Level,
	})

	if opts.Dir == "" {
		return slog.New(consoleHandler), nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory", "error", err)
		return logger, nil
	}

	maxSize := opts.MaxFileSize
	if maxSize == 0 {
		maxSize = defaultMaxFileSize
	}

	daily := NewDailyLogger(opts.Dir, opts.RetentionDays, maxSize)
	daily.startCleanup()

	fileHandler := slog.NewJSONHandler(daily, &slog.HandlerOptions{
		Level: opts.Level,
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), daily
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
