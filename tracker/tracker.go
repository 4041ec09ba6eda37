// Package tracker owns the reminder state: the record sequence, the staged
// deletion, the daily reset marker and the per-minute reminder scan. Every
// command runs under one mutex and persists before it is committed in memory,
// so a failed save leaves both the store and the tracker unchanged.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/medicine"
)

// ErrNotFound is returned when a command names a medicine that isn't listed
var ErrNotFound = errors.New("medicine not found")

// minuteKey identifies a scanned minute
const minuteKey = "2006-01-02 15:04"

// Compile-time check to ensure Tracker implements the Tracker interface
var _ interfaces.Tracker = (*Tracker)(nil)

type Tracker struct {
	store       interfaces.Store
	translator  interfaces.Translator
	notifier    interfaces.Notifier
	listeners   []interfaces.Listener
	clock       func() time.Time
	location    *time.Location
	leadMinutes int

	mu          sync.Mutex
	records     []medicine.Record
	lastID      int64
	pending     *interfaces.DeletePrompt
	lastReset   string
	lastChecked string
	lastTick    time.Time
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now, for tests
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithLocation sets the location of "today" and of course start dates
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

// WithNotifier sets the receiver of reminder matches
func WithNotifier(n interfaces.Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithTranslator sets the translator used for the dosage placeholder
func WithTranslator(tr interfaces.Translator) Option {
	return func(t *Tracker) { t.translator = tr }
}

// WithLeadMinutes sets how long before a dose the upcoming reminder fires
func WithLeadMinutes(minutes int) Option {
	return func(t *Tracker) {
		if minutes > 0 {
			t.leadMinutes = minutes
		}
	}
}

// WithListener registers a listener for committed record changes
func WithListener(l interfaces.Listener) Option {
	return func(t *Tracker) { t.listeners = append(t.listeners, l) }
}

// New loads the persisted state from store
func New(store interfaces.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:       store,
		clock:       time.Now,
		location:    time.Local,
		leadMinutes: medicine.DefaultLeadMinutes,
	}
	for _, opt := range opts {
		opt(t)
	}

	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}
	lastReset, err := store.LastReset()
	if err != nil {
		return nil, fmt.Errorf("failed to load reset marker: %w", err)
	}

	t.records = records
	t.lastReset = lastReset
	for _, r := range records {
		if r.ID > t.lastID {
			t.lastID = r.ID
		}
	}

	logging.Info("Medicines loaded", "count", len(records), "last_reset", lastReset)
	t.changed(records, t.Now())
	return t, nil
}

// Now returns the current time in the tracker's location
func (t *Tracker) Now() time.Time {
	return t.clock().In(t.location)
}

// Records returns a copy of every record, deleted ones included
func (t *Tracker) Records() []medicine.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return medicine.CloneAll(t.records)
}

// LastReset returns the day of the last reset, "" if never
func (t *Tracker) LastReset() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastReset
}

// LastTick returns when Tick last ran, zero if never
func (t *Tracker) LastTick() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTick
}

// Create validates form and appends a new record
func (t *Tracker) Create(form medicine.Form) (medicine.Record, interfaces.Ack, error) {
	draft, err := medicine.Validate(form)
	if err != nil {
		return medicine.Record{}, interfaces.Ack{}, err
	}
	if draft.Dosage == "" {
		draft.Dosage = t.text(i18n.MsgDosagePlaceholder)
	}

	now := t.Now()

	t.mu.Lock()
	record := medicine.NewRecord(t.nextID(now), draft)
	next := append(medicine.CloneAll(t.records), record)
	if err := t.store.Save(next); err != nil {
		t.mu.Unlock()
		return medicine.Record{}, interfaces.Ack{}, fmt.Errorf("failed to save new medicine: %w", err)
	}
	t.records = next
	t.lastID = record.ID
	snapshot := medicine.CloneAll(next)
	t.mu.Unlock()

	logging.Info("Medicine added", "id", record.ID, "doses", len(record.Times), "duration", record.Duration)
	t.changed(snapshot, now)
	return record.Clone(), interfaces.Ack{Key: i18n.MsgAdded}, nil
}

// nextID derives an id from the creation instant, bumped past the last
// issued id so ids stay unique and increasing; caller must hold the lock
func (t *Tracker) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	return id
}

// RequestDelete stages a listed medicine for deletion. It reports false and
// stages nothing when id is unknown or already deleted.
func (t *Tracker) RequestDelete(id int64) (interfaces.DeletePrompt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := medicine.Find(t.records, id)
	if i < 0 || t.records[i].Deleted {
		return interfaces.DeletePrompt{}, false
	}

	prompt := interfaces.DeletePrompt{ID: id, Name: t.records[i].Name}
	t.pending = &prompt
	return prompt, true
}

// PendingDelete returns the staged deletion, if any
func (t *Tracker) PendingDelete() (interfaces.DeletePrompt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		return interfaces.DeletePrompt{}, false
	}
	return *t.pending, true
}

// ConfirmDelete soft-deletes the staged medicine. The staged id is cleared
// whether or not the save succeeds.
func (t *Tracker) ConfirmDelete() (interfaces.Ack, error) {
	now := t.Now()

	t.mu.Lock()
	pending := t.pending
	t.pending = nil

	if pending == nil {
		t.mu.Unlock()
		return interfaces.Ack{}, nil
	}

	i := medicine.Find(t.records, pending.ID)
	if i < 0 || t.records[i].Deleted {
		t.mu.Unlock()
		return interfaces.Ack{}, nil
	}

	next := medicine.CloneAll(t.records)
	next[i].Deleted = true
	if err := t.store.Save(next); err != nil {
		t.mu.Unlock()
		return interfaces.Ack{}, fmt.Errorf("failed to save deletion: %w", err)
	}
	t.records = next
	name := next[i].Name
	snapshot := medicine.CloneAll(next)
	t.mu.Unlock()

	logging.Info("Medicine deleted", "id", pending.ID)
	t.changed(snapshot, now)
	return interfaces.Ack{Key: i18n.MsgDeleted, Args: []any{name}}, nil
}

// CancelDelete clears the staged deletion with an acknowledgment
func (t *Tracker) CancelDelete() interfaces.Ack {
	t.DismissDelete()
	return interfaces.Ack{Key: i18n.MsgDeleteCancelled}
}

// DismissDelete clears the staged deletion silently
func (t *Tracker) DismissDelete() {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
}

// Toggle flips the taken flag of one dose. It returns ErrNotFound for an
// unknown medicine and (false, nil) for an index outside the dose list.
func (t *Tracker) Toggle(id int64, index int) (bool, error) {
	now := t.Now()

	t.mu.Lock()
	i := medicine.Find(t.records, id)
	if i < 0 {
		t.mu.Unlock()
		return false, ErrNotFound
	}

	next := medicine.CloneAll(t.records)
	if !next[i].Toggle(index) {
		t.mu.Unlock()
		return false, nil
	}
	if err := t.store.Save(next); err != nil {
		t.mu.Unlock()
		return false, fmt.Errorf("failed to save dose: %w", err)
	}
	t.records = next
	taken := next[i].Taken[index]
	snapshot := medicine.CloneAll(next)
	t.mu.Unlock()

	logging.Debug("Dose toggled", "id", id, "index", index, "taken", taken)
	t.changed(snapshot, now)
	return true, nil
}

// ResetIfNewDay clears every taken flag once per calendar day. Records are
// only saved when a flag was actually set; the marker is always saved on a
// new day. It reports whether a reset ran.
func (t *Tracker) ResetIfNewDay(now time.Time) (bool, error) {
	now = now.In(t.location)
	today := medicine.DayOf(now)

	t.mu.Lock()
	if !medicine.NeedsReset(t.lastReset, now) {
		t.mu.Unlock()
		return false, nil
	}

	next := medicine.CloneAll(t.records)
	changed := medicine.ResetTaken(next)
	if changed {
		if err := t.store.Save(next); err != nil {
			t.mu.Unlock()
			return false, fmt.Errorf("failed to save reset: %w", err)
		}
		t.records = next
	}
	if err := t.store.SetLastReset(today); err != nil {
		t.mu.Unlock()
		return false, fmt.Errorf("failed to save reset marker: %w", err)
	}
	previous := t.lastReset
	t.lastReset = today
	snapshot := medicine.CloneAll(t.records)
	t.mu.Unlock()

	logging.Info("Daily reset", "day", today, "previous", previous, "flags_cleared", changed)
	if changed {
		t.changed(snapshot, now)
	}
	return true, nil
}

// CheckReminders scans the minute of now once and hands every match to the
// notifier. A second call within the same minute returns nil.
func (t *Tracker) CheckReminders(now time.Time) []medicine.Reminder {
	now = now.In(t.location)
	key := now.Format(minuteKey)

	t.mu.Lock()
	if key == t.lastChecked {
		t.mu.Unlock()
		return nil
	}
	t.lastChecked = key
	matches := medicine.DueReminders(t.records, now, t.leadMinutes)
	t.mu.Unlock()

	if t.notifier != nil {
		for _, m := range matches {
			t.notifier.Notify(m)
		}
	}
	return matches
}

// Tick runs the daily reset and the reminder scan for the current minute
func (t *Tracker) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := t.Now()
	_, resetErr := t.ResetIfNewDay(now)
	if resetErr != nil {
		logging.Error("Daily reset failed", "error", resetErr)
	}
	t.CheckReminders(now)

	t.mu.Lock()
	t.lastTick = now
	t.mu.Unlock()

	return resetErr
}

func (t *Tracker) changed(records []medicine.Record, now time.Time) {
	for _, l := range t.listeners {
		l.RecordsChanged(medicine.CloneAll(records), now)
	}
}

func (t *Tracker) text(key string, args ...any) string {
	if t.translator == nil {
		return fmt.Sprintf(key, args...)
	}
	return t.translator.T(key, args...)
}
