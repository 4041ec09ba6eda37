// Package notify holds the transient in-app notices raised by reminder scans.
// Notices expire on their own after a fixed lifetime or can be dismissed early.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/medicine"
)

// DefaultTTL is how long a notice stays visible
const DefaultTTL = 10 * time.Second

// Notice is a single visible notification
type Notice struct {
	ID         string                `json:"id"`
	MedicineID int64                 `json:"medicineId"`
	Kind       medicine.ReminderKind `json:"kind"`
	Text       string                `json:"text"`
	CreatedAt  time.Time             `json:"createdAt"`
	ExpiresAt  time.Time             `json:"expiresAt"`
}

// Compile-time check to ensure Center implements Notifier
var _ interfaces.Notifier = (*Center)(nil)

// Center keeps the live notices. It is safe for concurrent use.
type Center struct {
	mu      sync.Mutex
	notices []Notice

	translator  interfaces.Translator
	ttl         time.Duration
	leadMinutes int
	now         func() time.Time
	onRaise     func(medicine.Reminder)
}

// Option configures a Center
type Option func(*Center)

// WithTTL overrides the notice lifetime
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLeadMinutes sets the minutes quoted in upcoming notices
func WithLeadMinutes(minutes int) Option {
	return func(c *Center) {
		if minutes > 0 {
			c.leadMinutes = minutes
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		c.now = now
	}
}

// WithRaiseHook registers a callback run for every raised notice
func WithRaiseHook(fn func(medicine.Reminder)) Option {
	return func(c *Center) {
		c.onRaise = fn
	}
}

// NewCenter creates an empty notice center
func NewCenter(translator interfaces.Translator, opts ...Option) *Center {
	c := &Center{
		translator:  translator,
		ttl:         DefaultTTL,
		leadMinutes: medicine.DefaultLeadMinutes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify raises a notice for a reminder match
func (c *Center) Notify(reminder medicine.Reminder) {
	var text string
	switch reminder.Kind {
	case medicine.ReminderUpcoming:
		text = c.translator.T(i18n.MsgUpcoming, c.leadMinutes, reminder.Name, reminder.Time)
	default:
		text = c.translator.T(i18n.MsgDue, reminder.Name)
	}

	now := c.now()
	notice := Notice{
		ID:         uuid.NewString(),
		MedicineID: reminder.MedicineID,
		Kind:       reminder.Kind,
		Text:       text,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.ttl),
	}

	c.mu.Lock()
	c.notices = append(c.notices, notice)
	c.mu.Unlock()

	logging.Info("Reminder raised",
		"medicine_id", reminder.MedicineID,
		"kind", string(reminder.Kind),
		"time", reminder.Time,
		"notice_id", notice.ID)

	if c.onRaise != nil {
		c.onRaise(reminder)
	}
}

// Active drops expired notices and returns the rest, oldest first
func (c *Center) Active() []Notice {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.notices[:0]
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.notices = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Dismiss removes a notice before it expires. It reports whether the
// notice was still live.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of stored notices, expired ones included until
// the next call to Active.
func (c *Center) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}
