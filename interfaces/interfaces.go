// Package interfaces defines core abstractions for the medicine reminder
// so the core logic can be tested without storage, HTTP or a real clock.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/medreminder/medicine"
)

// Store defines the contract for the persisted key-value blob.
// Save replaces the whole sequence; there is no append or merge.
type Store interface {
	Load() ([]medicine.Record, error)
	Save(records []medicine.Record) error

	// LastReset returns the day of the last taken-flag reset, "" if never
	LastReset() (string, error)
	SetLastReset(day string) error
}

// Translator renders an untranslated message key in the user's locale
type Translator interface {
	T(key string, args ...any) string
	Lang() string
}

// Notifier receives reminder matches produced by a tick
type Notifier interface {
	Notify(reminder medicine.Reminder)
}

// Listener is told about every committed change of the record sequence.
// Records are a private copy the listener may keep.
type Listener interface {
	RecordsChanged(records []medicine.Record, now time.Time)
}

// Ticker is the periodic work run by the scheduler
type Ticker interface {
	Tick(ctx context.Context) error
}

// DeletePrompt is the staged two-step deletion shown to the user
type DeletePrompt struct {
	ID   int64
	Name string
}

// Ack is an acknowledgment shown after a command, as an untranslated key
type Ack struct {
	Key  string
	Args []any
}

// Tracker defines the command surface of the reminder state owner
type Tracker interface {
	Ticker

	Create(form medicine.Form) (medicine.Record, Ack, error)
	RequestDelete(id int64) (DeletePrompt, bool)
	PendingDelete() (DeletePrompt, bool)
	ConfirmDelete() (Ack, error)
	CancelDelete() Ack
	DismissDelete()
	Toggle(id int64, index int) (bool, error)
	ResetIfNewDay(now time.Time) (bool, error)
	CheckReminders(now time.Time) []medicine.Reminder

	Records() []medicine.Record
	Now() time.Time
	LastReset() string
	LastTick() time.Time
}

// Scheduler defines the contract for the periodic tick
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers
type HTTPHandler interface {
	// Page
	ServePage(w http.ResponseWriter, r *http.Request)
	CreateMedicine(w http.ResponseWriter, r *http.Request)
	RequestDelete(w http.ResponseWriter, r *http.Request)
	ConfirmDelete(w http.ResponseWriter, r *http.Request)
	CancelDelete(w http.ResponseWriter, r *http.Request)
	DismissDelete(w http.ResponseWriter, r *http.Request)
	ToggleDose(w http.ResponseWriter, r *http.Request)

	// JSON API
	ListMedicinesAPI(w http.ResponseWriter, r *http.Request)
	CreateMedicineAPI(w http.ResponseWriter, r *http.Request)
	ToggleDoseAPI(w http.ResponseWriter, r *http.Request)
	ListNotifications(w http.ResponseWriter, r *http.Request)
	DismissNotification(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}
