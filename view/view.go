// Package view projects the record sequence into the displayed list. Build
// is pure: it reads the records and the instant it is given and nothing else.
package view

import (
	"time"

	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/medicine"
)

// Dose is one dose time of a card with its taken toggle
type Dose struct {
	Index int    `json:"index"`
	Time  string `json:"time"`
	Taken bool   `json:"taken"`
}

// Card is one visible medicine
type Card struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Dosage        string         `json:"dosage"`
	Doses         []Dose         `json:"doses"`
	StartDate     string         `json:"startDate"`
	Duration      int            `json:"duration"`
	State         medicine.State `json:"state"`
	RemainingDays int            `json:"remainingDays"`
	StartLabel    string         `json:"startLabel"`
	DurationLabel string         `json:"durationLabel"`
	Status        string         `json:"status"`
}

// List is the projected medicine list. When Cards is empty the page shows
// EmptyTitle and EmptyHint instead.
type List struct {
	Cards      []Card `json:"cards"`
	EmptyTitle string `json:"emptyTitle,omitempty"`
	EmptyHint  string `json:"emptyHint,omitempty"`
}

// Empty reports whether the placeholder is shown
func (l List) Empty() bool {
	return len(l.Cards) == 0
}

// Build drops deleted records and classifies the rest at now, keeping the
// stored order
func Build(records []medicine.Record, now time.Time, tr interfaces.Translator) List {
	list := List{Cards: make([]Card, 0, len(records))}

	for _, r := range records {
		if r.Deleted {
			continue
		}
		list.Cards = append(list.Cards, card(r, now, tr))
	}

	if list.Empty() {
		list.EmptyTitle = tr.T(i18n.MsgEmptyTitle)
		list.EmptyHint = tr.T(i18n.MsgEmptyHint)
	}
	return list
}

func card(r medicine.Record, now time.Time, tr interfaces.Translator) Card {
	progress := medicine.Progress(r, now)

	doses := make([]Dose, len(r.Times))
	for i, t := range r.Times {
		doses[i] = Dose{Index: i, Time: t, Taken: i < len(r.Taken) && r.Taken[i]}
	}

	status := tr.T(i18n.MsgCourseComplete)
	if !progress.Expired {
		status = tr.T(i18n.MsgDaysRemaining, progress.RemainingDays)
	}

	return Card{
		ID:            r.ID,
		Name:          r.Name,
		Dosage:        r.Dosage,
		Doses:         doses,
		StartDate:     r.StartDate,
		Duration:      r.Duration,
		State:         progress.State,
		RemainingDays: progress.RemainingDays,
		StartLabel:    tr.T(i18n.MsgStart, r.StartDate),
		DurationLabel: tr.T(i18n.MsgCourseDays, r.Duration),
		Status:        status,
	}
}
