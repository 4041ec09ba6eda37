package medicine

import "time"

// ReminderKind tells an advance notice from the at-time notice
type ReminderKind string

const (
	ReminderUpcoming ReminderKind = "upcoming"
	ReminderDue      ReminderKind = "due"
)

// DefaultLeadMinutes is how long before a dose the upcoming notice fires
const DefaultLeadMinutes = 10

// Reminder is a single match produced by a reminder scan
type Reminder struct {
	MedicineID int64        `json:"medicineId"`
	Name       string       `json:"name"`
	Time       string       `json:"time"`
	Kind       ReminderKind `json:"kind"`
}

// DueReminders scans every visible, unexpired record for dose times matching
// the minute of now, either exactly or leadMinutes ahead. Matching is exact
// on the minute: a minute that is never scanned produces nothing.
func DueReminders(records []Record, now time.Time, leadMinutes int) []Reminder {
	current := ClockOf(now)
	var out []Reminder

	for _, r := range records {
		if r.Deleted || IsExpired(r, now) {
			continue
		}

		for _, t := range r.Times {
			if advance, err := SubtractMinutes(t, leadMinutes); err == nil && advance == current {
				out = append(out, Reminder{MedicineID: r.ID, Name: r.Name, Time: t, Kind: ReminderUpcoming})
			}
			if t == current {
				out = append(out, Reminder{MedicineID: r.ID, Name: r.Name, Time: t, Kind: ReminderDue})
			}
		}
	}

	return out
}

// NeedsReset reports whether the taken flags still belong to an earlier day
func NeedsReset(lastReset string, now time.Time) bool {
	return lastReset != DayOf(now)
}

// ResetTaken clears every taken flag of every record, deleted ones included.
// It reports whether any flag was set.
func ResetTaken(records []Record) bool {
	changed := false
	for i := range records {
		for j := range records[i].Taken {
			if records[i].Taken[j] {
				records[i].Taken[j] = false
				changed = true
			}
		}
	}
	return changed
}
