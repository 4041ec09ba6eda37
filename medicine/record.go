// Package medicine holds the pure core of the reminder: medicine records,
// form validation, course classification, the daily reset and reminder
// matching. Nothing in this package touches storage, the clock or HTTP.
package medicine

const (
	// MaxDoseTimes is the number of time inputs offered by the add form
	MaxDoseTimes = 4

	// DateLayout is the layout of start dates and reset markers
	DateLayout = "2006-01-02"

	// ClockLayout is the layout of dose times
	ClockLayout = "15:04"
)

// Record is one medicine course as persisted in the store.
// Taken is aligned positionally with Times.
type Record struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Times     []string `json:"times"`
	StartDate string   `json:"startDate"`
	Duration  int      `json:"duration"`
	Taken     []bool   `json:"taken"`
	Deleted   bool     `json:"deleted"`
}

// NewRecord builds a record from a validated draft with every dose untaken
func NewRecord(id int64, d Draft) Record {
	times := make([]string, len(d.Times))
	copy(times, d.Times)

	return Record{
		ID:        id,
		Name:      d.Name,
		Dosage:    d.Dosage,
		Times:     times,
		StartDate: d.StartDate,
		Duration:  d.Duration,
		Taken:     make([]bool, len(times)),
	}
}

// Clone returns a deep copy so callers can't alias the owner's slices
func (r Record) Clone() Record {
	c := r
	c.Times = append([]string(nil), r.Times...)
	c.Taken = append([]bool(nil), r.Taken...)
	return c
}

// Toggle flips the taken flag of one dose. Out of range indexes are ignored.
func (r *Record) Toggle(index int) bool {
	if index < 0 || index >= len(r.Taken) {
		return false
	}
	r.Taken[index] = !r.Taken[index]
	return true
}

// Normalize repairs a record read from storage so that Taken has the
// same length as Times.
func (r *Record) Normalize() {
	if len(r.Taken) == len(r.Times) {
		return
	}
	taken := make([]bool, len(r.Times))
	copy(taken, r.Taken)
	r.Taken = taken
}

// CloneAll deep-copies a record sequence
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}

// Find returns the index of the record with the given id, or -1
func Find(records []Record, id int64) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
