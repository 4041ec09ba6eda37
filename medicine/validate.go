package medicine

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Validation messages. They double as i18n catalog keys.
const (
	MsgTimeRequired    = "Enter at least one dose time"
	MsgNameRequired    = "Enter the medicine name"
	MsgStartRequired   = "Choose the course start date"
	MsgDurationInvalid = "Enter a valid course duration (at least 1 day)"
	MsgTimeFormat      = "Dose times must use the HH:MM format"
	MsgTooManyTimes    = "At most 4 dose times are allowed"
	MsgStartDateFormat = "Start date must use the YYYY-MM-DD format"
)

// Form is the raw input of the add form. Blank time slots are allowed.
type Form struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	StartDate string   `json:"startDate"`
	Duration  string   `json:"duration"`
	Times     []string `json:"times"`
}

// Draft is a validated form ready to become a Record
type Draft struct {
	Name      string
	Dosage    string
	Times     []string
	StartDate string
	Duration  int
}

// ValidationError rejects a submission. Message is an untranslated catalog key.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func reject(msg string) (Draft, error) {
	return Draft{}, &ValidationError{Message: msg}
}

// Validate checks a form in a fixed order and returns the first failure.
// Dosage is trimmed but left empty when blank; the caller supplies the placeholder.
func Validate(f Form) (Draft, error) {
	times := make([]string, 0, len(f.Times))
	for _, t := range f.Times {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		return reject(MsgTimeRequired)
	}

	name := norm.NFC.String(strings.TrimSpace(f.Name))
	if name == "" {
		return reject(MsgNameRequired)
	}

	start := strings.TrimSpace(f.StartDate)
	if start == "" {
		return reject(MsgStartRequired)
	}

	duration, err := strconv.Atoi(strings.TrimSpace(f.Duration))
	if err != nil || duration < 1 {
		return reject(MsgDurationInvalid)
	}

	for _, t := range times {
		if !ValidClock(t) {
			return reject(MsgTimeFormat)
		}
	}

	if len(times) > MaxDoseTimes {
		return reject(MsgTooManyTimes)
	}

	if _, err := time.Parse(DateLayout, start); err != nil {
		return reject(MsgStartDateFormat)
	}

	return Draft{
		Name:      name,
		Dosage:    norm.NFC.String(strings.TrimSpace(f.Dosage)),
		Times:     times,
		StartDate: start,
		Duration:  duration,
	}, nil
}
