// Package render turns the projected medicine list, the add form, the
// delete prompt and live notices into the HTML page. Templates are embedded
// in the binary.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/medicine"
	"github.com/giygas/medreminder/notify"
	"github.com/giygas/medreminder/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultPollInterval is how often the page asks for new notices
const DefaultPollInterval = 5 * time.Second

// Form is the state of the add form
type Form struct {
	Open      bool
	Name      string
	Dosage    string
	StartDate string
	Duration  string
	Times     []string
	Error     string
}

// NewForm returns a freshly opened form: no dose times, start date today
func NewForm(now time.Time) Form {
	return Form{
		Open:      true,
		StartDate: medicine.DayOf(now),
		Times:     make([]string, medicine.MaxDoseTimes),
	}
}

// RefillForm reopens the form with a rejected submission and its message
func RefillForm(f medicine.Form, message string) Form {
	times := make([]string, medicine.MaxDoseTimes)
	copy(times, f.Times)

	return Form{
		Open:      true,
		Name:      f.Name,
		Dosage:    f.Dosage,
		StartDate: f.StartDate,
		Duration:  f.Duration,
		Times:     times,
		Error:     message,
	}
}

// Page is everything shown on one render. Ack, Prompt and Form.Error are
// already translated.
type Page struct {
	List    view.List
	Form    Form
	Ack     string
	Prompt  string
	Notices []notify.Notice
}

type pageData struct {
	Page
	Lang       string
	PollMillis int64
}

// Renderer executes the page template in one locale
type Renderer struct {
	tmpl         *template.Template
	lang         string
	pollInterval time.Duration
}

// New parses the embedded templates with tr as the "t" function
func New(tr interfaces.Translator, pollInterval time.Duration) (*Renderer, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	funcs := template.FuncMap{
		"t":   func(key string) string { return tr.T(key) },
		"inc": func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl, lang: tr.Lang(), pollInterval: pollInterval}, nil
}

// Render executes the page into a buffer so a template failure never leaves
// a half-written response
func (r *Renderer) Render(p Page) ([]byte, error) {
	data := pageData{
		Page:       p,
		Lang:       r.lang,
		PollMillis: r.pollInterval.Milliseconds(),
	}
	if data.Form.Times == nil {
		data.Form.Times = make([]string, medicine.MaxDoseTimes)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders p and writes it with the given status
func (r *Renderer) Write(w http.ResponseWriter, status int, p Page) error {
	body, err := r.Render(p)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
