package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/medicine"
	"github.com/giygas/medreminder/notify"
	"github.com/giygas/medreminder/view"
)

func newRenderer(t *testing.T, locale string) (*Renderer, *i18n.Translator) {
	t.Helper()
	tr, err := i18n.New(locale)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r, err := New(tr, 0)
	if err != nil {
		t.Fatalf("Unexpected error parsing templates: %v", err)
	}
	return r, tr
}

func render(t *testing.T, r *Renderer, p Page) string {
	t.Helper()
	body, err := r.Render(p)
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}
	return string(body)
}

func TestRenderEmptyState(t *testing.T) {
	r, tr := newRenderer(t, "en")
	list := view.Build(nil, time.Now(), tr)

	html := render(t, r, Page{List: list})

	for _, want := range []string{
		`<html lang="en">`,
		"No medicines added yet",
		"Use the button above to add one",
		`href="/?form=open"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(html, `action="/medicines"`) {
		t.Error("Expected closed form not rendered")
	}
}

func TestRenderCards(t *testing.T) {
	r, tr := newRenderer(t, "en")
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	records := []medicine.Record{
		{ID: 42, Name: "Aspirin", Dosage: "100mg", Times: []string{"08:00", "20:00"}, Taken: []bool{true, false}, StartDate: "2024-01-01", Duration: 5},
		{ID: 43, Name: "Hidden", Times: []string{"08:00"}, Taken: []bool{false}, StartDate: "2024-01-01", Duration: 5, Deleted: true},
	}

	html := render(t, r, Page{List: view.Build(records, now, tr)})

	for _, want := range []string{
		"Aspirin",
		"100mg",
		`action="/medicines/42/doses/0/toggle"`,
		`action="/medicines/42/doses/1/toggle"`,
		`class="dose taken"`,
		`action="/medicines/42/delete"`,
		"5 days remaining",
		"Course: 5 days",
		`class="card active"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(html, "Hidden") {
		t.Error("Expected deleted medicine not rendered")
	}
}

func TestRenderEscapesNames(t *testing.T) {
	r, tr := newRenderer(t, "en")
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	records := []medicine.Record{
		{ID: 1, Name: "<script>alert(1)</script>", Times: []string{"08:00"}, Taken: []bool{false}, StartDate: "2024-01-01", Duration: 5},
	}

	html := render(t, r, Page{List: view.Build(records, now, tr)})
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("Expected medicine name to be escaped")
	}
}

func TestRenderOpenForm(t *testing.T) {
	r, _ := newRenderer(t, "en")
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	html := render(t, r, Page{Form: NewForm(now)})

	for _, want := range []string{
		`action="/medicines"`,
		`value="2024-03-15"`,
		`name="time1"`,
		`name="time4"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected form to contain %q", want)
		}
	}
	if strings.Contains(html, `href="/?form=open"`) {
		t.Error("Expected add button hidden while the form is open")
	}
}

func TestRenderRefilledForm(t *testing.T) {
	r, _ := newRenderer(t, "en")
	submitted := medicine.Form{Name: "Aspirin", Dosage: "100mg", StartDate: "2024-01-01", Duration: "0", Times: []string{"08:00"}}

	html := render(t, r, Page{Form: RefillForm(submitted, medicine.MsgDurationInvalid)})

	for _, want := range []string{
		`value="Aspirin"`,
		`value="100mg"`,
		`value="08:00"`,
		`value="0"`,
		"Enter a valid course duration (at least 1 day)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected refilled form to contain %q", want)
		}
	}
}

func TestRenderPromptAndAck(t *testing.T) {
	r, tr := newRenderer(t, "en")

	html := render(t, r, Page{
		Prompt: tr.T(i18n.MsgConfirmDelete, "Aspirin"),
		Ack:    tr.T(i18n.MsgDeleteCancelled),
	})

	for _, want := range []string{
		`Delete medicine &#34;Aspirin&#34;?`,
		`action="/delete/confirm"`,
		`action="/delete/cancel"`,
		`action="/delete/dismiss"`,
		"Deletion cancelled",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestRenderNotices(t *testing.T) {
	r, _ := newRenderer(t, "en")
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	html := render(t, r, Page{Notices: []notify.Notice{{
		ID:        "abc",
		Kind:      medicine.ReminderDue,
		Text:      "Time to take: Aspirin",
		CreatedAt: created,
		ExpiresAt: created.Add(10 * time.Second),
	}}})

	for _, want := range []string{
		`data-id="abc"`,
		`class="notice due"`,
		"Time to take: Aspirin",
		"/api/notifications",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestRenderRussian(t *testing.T) {
	r, tr := newRenderer(t, "ru")
	html := render(t, r, Page{List: view.Build(nil, time.Now(), tr)})

	for _, want := range []string{`<html lang="ru">`, "Нет добавленных лекарств", "Добавить лекарство"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestWrite(t *testing.T) {
	r, tr := newRenderer(t, "en")
	rec := httptest.NewRecorder()

	if err := r.Write(rec, http.StatusUnprocessableEntity, Page{List: view.Build(nil, time.Now(), tr)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", ct)
	}
}
