package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medreminder/data"
	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/medicine"
	"github.com/giygas/medreminder/notify"
	"github.com/giygas/medreminder/render"
	"github.com/giygas/medreminder/tracker"
)

// mockHealthChecker returns a fixed result
type mockHealthChecker struct {
	status string
	code   int
}

func (m mockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, map[string]any{"medicines": 0}, m.code
}

// readOnlyStore fails every write
type readOnlyStore struct {
	*data.MemoryStore
}

func (readOnlyStore) Save([]medicine.Record) error { return errors.New("read-only") }

type testEnv struct {
	router  chi.Router
	tracker *tracker.Tracker
	store   *data.MemoryStore
	notices *notify.Center
}

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := data.NewMemoryStore()
	env := newTestEnvWithStore(t, store)
	env.store = store
	return env
}

func newTestEnvWithStore(t *testing.T, store interfaces.Store) *testEnv {
	t.Helper()

	tr, err := i18n.New("en")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	clock := func() time.Time { return testNow }

	trk, err := tracker.New(store, tracker.WithClock(clock), tracker.WithLocation(time.UTC), tracker.WithTranslator(tr))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	center := notify.NewCenter(tr, notify.WithClock(clock))
	pages, err := render.New(tr, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	h := NewHTTPHandler(trk, center, pages, tr, mockHealthChecker{status: "healthy", code: http.StatusOK})

	r := chi.NewRouter()
	r.Get("/", h.ServePage)
	r.Post("/medicines", h.CreateMedicine)
	r.Post("/medicines/{id}/delete", h.RequestDelete)
	r.Post("/medicines/{id}/doses/{index}/toggle", h.ToggleDose)
	r.Post("/delete/confirm", h.ConfirmDelete)
	r.Post("/delete/cancel", h.CancelDelete)
	r.Post("/delete/dismiss", h.DismissDelete)
	r.Get("/api/medicines", h.ListMedicinesAPI)
	r.Post("/api/medicines", h.CreateMedicineAPI)
	r.Post("/api/medicines/{id}/doses/{index}/toggle", h.ToggleDoseAPI)
	r.Get("/api/notifications", h.ListNotifications)
	r.Delete("/api/notifications/{id}", h.DismissNotification)
	r.Get("/health", h.HealthCheck)

	return &testEnv{router: r, tracker: trk, notices: center}
}

func (e *testEnv) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(target string, form url.Values) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

func aspirinForm() url.Values {
	return url.Values{
		"name":      {"Aspirin"},
		"dosage":    {"100mg"},
		"startDate": {"2024-01-01"},
		"duration":  {"5"},
		"time1":     {"08:00"},
		"time2":     {""},
		"time3":     {"20:00"},
	}
}

func (e *testEnv) createAspirin(t *testing.T) medicine.Record {
	t.Helper()
	rec := e.post("/medicines", aspirinForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 creating medicine, got %d", rec.Code)
	}
	records := e.tracker.Records()
	return records[len(records)-1]
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Errorf("Expected body not to contain %q", u)
		}
	}
}

func TestServePage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "No medicines added yet", `href="/?form=open"`)
	assertNotContains(t, rec.Body.String(), `action="/medicines"`)
}

func TestServePageFormOpen(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/?form=open", "", "")
	assertContains(t, rec.Body.String(), `action="/medicines"`, `value="2024-01-01"`)
}

func TestCreateMedicine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/medicines", aspirinForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, "Medicine added!", "Aspirin", "100mg", "08:00", "20:00")
	assertNotContains(t, body, `action="/medicines"`)

	stored, _ := env.store.Load()
	if len(stored) != 1 || len(stored[0].Times) != 2 {
		t.Errorf("Expected one record with two times, got %+v", stored)
	}
}

func TestCreateMedicineRejected(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(url.Values)
		message string
	}{
		{"no times", func(v url.Values) { v.Set("time1", ""); v.Set("time3", "") }, "Enter at least one dose time"},
		{"no name", func(v url.Values) { v.Set("name", "  ") }, "Enter the medicine name"},
		{"no start", func(v url.Values) { v.Set("startDate", "") }, "Choose the course start date"},
		{"zero duration", func(v url.Values) { v.Set("duration", "0") }, "Enter a valid course duration (at least 1 day)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			form := aspirinForm()
			tt.edit(form)

			rec := env.post("/medicines", form)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("Expected 422, got %d", rec.Code)
			}
			assertContains(t, rec.Body.String(), tt.message, `action="/medicines"`)

			if stored, _ := env.store.Load(); len(stored) != 0 {
				t.Errorf("Expected nothing stored, got %d records", len(stored))
			}
		})
	}
}

func TestCreateMedicineKeepsValuesOnError(t *testing.T) {
	env := newTestEnv(t)
	form := aspirinForm()
	form.Set("duration", "abc")

	rec := env.post("/medicines", form)
	assertContains(t, rec.Body.String(), `value="Aspirin"`, `value="100mg"`, `value="08:00"`, `value="abc"`)
}

func TestCreateMedicineStoreFailure(t *testing.T) {
	env := newTestEnvWithStore(t, readOnlyStore{data.NewMemoryStore()})

	rec := env.post("/medicines", aspirinForm())
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestDeleteFlow(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	rec := env.post(fmt.Sprintf("/medicines/%d/delete", med.ID), nil)
	assertContains(t, rec.Body.String(), `Delete medicine &#34;Aspirin&#34;?`, `action="/delete/confirm"`)

	rec = env.post("/delete/confirm", nil)
	body := rec.Body.String()
	assertContains(t, body, `Medicine &#34;Aspirin&#34; deleted!`, "No medicines added yet")
	assertNotContains(t, body, `action="/delete/confirm"`)

	stored, _ := env.store.Load()
	if len(stored) != 1 || !stored[0].Deleted {
		t.Errorf("Expected soft delete, got %+v", stored)
	}
}

func TestDeleteCancel(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	env.post(fmt.Sprintf("/medicines/%d/delete", med.ID), nil)
	rec := env.post("/delete/cancel", nil)

	assertContains(t, rec.Body.String(), "Deletion cancelled", "Aspirin")
	assertNotContains(t, rec.Body.String(), `action="/delete/confirm"`)
}

func TestDeleteDismiss(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	env.post(fmt.Sprintf("/medicines/%d/delete", med.ID), nil)
	rec := env.post("/delete/dismiss", nil)

	assertNotContains(t, rec.Body.String(), `action="/delete/confirm"`, "Deletion cancelled")
	if env.tracker.Records()[0].Deleted {
		t.Error("Expected medicine kept")
	}
}

func TestDeleteUnknownID(t *testing.T) {
	env := newTestEnv(t)
	env.createAspirin(t)

	for _, target := range []string{"/medicines/999/delete", "/medicines/abc/delete"} {
		rec := env.post(target, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
		}
		assertNotContains(t, rec.Body.String(), `action="/delete/confirm"`)
	}
}

func TestToggleDose(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	rec := env.post(fmt.Sprintf("/medicines/%d/doses/1/toggle", med.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), `class="dose taken"`)

	taken := env.tracker.Records()[0].Taken
	if taken[0] || !taken[1] {
		t.Errorf("Expected only dose 1 taken, got %v", taken)
	}
}

func TestToggleDoseMisses(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	for _, target := range []string{
		"/medicines/999/doses/0/toggle",
		fmt.Sprintf("/medicines/%d/doses/7/toggle", med.ID),
		fmt.Sprintf("/medicines/%d/doses/x/toggle", med.ID),
	} {
		if rec := env.post(target, nil); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
		}
	}

	for _, taken := range env.tracker.Records()[0].Taken {
		if taken {
			t.Error("Expected no flag changed")
		}
	}
}

func TestListMedicinesAPI(t *testing.T) {
	env := newTestEnv(t)
	env.createAspirin(t)

	rec := env.do(http.MethodGet, "/api/medicines", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var list struct {
		Cards []struct {
			Name   string `json:"name"`
			State  string `json:"state"`
			Status string `json:"status"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(list.Cards) != 1 || list.Cards[0].Name != "Aspirin" || list.Cards[0].State != "active" {
		t.Errorf("Unexpected list %+v", list)
	}
}

func TestCreateMedicineAPI(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantText string
	}{
		{
			name:     "valid",
			body:     `{"name":"Aspirin","dosage":"","startDate":"2024-01-01","duration":"5","times":["08:00"]}`,
			wantCode: http.StatusCreated,
			wantText: "Medicine added!",
		},
		{
			name:     "validation failure",
			body:     `{"name":"Aspirin","startDate":"2024-01-01","duration":"5","times":[]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantText: "Enter at least one dose time",
		},
		{
			name:     "bad time format",
			body:     `{"name":"Aspirin","startDate":"2024-01-01","duration":"5","times":["8am"]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantText: "Dose times must use the HH:MM format",
		},
		{
			name:     "malformed json",
			body:     `{"name":`,
			wantCode: http.StatusBadRequest,
			wantText: "Invalid JSON body",
		},
		{
			name:     "unknown field",
			body:     `{"name":"Aspirin","color":"red"}`,
			wantCode: http.StatusBadRequest,
			wantText: "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPost, "/api/medicines", tt.body, "application/json")

			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			assertContains(t, rec.Body.String(), tt.wantText)
		})
	}
}

func TestCreateMedicineAPIPlaceholderDosage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/medicines",
		`{"name":"Aspirin","startDate":"2024-01-01","duration":"5","times":["08:00"]}`, "application/json")

	var resp struct {
		Medicine medicine.Record `json:"medicine"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.Medicine.Dosage != "Not specified" {
		t.Errorf("Expected placeholder dosage, got %q", resp.Medicine.Dosage)
	}
}

func TestToggleDoseAPI(t *testing.T) {
	env := newTestEnv(t)
	med := env.createAspirin(t)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBody string
	}{
		{"toggles", fmt.Sprintf("/api/medicines/%d/doses/0/toggle", med.ID), http.StatusOK, `"changed":true`},
		{"index out of range", fmt.Sprintf("/api/medicines/%d/doses/9/toggle", med.ID), http.StatusOK, `"changed":false`},
		{"unknown medicine", "/api/medicines/999/doses/0/toggle", http.StatusNotFound, "Medicine not found"},
		{"bad id", "/api/medicines/abc/doses/0/toggle", http.StatusBadRequest, "Invalid medicine id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tt.target, "", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			assertContains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	env.notices.Notify(medicine.Reminder{MedicineID: 1, Name: "Aspirin", Time: "08:00", Kind: medicine.ReminderDue})

	rec := env.do(http.MethodGet, "/api/notifications", "", "")
	var notices []notify.Notice
	if err := json.Unmarshal(rec.Body.Bytes(), &notices); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(notices) != 1 || notices[0].Text != "Time to take: Aspirin" {
		t.Fatalf("Unexpected notices %+v", notices)
	}

	page := env.do(http.MethodGet, "/", "", "")
	assertContains(t, page.Body.String(), "Time to take: Aspirin")

	rec = env.do(http.MethodDelete, "/api/notifications/"+notices[0].ID, "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}

	rec = env.do(http.MethodDelete, "/api/notifications/"+notices[0].ID, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for dismissed notice, got %d", rec.Code)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Unexpected status %v", resp["status"])
	}
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "gone")

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp["error"] != "Not Found" || resp["message"] != "gone" || resp["code"] != float64(404) {
		t.Errorf("Unexpected error body %v", resp)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Unexpected content type %q", ct)
	}
}
