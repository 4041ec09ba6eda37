// Package handlers provides the HTTP request handlers of the reminder: the
// server-rendered page with its form posts, and a small JSON API used by the
// page's notice poller and by scripts.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/medicine"
)

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// formFromRequest reads the add form fields (time1..time4 are the dose slots)
func formFromRequest(r *http.Request) (medicine.Form, error) {
	if err := r.ParseForm(); err != nil {
		return medicine.Form{}, fmt.Errorf("failed to parse form: %w", err)
	}

	times := make([]string, medicine.MaxDoseTimes)
	for i := range times {
		times[i] = r.PostFormValue(fmt.Sprintf("time%d", i+1))
	}

	return medicine.Form{
		Name:      r.PostFormValue("name"),
		Dosage:    r.PostFormValue("dosage"),
		StartDate: r.PostFormValue("startDate"),
		Duration:  r.PostFormValue("duration"),
		Times:     times,
	}, nil
}

// medicineID parses the {id} URL parameter
func medicineID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// doseIndex parses the {index} URL parameter. Range checks are left to the tracker.
func doseIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, false
	}
	return index, true
}
