package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/medreminder/i18n"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/medicine"
	"github.com/giygas/medreminder/notify"
	"github.com/giygas/medreminder/render"
	"github.com/giygas/medreminder/tracker"
	"github.com/giygas/medreminder/view"
)

// NoticeBoard exposes the live notices
type NoticeBoard interface {
	Active() []notify.Notice
	Dismiss(id string) bool
}

// PageWriter renders the HTML page
type PageWriter interface {
	Write(w http.ResponseWriter, status int, p render.Page) error
}

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	tracker    interfaces.Tracker
	notices    NoticeBoard
	pages      PageWriter
	translator interfaces.Translator
	health     interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(tr interfaces.Tracker, notices NoticeBoard, pages PageWriter, translator interfaces.Translator, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		tracker:    tr,
		notices:    notices,
		pages:      pages,
		translator: translator,
		health:     health,
	}
}

// writePage re-renders the whole page from the current state
func (h *HTTPHandlerImpl) writePage(w http.ResponseWriter, status int, form render.Form, ack interfaces.Ack) {
	page := render.Page{
		List:    view.Build(h.tracker.Records(), h.tracker.Now(), h.translator),
		Form:    form,
		Notices: h.notices.Active(),
	}
	if ack.Key != "" {
		page.Ack = h.translator.T(ack.Key, ack.Args...)
	}
	if prompt, ok := h.tracker.PendingDelete(); ok {
		page.Prompt = h.translator.T(i18n.MsgConfirmDelete, prompt.Name)
	}

	if err := h.pages.Write(w, status, page); err != nil {
		logging.Error("Failed to render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// serverError logs a failed command and answers 500
func (h *HTTPHandlerImpl) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("Command failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// ServePage renders the page; ?form=open shows a fresh add form
func (h *HTTPHandlerImpl) ServePage(w http.ResponseWriter, r *http.Request) {
	form := render.Form{}
	if r.URL.Query().Get("form") == "open" {
		form = render.NewForm(h.tracker.Now())
	}
	h.writePage(w, http.StatusOK, form, interfaces.Ack{})
}

// CreateMedicine handles the add form. A rejected submission keeps the form
// open with the submitted values.
func (h *HTTPHandlerImpl) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	form, err := formFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	_, ack, err := h.tracker.Create(form)
	var verr *medicine.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writePage(w, http.StatusUnprocessableEntity, render.RefillForm(form, h.translator.T(verr.Message)), interfaces.Ack{})
	case err != nil:
		h.serverError(w, r, err)
	default:
		h.writePage(w, http.StatusOK, render.Form{}, ack)
	}
}

// RequestDelete opens the confirmation prompt. Unknown ids change nothing.
func (h *HTTPHandlerImpl) RequestDelete(w http.ResponseWriter, r *http.Request) {
	if id, ok := medicineID(r); ok {
		h.tracker.RequestDelete(id)
	}
	h.writePage(w, http.StatusOK, render.Form{}, interfaces.Ack{})
}

// ConfirmDelete soft-deletes the staged medicine
func (h *HTTPHandlerImpl) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ack, err := h.tracker.ConfirmDelete()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writePage(w, http.StatusOK, render.Form{}, ack)
}

// CancelDelete closes the prompt with an acknowledgment
func (h *HTTPHandlerImpl) CancelDelete(w http.ResponseWriter, r *http.Request) {
	ack := h.tracker.CancelDelete()
	h.writePage(w, http.StatusOK, render.Form{}, ack)
}

// DismissDelete closes the prompt silently (click outside the dialog)
func (h *HTTPHandlerImpl) DismissDelete(w http.ResponseWriter, r *http.Request) {
	h.tracker.DismissDelete()
	h.writePage(w, http.StatusOK, render.Form{}, interfaces.Ack{})
}

// ToggleDose flips one taken flag. Unknown medicines and doses change nothing.
func (h *HTTPHandlerImpl) ToggleDose(w http.ResponseWriter, r *http.Request) {
	id, okID := medicineID(r)
	index, okIndex := doseIndex(r)
	if okID && okIndex {
		if _, err := h.tracker.Toggle(id, index); err != nil && !errors.Is(err, tracker.ErrNotFound) {
			h.serverError(w, r, err)
			return
		}
	}
	h.writePage(w, http.StatusOK, render.Form{}, interfaces.Ack{})
}

// ListMedicinesAPI returns the projected list
func (h *HTTPHandlerImpl) ListMedicinesAPI(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, view.Build(h.tracker.Records(), h.tracker.Now(), h.translator))
}

// CreateMedicineAPI creates a medicine from a JSON form
func (h *HTTPHandlerImpl) CreateMedicineAPI(w http.ResponseWriter, r *http.Request) {
	var form medicine.Form
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&form); err != nil {
		logging.Warn("Invalid JSON body", "error", err)
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	record, ack, err := h.tracker.Create(form)
	var verr *medicine.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondWithError(w, http.StatusUnprocessableEntity, h.translator.T(verr.Message))
	case err != nil:
		logging.Error("Command failed", "path", r.URL.Path, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save medicine")
	default:
		RespondWithJSON(w, http.StatusCreated, map[string]any{
			"medicine": record,
			"message":  h.translator.T(ack.Key, ack.Args...),
		})
	}
}

// ToggleDoseAPI flips one taken flag
func (h *HTTPHandlerImpl) ToggleDoseAPI(w http.ResponseWriter, r *http.Request) {
	id, okID := medicineID(r)
	index, okIndex := doseIndex(r)
	if !okID || !okIndex {
		RespondWithError(w, http.StatusBadRequest, "Invalid medicine id or dose index")
		return
	}

	changed, err := h.tracker.Toggle(id, index)
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Medicine not found")
	case err != nil:
		logging.Error("Command failed", "path", r.URL.Path, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save dose")
	default:
		RespondWithJSON(w, http.StatusOK, map[string]any{"changed": changed})
	}
}

// ListNotifications returns live notices, oldest first
func (h *HTTPHandlerImpl) ListNotifications(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.notices.Active())
}

// DismissNotification removes a notice before it expires
func (h *HTTPHandlerImpl) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if !h.notices.Dismiss(chi.URLParam(r, "id")) {
		RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck reports scheduler liveness and state counts
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, code := h.health.HealthCheck()
	RespondWithJSON(w, code, map[string]any{
		"status": status,
		"data":   data,
	})
}
