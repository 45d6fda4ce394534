// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/go-chi/chi/v5"
)

// EventService is the event management surface the handlers call.
type EventService interface {
	CreateEvent(ctx context.Context, caller model.Caller, req model.CreateEventRequest) (*model.Event, error)
	ListEvents(ctx context.Context, caller model.Caller) ([]model.Event, error)
	GetEvent(ctx context.Context, caller model.Caller, id string) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, caller model.Caller, id string, status model.EventStatus) (*model.Event, error)
}

// ReservationService is the reservation lifecycle surface the handlers call.
type ReservationService interface {
	RequestReservation(ctx context.Context, caller model.Caller, eventID string) (*model.Reservation, error)
	ChangeStatus(ctx context.Context, caller model.Caller, id string, status model.ReservationStatus) (*model.Reservation, error)
	CancelByParticipant(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error)
	GetReservation(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error)
	ListMine(ctx context.Context, caller model.Caller) ([]model.Reservation, error)
	ListAll(ctx context.Context, caller model.Caller, filter model.ReservationFilter) ([]model.Reservation, error)
}

// EventHandler holds the event HTTP handlers.
type EventHandler struct {
	svc    EventService
	logger *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

// ReservationHandler holds the reservation HTTP handlers.
type ReservationHandler struct {
	svc    ReservationService
	logger *slog.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc ReservationService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{model.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{model.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{model.ErrInvalidEventState, http.StatusBadRequest, "invalid_event_state"},
	{model.ErrInvalidTransition, http.StatusBadRequest, "invalid_transition"},
	{model.ErrCancellationWindowClosed, http.StatusBadRequest, "cancellation_window_closed"},
	{model.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{model.ErrForbidden, http.StatusForbidden, "forbidden"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrEventFull, http.StatusConflict, "event_full"},
	{model.ErrDuplicateReservation, http.StatusConflict, "duplicate_reservation"},
}

// mapError returns the HTTP status, code and client message for err.
// Unknown errors never leak their text.
func mapError(err error) (int, string, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal_error", "internal server error"
}

// WriteServiceError renders err using the shared error table.
func WriteServiceError(w http.ResponseWriter, err error) {
	status, code, msg := mapError(err)
	writeError(w, status, code, msg)
}

func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, msg := mapError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, code, msg)
}

func callerFrom(w http.ResponseWriter, r *http.Request) (model.Caller, bool) {
	caller, ok := model.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", model.ErrUnauthenticated.Error())
	}
	return caller, ok
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), caller, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	events, err := h.svc.ListEvents(r.Context(), caller)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	event, err := h.svc.GetEvent(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateStatus handles PATCH /events/{id}/status
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdateEventStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEventStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// ─── Reservation handlers ─────────────────────────────────────────────────────

// Reserve handles POST /reservations
// Claims a seat for the caller; concurrency-safe against the last seat.
func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req model.ReserveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.RequestReservation(r.Context(), caller, req.EventID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /reservations
// Admins see every reservation, filtered by ?status= and ?event_id=;
// everyone else sees their own.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var (
		list []model.Reservation
		err  error
	)
	if caller.IsAdmin() {
		q := r.URL.Query()
		list, err = h.svc.ListAll(r.Context(), caller, model.ReservationFilter{
			EventID: q.Get("event_id"),
			Status:  model.ReservationStatus(q.Get("status")),
		})
	} else {
		list, err = h.svc.ListMine(r.Context(), caller)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if list == nil {
		list = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /reservations/{id}
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetReservation(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// UpdateStatus handles PATCH /reservations/{id}/status
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var req model.UpdateReservationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.ChangeStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Cancel handles PATCH /reservations/{id}/cancel
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CancelByParticipant(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
