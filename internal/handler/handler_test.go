package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/auth"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvents struct {
	err    error
	caller model.Caller
}

func (s *stubEvents) CreateEvent(_ context.Context, c model.Caller, req model.CreateEventRequest) (*model.Event, error) {
	s.caller = c
	if s.err != nil {
		return nil, s.err
	}
	return &model.Event{ID: "ev-1", Title: req.Title, Capacity: req.Capacity, Status: model.EventDraft}, nil
}

func (s *stubEvents) ListEvents(_ context.Context, c model.Caller) ([]model.Event, error) {
	s.caller = c
	return nil, s.err
}

func (s *stubEvents) GetEvent(_ context.Context, c model.Caller, id string) (*model.Event, error) {
	s.caller = c
	if s.err != nil {
		return nil, s.err
	}
	return &model.Event{ID: id}, nil
}

func (s *stubEvents) UpdateEventStatus(_ context.Context, c model.Caller, id string, status model.EventStatus) (*model.Event, error) {
	s.caller = c
	if s.err != nil {
		return nil, s.err
	}
	return &model.Event{ID: id, Status: status}, nil
}

type stubReservations struct {
	err    error
	calls  []string
	filter model.ReservationFilter
}

func (s *stubReservations) reservation(id string, c model.Caller, status model.ReservationStatus) *model.Reservation {
	return &model.Reservation{ID: id, ParticipantID: c.ID, EventID: "ev-1", Status: status}
}

func (s *stubReservations) RequestReservation(_ context.Context, c model.Caller, eventID string) (*model.Reservation, error) {
	s.calls = append(s.calls, "request:"+eventID)
	if s.err != nil {
		return nil, s.err
	}
	return s.reservation("res-1", c, model.ReservationPending), nil
}

func (s *stubReservations) ChangeStatus(_ context.Context, c model.Caller, id string, status model.ReservationStatus) (*model.Reservation, error) {
	s.calls = append(s.calls, fmt.Sprintf("status:%s:%s", id, status))
	if s.err != nil {
		return nil, s.err
	}
	return s.reservation(id, c, status), nil
}

func (s *stubReservations) CancelByParticipant(_ context.Context, c model.Caller, id string) (*model.Reservation, error) {
	s.calls = append(s.calls, "cancel:"+id)
	if s.err != nil {
		return nil, s.err
	}
	return s.reservation(id, c, model.ReservationCanceled), nil
}

func (s *stubReservations) GetReservation(_ context.Context, c model.Caller, id string) (*model.Reservation, error) {
	s.calls = append(s.calls, "get:"+id)
	if s.err != nil {
		return nil, s.err
	}
	return s.reservation(id, c, model.ReservationPending), nil
}

func (s *stubReservations) ListMine(_ context.Context, c model.Caller) ([]model.Reservation, error) {
	s.calls = append(s.calls, "mine:"+c.ID)
	return nil, s.err
}

func (s *stubReservations) ListAll(_ context.Context, _ model.Caller, f model.ReservationFilter) ([]model.Reservation, error) {
	s.calls = append(s.calls, "all")
	s.filter = f
	return nil, s.err
}

type testServer struct {
	router       http.Handler
	events       *stubEvents
	reservations *stubReservations
	adminToken   string
	userToken    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	authn := auth.NewAuthenticator("test-secret", "")
	adminToken, err := authn.Issue("admin-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	userToken, err := authn.Issue("alice", model.RoleParticipant, time.Hour)
	require.NoError(t, err)

	ts := &testServer{
		events:       &stubEvents{},
		reservations: &stubReservations{},
		adminToken:   adminToken,
		userToken:    userToken,
	}
	ts.router = NewRouter(RouterDeps{
		Events:       ts.events,
		Reservations: ts.reservations,
		Auth:         authn,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSOrigins:  []string{"https://app.example.com"},
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestReserve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		token      func(*testServer) string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"event_id":"ev-1"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `{"event_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "unknown field",
			body:       `{"event":"ev-1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "no token",
			body:       `{"event_id":"ev-1"}`,
			token:      func(*testServer) string { return "" },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthenticated",
		},
		{
			name:       "event full",
			body:       `{"event_id":"ev-1"}`,
			serviceErr: model.ErrEventFull,
			wantStatus: http.StatusConflict,
			wantCode:   "event_full",
		},
		{
			name:       "duplicate",
			body:       `{"event_id":"ev-1"}`,
			serviceErr: model.ErrDuplicateReservation,
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate_reservation",
		},
		{
			name:       "event not open",
			body:       `{"event_id":"ev-1"}`,
			serviceErr: model.ErrInvalidEventState,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_event_state",
		},
		{
			name:       "unknown event",
			body:       `{"event_id":"ev-1"}`,
			serviceErr: model.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "internal error",
			body:       `{"event_id":"ev-1"}`,
			serviceErr: errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			ts.reservations.err = tt.serviceErr
			token := ts.userToken
			if tt.token != nil {
				token = tt.token(ts)
			}

			rec := ts.do(http.MethodPost, "/reservations", token, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				body := decodeError(t, rec)
				assert.Equal(t, tt.wantCode, body.Code)
				assert.NotContains(t, body.Error, "connection reset")
				return
			}
			var res model.Reservation
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, "alice", res.ParticipantID)
			assert.Equal(t, model.ReservationPending, res.Status)
		})
	}
}

func TestReservationRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		admin      bool
		body       string
		wantStatus int
		wantCall   string
	}{
		{name: "admin sets status", method: http.MethodPatch, path: "/reservations/r1/status", admin: true, body: `{"status":"CONFIRMED"}`, wantStatus: http.StatusOK, wantCall: "status:r1:CONFIRMED"},
		{name: "participant cannot set status", method: http.MethodPatch, path: "/reservations/r1/status", body: `{"status":"CONFIRMED"}`, wantStatus: http.StatusForbidden},
		{name: "participant cancels", method: http.MethodPatch, path: "/reservations/r1/cancel", wantStatus: http.StatusOK, wantCall: "cancel:r1"},
		{name: "get one", method: http.MethodGet, path: "/reservations/r1", wantStatus: http.StatusOK, wantCall: "get:r1"},
		{name: "participant lists own", method: http.MethodGet, path: "/reservations", wantStatus: http.StatusOK, wantCall: "mine:alice"},
		{name: "admin lists all", method: http.MethodGet, path: "/reservations?status=PENDING&event_id=ev-9", admin: true, wantStatus: http.StatusOK, wantCall: "all"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			token := ts.userToken
			if tt.admin {
				token = ts.adminToken
			}

			rec := ts.do(tt.method, tt.path, token, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCall == "" {
				assert.Empty(t, ts.reservations.calls)
			} else {
				assert.Equal(t, []string{tt.wantCall}, ts.reservations.calls)
			}
		})
	}
}

func TestListReservations_AdminFilterAndEmptyArray(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/reservations?status=PENDING&event_id=ev-9", ts.adminToken, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, model.ReservationFilter{EventID: "ev-9", Status: model.ReservationPending}, ts.reservations.filter)
}

func TestCancel_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{model.ErrCancellationWindowClosed, http.StatusBadRequest, "cancellation_window_closed"},
		{model.ErrInvalidTransition, http.StatusBadRequest, "invalid_transition"},
		{model.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("wrap: %w", model.ErrLedgerInconsistent), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.wantCode, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			ts.reservations.err = tt.err

			rec := ts.do(http.MethodPatch, "/reservations/r1/cancel", ts.userToken, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestEventRoutes(t *testing.T) {
	t.Parallel()

	t.Run("participant cannot create", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/events", ts.userToken, `{"title":"x"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/events", ts.adminToken,
			`{"title":"Go Meetup","date":"2026-04-10","time":"18:30","capacity":10}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var ev model.Event
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&ev))
		assert.Equal(t, "Go Meetup", ev.Title)
		assert.Equal(t, "admin-1", ts.events.caller.ID)
	})

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		ts.events.err = fmt.Errorf("%w: title is required", model.ErrInvalidInput)
		rec := ts.do(http.MethodPost, "/events", ts.adminToken, `{"title":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_input", decodeError(t, rec).Code)
	})

	t.Run("list returns array", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		rec := ts.do(http.MethodGet, "/events", ts.userToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		ts.events.err = model.ErrNotFound
		rec := ts.do(http.MethodGet, "/events/nope", ts.userToken, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("admin publishes", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(t)
		rec := ts.do(http.MethodPatch, "/events/ev-1/status", ts.adminToken, `{"status":"PUBLISHED"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var ev model.Event
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&ev))
		assert.Equal(t, model.EventPublished, ev.Status)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMapError(t *testing.T) {
	t.Parallel()

	status, code, msg := mapError(fmt.Errorf("%w: capacity must be positive", model.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", code)
	assert.Contains(t, msg, "capacity must be positive")

	status, code, msg = mapError(errors.New("pq: secret detail"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)
	assert.Equal(t, "internal server error", msg)
}
