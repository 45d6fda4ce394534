// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer: event management, the
// seat ledger and the reservation lifecycle engine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/clock"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/Shivanand-hulikatti/event-reservations/internal/policy"
)

const maxCapacity = 100_000

// EventService orchestrates event-related business operations. It never
// touches seats_taken; only the ledger does.
type EventService struct {
	events EventStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, clk clock.Clock, logger *slog.Logger) *EventService {
	return &EventService{events: events, clock: clk, logger: logger}
}

// CreateEvent validates the request and persists a new event with no seats taken.
func (s *EventService) CreateEvent(ctx context.Context, caller model.Caller, req model.CreateEventRequest) (*model.Event, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be a positive integer", model.ErrInvalidInput)
	}
	if req.Capacity > maxCapacity {
		return nil, fmt.Errorf("%w: capacity cannot exceed 100,000", model.ErrInvalidInput)
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrInvalidInput)
	}
	req.Time = strings.TrimSpace(req.Time)
	if !policy.ValidClock(req.Time) {
		return nil, fmt.Errorf("%w: time must be HH:MM", model.ErrInvalidInput)
	}
	if req.Status == "" {
		req.Status = model.EventDraft
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, req.Status)
	}

	event := &model.Event{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Date:        date,
		Time:        req.Time,
		Capacity:    req.Capacity,
		Status:      req.Status,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("event created", "event_id", event.ID, "capacity", event.Capacity, "status", event.Status)
	return event, nil
}

// ListEvents returns all events to admins and only published ones to participants.
func (s *EventService) ListEvents(ctx context.Context, caller model.Caller) ([]model.Event, error) {
	if caller.IsAdmin() {
		return s.events.List(ctx, "")
	}
	return s.events.List(ctx, model.EventPublished)
}

// GetEvent returns a single event by ID. Unpublished events are hidden
// from participants.
func (s *EventService) GetEvent(ctx context.Context, caller model.Caller, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrInvalidInput)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && event.Status == model.EventDraft {
		return nil, model.ErrNotFound
	}
	return event, nil
}

// UpdateEventStatus publishes, unpublishes or cancels an event.
func (s *EventService) UpdateEventStatus(ctx context.Context, caller model.Caller, id string, status model.EventStatus) (*model.Event, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	event, err := s.events.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("event status changed", "event_id", id, "status", status)
	return event, nil
}
