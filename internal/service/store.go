package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
)

// Transactor runs fn atomically. Stores sharing a backend join the same
// transaction through the context.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeatAdjuster applies a guarded seat delta to an event.
type SeatAdjuster interface {
	AdjustSeats(ctx context.Context, eventID string, delta int) (*model.Event, error)
}

// EventStore is the event persistence the services depend on.
type EventStore interface {
	Transactor
	SeatAdjuster
	Create(ctx context.Context, event *model.Event) error
	List(ctx context.Context, status model.EventStatus) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetForUpdate(ctx context.Context, id string) (*model.Event, error)
	UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error)
}

// ReservationStore is the reservation record store.
type ReservationStore interface {
	Create(ctx context.Context, participantID, eventID string, createdAt time.Time) (*model.Reservation, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindExisting(ctx context.Context, participantID, eventID string) (*model.Reservation, error)
	SetStatus(ctx context.Context, id string, status model.ReservationStatus, updatedAt time.Time) (*model.Reservation, error)
	ListByParticipant(ctx context.Context, participantID string) ([]model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
}
