package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-reservations/internal/metrics"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
)

// Ledger is the authority on an event's occupied-seat count. It is only
// driven by ReservationService as a side effect of reservation transitions.
type Ledger struct {
	events SeatAdjuster
	logger *slog.Logger
}

// NewLedger constructs a Ledger over the given event store.
func NewLedger(events SeatAdjuster, logger *slog.Logger) *Ledger {
	return &Ledger{events: events, logger: logger}
}

// HasFreeSeat reports whether the event can take one more reservation.
func (l *Ledger) HasFreeSeat(event *model.Event) bool {
	return event.SeatsTaken < event.Capacity
}

// Adjust applies seats_taken += delta. Only ±1 is accepted; a zero delta is
// a no-op. Leaving [0, capacity] is reported as model.ErrLedgerInconsistent
// because callers check capacity before asking for an increment.
func (l *Ledger) Adjust(ctx context.Context, eventID string, delta int) (*model.Event, error) {
	var direction string
	switch delta {
	case 0:
		return nil, nil
	case 1:
		direction = "increment"
	case -1:
		direction = "decrement"
	default:
		return nil, fmt.Errorf("%w: unsupported delta %d for event %s", model.ErrLedgerInconsistent, delta, eventID)
	}

	event, err := l.events.AdjustSeats(ctx, eventID, delta)
	if err != nil {
		if errors.Is(err, model.ErrSeatBounds) {
			metrics.LedgerViolations.Inc()
			l.logger.Error("seat ledger rejected adjustment",
				"event_id", eventID,
				"delta", delta,
			)
			return nil, fmt.Errorf("%w: event %s delta %+d", model.ErrLedgerInconsistent, eventID, delta)
		}
		return nil, fmt.Errorf("adjust seats: %w", err)
	}

	metrics.LedgerAdjustments.WithLabelValues(direction).Inc()
	return event, nil
}
