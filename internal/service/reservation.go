package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/clock"
	"github.com/Shivanand-hulikatti/event-reservations/internal/metrics"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/Shivanand-hulikatti/event-reservations/internal/policy"
)

type transition struct {
	from model.ReservationStatus
	to   model.ReservationStatus
}

// transitionDeltas lists every permitted status change and its effect on
// the event's seats_taken. Creation (→ PENDING) counts +1 separately.
var transitionDeltas = map[transition]int{
	{model.ReservationPending, model.ReservationConfirmed}: 0,
	{model.ReservationPending, model.ReservationRefused}:   -1,
	{model.ReservationPending, model.ReservationCanceled}:  -1,

	{model.ReservationConfirmed, model.ReservationRefused}:  -1,
	{model.ReservationConfirmed, model.ReservationCanceled}: -1,

	{model.ReservationRefused, model.ReservationConfirmed}:  1,
	{model.ReservationCanceled, model.ReservationConfirmed}: 1,

	// Both statuses have already released their seat.
	{model.ReservationRefused, model.ReservationCanceled}: 0,
	{model.ReservationCanceled, model.ReservationRefused}: 0,
}

// SeatDelta returns the ledger delta for from → to and whether the change
// is permitted. Self transitions are permitted with no effect.
func SeatDelta(from, to model.ReservationStatus) (int, bool) {
	if from == to {
		return 0, true
	}
	delta, ok := transitionDeltas[transition{from, to}]
	return delta, ok
}

// ReservationService is the reservation lifecycle engine. It is the only
// component that chains a reservation write with a seat-ledger adjustment,
// and it does so inside one store transaction with the event row locked.
type ReservationService struct {
	events       EventStore
	reservations ReservationStore
	ledger       *Ledger
	cancellation policy.Cancellation
	location     *time.Location
	clock        clock.Clock
	logger       *slog.Logger
}

// ReservationOption customises a ReservationService.
type ReservationOption func(*ReservationService)

// WithCancellationLeadTime overrides the participant cancellation window.
func WithCancellationLeadTime(d time.Duration) ReservationOption {
	return func(s *ReservationService) {
		s.cancellation = policy.NewCancellation(d)
	}
}

// WithLocation sets the time zone event dates and times are expressed in.
func WithLocation(loc *time.Location) ReservationOption {
	return func(s *ReservationService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewReservationService constructs the lifecycle engine.
func NewReservationService(
	events EventStore,
	reservations ReservationStore,
	clk clock.Clock,
	logger *slog.Logger,
	opts ...ReservationOption,
) *ReservationService {
	s := &ReservationService{
		events:       events,
		reservations: reservations,
		ledger:       NewLedger(events, logger),
		cancellation: policy.NewCancellation(policy.DefaultCancellationLeadTime),
		location:     time.UTC,
		clock:        clk,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestReservation claims one seat of eventID for the caller. The event
// must be PUBLISHED, the caller must not already hold a reservation for it
// (in any status), and a seat must be free. Nothing is written unless all
// checks pass.
func (s *ReservationService) RequestReservation(ctx context.Context, caller model.Caller, eventID string) (*model.Reservation, error) {
	if caller.ID == "" {
		return nil, model.ErrUnauthenticated
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", model.ErrInvalidInput)
	}

	var created *model.Reservation
	err := s.events.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.GetForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if event.Status != model.EventPublished {
			return model.ErrInvalidEventState
		}

		existing, err := s.reservations.FindExisting(txCtx, caller.ID, eventID)
		if err != nil {
			return err
		}
		if existing != nil {
			return model.ErrDuplicateReservation
		}

		if !s.ledger.HasFreeSeat(event) {
			return model.ErrEventFull
		}

		res, err := s.reservations.Create(txCtx, caller.ID, eventID, s.clock.Now())
		if err != nil {
			return err
		}
		if _, err := s.ledger.Adjust(txCtx, eventID, 1); err != nil {
			return err
		}
		created = res
		return nil
	})

	metrics.ReservationRequests.WithLabelValues(requestOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		"reservation_id", created.ID,
		"event_id", eventID,
		"participant_id", caller.ID,
	)
	return created, nil
}

// ChangeStatus moves a reservation to status on behalf of an administrator
// and applies the matching ledger delta. Setting the current status again
// is a no-op.
func (s *ReservationService) ChangeStatus(ctx context.Context, caller model.Caller, reservationID string, status model.ReservationStatus) (*model.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return s.transition(ctx, caller, reservationID, status, nil)
}

// CancelByParticipant lets the owner cancel a PENDING or CONFIRMED
// reservation while the event is still far enough away.
func (s *ReservationService) CancelByParticipant(ctx context.Context, caller model.Caller, reservationID string) (*model.Reservation, error) {
	if caller.ID == "" {
		return nil, model.ErrUnauthenticated
	}

	guard := func(res *model.Reservation, event *model.Event) error {
		if res.ParticipantID != caller.ID {
			return model.ErrForbidden
		}
		if !res.Status.HoldsSeat() {
			return fmt.Errorf("%w: reservation is %s", model.ErrInvalidTransition, res.Status)
		}
		start := policy.ScheduledStart(event.Date, event.Time, s.location)
		if !s.cancellation.CanCancel(start, s.clock.Now()) {
			return model.ErrCancellationWindowClosed
		}
		return nil
	}
	return s.transition(ctx, caller, reservationID, model.ReservationCanceled, guard)
}

// transition applies a status change under the event row lock. guard, when
// set, runs against the locked state before anything is written.
func (s *ReservationService) transition(
	ctx context.Context,
	caller model.Caller,
	reservationID string,
	status model.ReservationStatus,
	guard func(*model.Reservation, *model.Event) error,
) (*model.Reservation, error) {
	var (
		result *model.Reservation
		from   model.ReservationStatus
		delta  int
	)
	err := s.events.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.reservations.FindByID(txCtx, reservationID)
		if err != nil {
			return err
		}
		event, err := s.events.GetForUpdate(txCtx, res.EventID)
		if err != nil {
			return err
		}
		// Status writes all lock the event first, so this read is current.
		if res, err = s.reservations.FindByID(txCtx, reservationID); err != nil {
			return err
		}

		if guard != nil {
			if err := guard(res, event); err != nil {
				return err
			}
		}

		from = res.Status
		d, ok := SeatDelta(res.Status, status)
		if !ok {
			return fmt.Errorf("%w: %s → %s", model.ErrInvalidTransition, res.Status, status)
		}
		if res.Status == status {
			result = res
			return nil
		}
		if d > 0 && !s.ledger.HasFreeSeat(event) {
			return model.ErrEventFull
		}

		updated, err := s.reservations.SetStatus(txCtx, reservationID, status, s.clock.Now())
		if err != nil {
			return err
		}
		if _, err := s.ledger.Adjust(txCtx, res.EventID, d); err != nil {
			return err
		}
		result, delta = updated, d
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrLedgerInconsistent) {
			s.logger.Error("reservation transition aborted",
				"reservation_id", reservationID,
				"to", status,
				"error", err,
			)
		}
		return nil, err
	}

	if from != status {
		metrics.ReservationTransitions.WithLabelValues(string(from), string(status)).Inc()
		s.logger.Info("reservation status changed",
			"reservation_id", reservationID,
			"from", from,
			"to", status,
			"seat_delta", delta,
			"actor", caller.ID,
		)
	}
	return result, nil
}

// GetReservation returns a reservation visible to the caller.
func (s *ReservationService) GetReservation(ctx context.Context, caller model.Caller, id string) (*model.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && res.ParticipantID != caller.ID {
		return nil, model.ErrForbidden
	}
	return res, nil
}

// ListMine returns the caller's own reservations, newest first.
func (s *ReservationService) ListMine(ctx context.Context, caller model.Caller) ([]model.Reservation, error) {
	if caller.ID == "" {
		return nil, model.ErrUnauthenticated
	}
	return s.reservations.ListByParticipant(ctx, caller.ID)
}

// ListAll returns every reservation matching filter. Admin only.
func (s *ReservationService) ListAll(ctx context.Context, caller model.Caller, filter model.ReservationFilter) ([]model.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, filter.Status)
	}
	return s.reservations.List(ctx, filter)
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, model.ErrEventFull):
		return "event_full"
	case errors.Is(err, model.ErrDuplicateReservation):
		return "duplicate"
	case errors.Is(err, model.ErrInvalidEventState):
		return "invalid_event_state"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
