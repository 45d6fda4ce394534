package model

import "errors"

// Errors surfaced by the reservation core. Callers match them with errors.Is.
var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidEventState        = errors.New("event is not open for reservations")
	ErrEventFull                = errors.New("event is fully booked")
	ErrDuplicateReservation     = errors.New("participant already holds a reservation for this event")
	ErrForbidden                = errors.New("forbidden")
	ErrInvalidTransition        = errors.New("status change not permitted from current status")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrInvalidStatus            = errors.New("invalid status")
	ErrInvalidInput             = errors.New("invalid input")
	ErrUnauthenticated          = errors.New("unauthenticated")
)

// ErrLedgerInconsistent means a seat adjustment would leave seats_taken
// outside [0, capacity]. It indicates a logic bug, never bad input.
var ErrLedgerInconsistent = errors.New("ledger consistency violation")

// ErrSeatBounds is returned by stores when a conditional seat update is
// rejected because the result would leave [0, capacity].
var ErrSeatBounds = errors.New("seat count out of bounds")
