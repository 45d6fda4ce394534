// Package model defines the core domain types for the event reservation system.
package model

import "time"

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCanceled  EventStatus = "CANCELED"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCanceled:
		return true
	}
	return false
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationRefused   ReservationStatus = "REFUSED"
	ReservationCanceled  ReservationStatus = "CANCELED"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationRefused, ReservationCanceled:
		return true
	}
	return false
}

// HoldsSeat reports whether a reservation in this status occupies a seat.
func (s ReservationStatus) HoldsSeat() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Event represents a bookable event created by an organizer.
// Date carries only the calendar day; Time is the "HH:MM" start time.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Date        time.Time   `json:"date"`
	Time        string      `json:"time"`
	Capacity    int         `json:"capacity"`
	SeatsTaken  int         `json:"seats_taken"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.Capacity - e.SeatsTaken
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.SeatsTaken >= e.Capacity
}

// Reservation is one participant's claim on one seat of one event.
type Reservation struct {
	ID            string            `json:"id"`
	ParticipantID string            `json:"participant_id"`
	EventID       string            `json:"event_id"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ReservationFilter narrows an admin listing. Zero values match everything.
type ReservationFilter struct {
	EventID string
	Status  ReservationStatus
}

// Matches reports whether r passes the filter.
func (f ReservationFilter) Matches(r *Reservation) bool {
	if f.EventID != "" && r.EventID != f.EventID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Capacity    int         `json:"capacity"`
	Status      EventStatus `json:"status,omitempty"`
}

// UpdateEventStatusRequest is the payload for publishing or canceling an event.
type UpdateEventStatusRequest struct {
	Status EventStatus `json:"status"`
}

// ReserveRequest is the payload for reserving a seat.
type ReserveRequest struct {
	EventID string `json:"event_id"`
}

// UpdateReservationStatusRequest is the admin payload for a status change.
type UpdateReservationStatusRequest struct {
	Status ReservationStatus `json:"status"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
