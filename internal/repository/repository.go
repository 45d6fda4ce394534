// Package repository implements persistence for events and reservations.
// It uses pgx directly (no ORM) and carries transactions in the context so
// the service layer can chain reservation and seat-ledger writes atomically.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, location, event_date, event_time, capacity, seats_taken, status, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx runs fn in a transaction shared by every repository built on the same pool.
func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// Create inserts a new event, assigning an id when the caller left it empty.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Description, event.Location, event.Date, event.Time,
		event.Capacity, event.SeatsTaken, event.Status, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns events ordered by date. An empty status returns every event.
func (r *EventRepository) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY event_date ASC, event_time ASC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetForUpdate reads the event and takes a row-level exclusive lock on it.
//
// Two requests racing for the last seat would both read seats_taken < capacity
// if they read the row without a lock. SELECT … FOR UPDATE blocks the second
// reader until the first transaction commits or rolls back, so the capacity
// check and the increment happen against the same snapshot.
//
// Must be called inside WithTx; outside a transaction the lock is released
// immediately.
func (r *EventRepository) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *EventRepository) get(ctx context.Context, query, id string) (*model.Event, error) {
	e, err := scanEvent(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// UpdateStatus sets the publication status of an event.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	e, err := scanEvent(conn(ctx, r.db).QueryRow(ctx,
		`UPDATE events SET status = $2 WHERE id = $1 RETURNING `+eventColumns,
		id, status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return e, nil
}

// AdjustSeats applies seats_taken += delta only if the result stays within
// [0, capacity]. A rejected update returns model.ErrSeatBounds.
func (r *EventRepository) AdjustSeats(ctx context.Context, id string, delta int) (*model.Event, error) {
	q := conn(ctx, r.db)
	e, err := scanEvent(q.QueryRow(ctx,
		`UPDATE events
		 SET seats_taken = seats_taken + $2
		 WHERE id = $1
		   AND seats_taken + $2 >= 0
		   AND seats_taken + $2 <= capacity
		 RETURNING `+eventColumns,
		id, delta,
	))
	if err == nil {
		return e, nil
	}
	if isInvalidUUID(err) {
		return nil, model.ErrNotFound
	}
	if isCheckViolation(err) {
		return nil, model.ErrSeatBounds
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust seats: %w", err)
	}

	// No row updated: either the event is gone or the guard rejected the delta.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("adjust seats: %w", err)
	}
	if !exists {
		return nil, model.ErrNotFound
	}
	return nil, model.ErrSeatBounds
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.Time,
		&e.Capacity, &e.SeatsTaken, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const reservationColumns = `id, participant_id, event_id, status, created_at, updated_at`

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTx runs fn in a transaction shared by every repository built on the same pool.
func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// Create inserts a PENDING reservation. The (participant_id, event_id)
// unique constraint turns a concurrent duplicate into
// model.ErrDuplicateReservation rather than a second row.
func (r *ReservationRepository) Create(ctx context.Context, participantID, eventID string, createdAt time.Time) (*model.Reservation, error) {
	res := &model.Reservation{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		EventID:       eventID,
		Status:        model.ReservationPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO reservations (`+reservationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.ParticipantID, res.EventID, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateReservation
		}
		if isInvalidUUID(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	return res, nil
}

// FindByID returns a reservation or model.ErrNotFound.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := scanReservation(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

// FindExisting returns the participant's reservation for the event, or nil
// when there is none. Released reservations still count.
func (r *ReservationRepository) FindExisting(ctx context.Context, participantID, eventID string) (*model.Reservation, error) {
	res, err := scanReservation(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE participant_id = $1 AND event_id = $2`,
		participantID, eventID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find existing reservation: %w", err)
	}
	return res, nil
}

// SetStatus persists a status change without judging whether it is legal.
func (r *ReservationRepository) SetStatus(ctx context.Context, id string, status model.ReservationStatus, updatedAt time.Time) (*model.Reservation, error) {
	res, err := scanReservation(conn(ctx, r.db).QueryRow(ctx,
		`UPDATE reservations SET status = $2, updated_at = $3
		 WHERE id = $1
		 RETURNING `+reservationColumns,
		id, status, updatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("set reservation status: %w", err)
	}
	return res, nil
}

// ListByParticipant returns a participant's reservations, newest first.
func (r *ReservationRepository) ListByParticipant(ctx context.Context, participantID string) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE participant_id = $1
		 ORDER BY created_at DESC, id`,
		participantID,
	)
}

// List returns reservations matching filter, newest first.
func (r *ReservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	if filter.EventID != "" {
		if _, err := uuid.Parse(filter.EventID); err != nil {
			return nil, nil
		}
	}
	return r.list(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE ($1 = '' OR event_id::text = $1)
		   AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC, id`,
		filter.EventID, string(filter.Status),
	)
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.ParticipantID, &res.EventID, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
