package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/google/uuid"
)

// MemoryStore keeps events and reservations in process. A single mutex
// serialises every transaction, so capacity checks and seat adjustments
// made inside WithTx never interleave. A failed transaction restores the
// state it started from.
type MemoryStore struct {
	mu           sync.Mutex
	events       map[string]model.Event
	reservations map[string]model.Reservation
	// byPair is the (participant, event) uniqueness index.
	byPair map[pairKey]string
}

type pairKey struct {
	participantID string
	eventID       string
}

type memTxKey struct{}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:       make(map[string]model.Event),
		reservations: make(map[string]model.Reservation),
		byPair:       make(map[pairKey]string),
	}
}

// Events returns the event repository view of the store.
func (s *MemoryStore) Events() *MemoryEventRepository {
	return &MemoryEventRepository{s: s}
}

// Reservations returns the reservation repository view of the store.
func (s *MemoryStore) Reservations() *MemoryReservationRepository {
	return &MemoryReservationRepository{s: s}
}

// WithTx runs fn holding the store lock. Nested calls join the outer transaction.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memTxKey{}).(*MemoryStore)
	return owner == s
}

// locked runs f under the store lock unless ctx already holds it.
func (s *MemoryStore) locked(ctx context.Context, f func()) {
	if s.inTx(ctx) {
		f()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

type memSnapshot struct {
	events       map[string]model.Event
	reservations map[string]model.Reservation
	byPair       map[pairKey]string
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		events:       make(map[string]model.Event, len(s.events)),
		reservations: make(map[string]model.Reservation, len(s.reservations)),
		byPair:       make(map[pairKey]string, len(s.byPair)),
	}
	for k, v := range s.events {
		snap.events[k] = v
	}
	for k, v := range s.reservations {
		snap.reservations[k] = v
	}
	for k, v := range s.byPair {
		snap.byPair[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.events = snap.events
	s.reservations = snap.reservations
	s.byPair = snap.byPair
}

// MemoryEventRepository is the in-memory counterpart of EventRepository.
type MemoryEventRepository struct {
	s *MemoryStore
}

func (r *MemoryEventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.s.WithTx(ctx, fn)
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	r.s.locked(ctx, func() {
		r.s.events[event.ID] = *event
	})
	return nil
}

func (r *MemoryEventRepository) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	var out []model.Event
	r.s.locked(ctx, func() {
		for _, e := range r.s.events {
			if status == "" || e.Status == status {
				out = append(out, e)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var (
		e  model.Event
		ok bool
	)
	r.s.locked(ctx, func() {
		e, ok = r.s.events[id]
	})
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

// GetForUpdate is GetByID: the store lock already serialises writers.
func (r *MemoryEventRepository) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *MemoryEventRepository) UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	var (
		e  model.Event
		ok bool
	)
	r.s.locked(ctx, func() {
		e, ok = r.s.events[id]
		if ok {
			e.Status = status
			r.s.events[id] = e
		}
	})
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

func (r *MemoryEventRepository) AdjustSeats(ctx context.Context, id string, delta int) (*model.Event, error) {
	var (
		e   model.Event
		err error
	)
	r.s.locked(ctx, func() {
		cur, ok := r.s.events[id]
		if !ok {
			err = model.ErrNotFound
			return
		}
		next := cur.SeatsTaken + delta
		if next < 0 || next > cur.Capacity {
			err = model.ErrSeatBounds
			return
		}
		cur.SeatsTaken = next
		r.s.events[id] = cur
		e = cur
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MemoryReservationRepository is the in-memory counterpart of ReservationRepository.
type MemoryReservationRepository struct {
	s *MemoryStore
}

func (r *MemoryReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.s.WithTx(ctx, fn)
}

func (r *MemoryReservationRepository) Create(ctx context.Context, participantID, eventID string, createdAt time.Time) (*model.Reservation, error) {
	res := model.Reservation{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		EventID:       eventID,
		Status:        model.ReservationPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	var err error
	r.s.locked(ctx, func() {
		if _, ok := r.s.events[eventID]; !ok {
			err = model.ErrNotFound
			return
		}
		key := pairKey{participantID: participantID, eventID: eventID}
		if _, taken := r.s.byPair[key]; taken {
			err = model.ErrDuplicateReservation
			return
		}
		r.s.byPair[key] = res.ID
		r.s.reservations[res.ID] = res
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *MemoryReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	var (
		res model.Reservation
		ok  bool
	)
	r.s.locked(ctx, func() {
		res, ok = r.s.reservations[id]
	})
	if !ok {
		return nil, model.ErrNotFound
	}
	return &res, nil
}

func (r *MemoryReservationRepository) FindExisting(ctx context.Context, participantID, eventID string) (*model.Reservation, error) {
	var (
		res model.Reservation
		ok  bool
	)
	r.s.locked(ctx, func() {
		var id string
		if id, ok = r.s.byPair[pairKey{participantID: participantID, eventID: eventID}]; ok {
			res = r.s.reservations[id]
		}
	})
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *MemoryReservationRepository) SetStatus(ctx context.Context, id string, status model.ReservationStatus, updatedAt time.Time) (*model.Reservation, error) {
	var (
		res model.Reservation
		ok  bool
	)
	r.s.locked(ctx, func() {
		res, ok = r.s.reservations[id]
		if ok {
			res.Status = status
			res.UpdatedAt = updatedAt
			r.s.reservations[id] = res
		}
	})
	if !ok {
		return nil, model.ErrNotFound
	}
	return &res, nil
}

func (r *MemoryReservationRepository) ListByParticipant(ctx context.Context, participantID string) ([]model.Reservation, error) {
	return r.filter(ctx, func(res *model.Reservation) bool {
		return res.ParticipantID == participantID
	}), nil
}

func (r *MemoryReservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	return r.filter(ctx, filter.Matches), nil
}

func (r *MemoryReservationRepository) filter(ctx context.Context, keep func(*model.Reservation) bool) []model.Reservation {
	var out []model.Reservation
	r.s.locked(ctx, func() {
		for _, res := range r.s.reservations {
			if keep(&res) {
				out = append(out, res)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
