package service

import (
	"context"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/clock"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/Shivanand-hulikatti/event-reservations/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventService() *EventService {
	store := repository.NewMemoryStore()
	return NewEventService(store.Events(), clock.NewFixed(testNow), discardLogger())
}

func validEventRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:    "  Go Meetup ",
		Location: "Bengaluru",
		Date:     "2026-04-10",
		Time:     "18:30",
		Capacity: 50,
	}
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newEventService()

	ev, err := svc.CreateEvent(ctx, admin, validEventRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Go Meetup", ev.Title)
	assert.Equal(t, model.EventDraft, ev.Status)
	assert.Equal(t, 0, ev.SeatsTaken)
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), ev.Date)
	assert.Equal(t, testNow, ev.CreatedAt)
}

func TestCreateEvent_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  model.Caller
		mutate  func(*model.CreateEventRequest)
		wantErr error
	}{
		{
			name:    "participant",
			caller:  alice,
			mutate:  func(*model.CreateEventRequest) {},
			wantErr: model.ErrForbidden,
		},
		{
			name:    "blank title",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Title = "   " },
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "zero capacity",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Capacity = 0 },
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "capacity too large",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Capacity = 100_001 },
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "bad date",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Date = "10/04/2026" },
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "bad time",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Time = "25:99" },
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "unknown status",
			caller:  admin,
			mutate:  func(r *model.CreateEventRequest) { r.Status = "ARCHIVED" },
			wantErr: model.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validEventRequest()
			tt.mutate(&req)
			_, err := newEventService().CreateEvent(ctx, tt.caller, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEventVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newEventService()

	draft, err := svc.CreateEvent(ctx, admin, validEventRequest())
	require.NoError(t, err)
	req := validEventRequest()
	req.Status = model.EventPublished
	published, err := svc.CreateEvent(ctx, admin, req)
	require.NoError(t, err)

	all, err := svc.ListEvents(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := svc.ListEvents(ctx, alice)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, published.ID, visible[0].ID)

	_, err = svc.GetEvent(ctx, alice, draft.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := svc.GetEvent(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestUpdateEventStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newEventService()
	ev, err := svc.CreateEvent(ctx, admin, validEventRequest())
	require.NoError(t, err)

	_, err = svc.UpdateEventStatus(ctx, alice, ev.ID, model.EventPublished)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.UpdateEventStatus(ctx, admin, ev.ID, "LIVE")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	_, err = svc.UpdateEventStatus(ctx, admin, "missing", model.EventPublished)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := svc.UpdateEventStatus(ctx, admin, ev.ID, model.EventPublished)
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, got.Status)
}
