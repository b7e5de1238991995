package boardclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderon/shopdesk-api/internal/board"
	"github.com/calderon/shopdesk-api/internal/models"
)

// fakeAPI scripts server behavior per call.
type fakeAPI struct {
	mu           sync.Mutex
	board        []models.BoardCard
	boardsByTech map[string][]models.BoardCard
	patches      []models.StatusPatchRequest
	fetches      int

	patchFn func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error)
}

func (f *fakeAPI) FetchBoard(ctx context.Context, technicianID string) ([]models.BoardCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.boardsByTech != nil {
		return append([]models.BoardCard(nil), f.boardsByTech[technicianID]...), nil
	}
	return append([]models.BoardCard(nil), f.board...), nil
}

func (f *fakeAPI) PatchStatus(ctx context.Context, id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
	f.mu.Lock()
	f.patches = append(f.patches, req)
	fn := f.patchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id, req)
	}
	return models.BoardCard{}, errors.New("unscripted patch")
}

func (f *fakeAPI) FetchMessages(ctx context.Context, appointmentID uuid.UUID) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeAPI) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func boardCard(name string, status models.AppointmentStatus, pos int) models.BoardCard {
	return models.BoardCard{
		ID:           uuid.New(),
		CustomerName: name,
		VehicleInfo:  "2015 Toyota Camry",
		Status:       status,
		Position:     pos,
		Version:      1,
		StartTime:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

// confirmedMove echoes the requested move back as the authoritative card.
func confirmedMove(cards ...models.BoardCard) func(uuid.UUID, models.StatusPatchRequest) (models.BoardCard, error) {
	return func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		for _, c := range cards {
			if c.ID == id {
				c.Status = req.Status
				c.Position = req.Position
				c.Version = req.Version + 1
				return c, nil
			}
		}
		return models.BoardCard{}, errors.New("no such card")
	}
}

func newMover(t *testing.T, api *fakeAPI) (*Mover, *board.Store) {
	t.Helper()
	store := board.NewStore()
	m := NewMover(store, api)
	require.NoError(t, m.RegisterView(context.Background(), "main", ""))
	return m, store
}

func TestMoveUpdatesLocalStateBeforeResponse(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 0)
	gate := make(chan struct{})

	api := &fakeAPI{board: []models.BoardCard{apt}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		<-gate // hold the response until the assertion below ran
		return confirmedMove(apt)(id, req)
	}

	m, store := newMover(t, api)
	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusInProgress, Position: 0}))

	// state changed synchronously, no response has arrived yet
	got, ok := store.Card("main", apt.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, got.Status)

	close(gate)
	m.Wait()

	got, _ = store.Card("main", apt.ID)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, 2, got.Version, "reconciled with the server's version bump")
}

func TestConflictRollsBackExactly(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 1)
	ahead := boardCard("Blake", models.StatusScheduled, 0)

	api := &fakeAPI{board: []models.BoardCard{ahead, apt}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		stale := apt
		stale.Version = 5
		return models.BoardCard{}, &ConflictError{Current: stale}
	}

	m, store := newMover(t, api)

	var toastMu sync.Mutex
	var toasts []error
	m.OnError = func(cardID uuid.UUID, err error) {
		toastMu.Lock()
		toasts = append(toasts, err)
		toastMu.Unlock()
	}

	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusInProgress, Position: 0}))
	m.Wait()

	got, _ := store.Card("main", apt.ID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Equal(t, 1, got.Position)

	toastMu.Lock()
	defer toastMu.Unlock()
	require.Len(t, toasts, 1)
	var conflict *ConflictError
	assert.ErrorAs(t, toasts[0], &conflict)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.GreaterOrEqual(t, api.fetches, 2, "board refetched after conflict")
}

func TestNoopDropSkipsNetwork(t *testing.T) {
	apt := boardCard("Avery", models.StatusReady, 0)
	api := &fakeAPI{board: []models.BoardCard{apt}}

	m, store := newMover(t, api)
	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusReady, Position: 0}))
	m.Wait()

	assert.Equal(t, 0, api.patchCount())
	got, _ := store.Card("main", apt.ID)
	assert.Equal(t, models.StatusReady, got.Status)
}

func TestMovesOnDifferentCardsRollBackIndependently(t *testing.T) {
	good := boardCard("Avery", models.StatusScheduled, 0)
	bad := boardCard("Blake", models.StatusScheduled, 0)

	api := &fakeAPI{board: []models.BoardCard{good}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		if id == bad.ID {
			return models.BoardCard{}, &ConflictError{Current: bad}
		}
		return confirmedMove(good)(id, req)
	}

	store := board.NewStore()
	m := NewMover(store, api)
	// two cached views, one per technician, so the snapshots are disjoint
	api.boardsByTech = map[string][]models.BoardCard{
		"t1": {good},
		"t2": {bad},
	}
	require.NoError(t, m.RegisterView(context.Background(), "tech-1", "t1"))
	require.NoError(t, m.RegisterView(context.Background(), "tech-2", "t2"))

	// the conflict refetch must see the server's post-move truth for t1
	goodReady := good
	goodReady.Status = models.StatusReady
	goodReady.Position = 0
	goodReady.Version = 2
	api.mu.Lock()
	api.boardsByTech["t1"] = []models.BoardCard{goodReady}
	api.mu.Unlock()

	require.NoError(t, m.Move(context.Background(), "tech-1", good.ID, Target{Status: models.StatusReady, Position: 0}))
	require.NoError(t, m.Move(context.Background(), "tech-2", bad.ID, Target{Status: models.StatusReady, Position: 0}))
	m.Wait()

	gotGood, _ := store.Card("tech-1", good.ID)
	gotBad, _ := store.Card("tech-2", bad.ID)
	assert.Equal(t, models.StatusReady, gotGood.Status, "successful move survives the other card's rollback")
	assert.Equal(t, models.StatusScheduled, gotBad.Status, "conflicted move rolled back")
}

// The worked example: apt-1 SCHEDULED/1 -> IN_PROGRESS/1, then the mock API
// reports a conflict and the card reverts to SCHEDULED.
func TestScheduledToInProgressConflictExample(t *testing.T) {
	other := boardCard("Blake", models.StatusScheduled, 0)
	apt1 := boardCard("Avery", models.StatusScheduled, 1)
	busy := boardCard("Casey", models.StatusInProgress, 0)

	conflict := make(chan struct{})
	api := &fakeAPI{board: []models.BoardCard{other, apt1, busy}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		<-conflict
		return models.BoardCard{}, &ConflictError{Current: apt1}
	}

	m, store := newMover(t, api)
	require.NoError(t, m.Move(context.Background(), "main", apt1.ID, Target{Status: models.StatusInProgress, Position: 1}))

	got, _ := store.Card("main", apt1.ID)
	assert.Equal(t, models.StatusInProgress, got.Status, "visible immediately after the call")
	assert.Equal(t, 1, got.Position)

	close(conflict)
	m.Wait()

	got, _ = store.Card("main", apt1.ID)
	assert.Equal(t, models.StatusScheduled, got.Status, "reverted after the conflict")
	assert.Equal(t, 1, got.Position)
}

func TestLaterMoveSupersedesInFlight(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 0)

	firstSent := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{board: []models.BoardCard{apt}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		if req.Status == models.StatusInProgress {
			close(firstSent)
			<-release // first request stalls in flight
			return confirmedMove(apt)(id, req)
		}
		return confirmedMove(apt)(id, req)
	}

	m, store := newMover(t, api)

	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusInProgress, Position: 0}))
	<-firstSent
	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusReady, Position: 0}))
	close(release)
	m.Wait()

	got, _ := store.Card("main", apt.ID)
	assert.Equal(t, models.StatusReady, got.Status, "later optimistic state wins, stale response dropped")
}

func TestNetworkErrorRollsBack(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 0)

	api := &fakeAPI{board: []models.BoardCard{apt}}
	api.patchFn = func(id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
		return models.BoardCard{}, errors.New("connection reset")
	}

	m, store := newMover(t, api)

	var notified bool
	var mu sync.Mutex
	m.OnError = func(cardID uuid.UUID, err error) {
		mu.Lock()
		notified = true
		mu.Unlock()
	}

	require.NoError(t, m.Move(context.Background(), "main", apt.ID, Target{Status: models.StatusCompleted, Position: 0}))
	m.Wait()

	got, _ := store.Card("main", apt.ID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	mu.Lock()
	assert.True(t, notified)
	mu.Unlock()
}

func TestMoveValidation(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 0)
	api := &fakeAPI{board: []models.BoardCard{apt}}
	m, _ := newMover(t, api)

	assert.ErrorIs(t, m.Move(context.Background(), "main", apt.ID, Target{Status: "fixed", Position: 0}), ErrInvalidStatus)
	assert.ErrorIs(t, m.Move(context.Background(), "main", uuid.New(), Target{Status: models.StatusReady, Position: 0}), ErrUnknownCard)
	assert.Equal(t, 0, api.patchCount())
}

func TestResolveDrop(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		drop   Drop
		want   Target
		wantOK bool
	}{
		{
			name:   "cross column",
			drop:   Drop{CardID: id, From: models.StatusScheduled, FromIndex: 1, To: models.StatusInProgress, ToIndex: 0},
			want:   Target{Status: models.StatusInProgress, Position: 0},
			wantOK: true,
		},
		{
			name:   "reorder within column",
			drop:   Drop{CardID: id, From: models.StatusScheduled, FromIndex: 2, To: models.StatusScheduled, ToIndex: 0},
			want:   Target{Status: models.StatusScheduled, Position: 0},
			wantOK: true,
		},
		{
			name:   "same slot is a no-op",
			drop:   Drop{CardID: id, From: models.StatusReady, FromIndex: 3, To: models.StatusReady, ToIndex: 3},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveDrop(tt.drop)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPollBoardStopsOnCancel(t *testing.T) {
	apt := boardCard("Avery", models.StatusScheduled, 0)
	api := &fakeAPI{board: []models.BoardCard{apt}}
	m, _ := newMover(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.PollBoard(ctx, "main", 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller kept running after cancellation")
	}

	api.mu.Lock()
	fetches := api.fetches
	api.mu.Unlock()
	assert.Greater(t, fetches, 1, "poller refreshed the view at least once")
}
