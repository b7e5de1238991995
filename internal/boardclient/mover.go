package boardclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/calderon/shopdesk-api/internal/board"
	"github.com/calderon/shopdesk-api/internal/models"
)

var (
	ErrUnknownCard   = errors.New("boardclient: card not in local cache")
	ErrInvalidStatus = errors.New("boardclient: unknown target status")
)

const (
	defaultBoardPollInterval   = 30 * time.Second
	defaultMessagePollInterval = 10 * time.Second
)

// Target is where a card should land.
type Target struct {
	Status   models.AppointmentStatus
	Position int
}

// Drop describes a completed drag gesture: the card left column From at
// visual index FromIndex and was released over column To at index ToIndex.
type Drop struct {
	CardID    uuid.UUID
	From      models.AppointmentStatus
	FromIndex int
	To        models.AppointmentStatus
	ToIndex   int
}

// ResolveDrop translates a drop into a move target. ok is false when the
// card was released exactly where it started, in which case no call is made.
func ResolveDrop(d Drop) (Target, bool) {
	if d.To == d.From && d.ToIndex == d.FromIndex {
		return Target{}, false
	}
	return Target{Status: d.To, Position: d.ToIndex}, true
}

// Mover applies optimistic moves to a board.Store and confirms them against
// the API. One mutator at a time; network completions re-enter through the
// store's lock and are dropped when a later move superseded them.
type Mover struct {
	store *board.Store
	api   API

	// OnError surfaces rollback causes to the UI (toast). Optional.
	OnError func(cardID uuid.UUID, err error)

	mu       sync.Mutex
	gens     map[uuid.UUID]uint64
	views    map[string]string // view key -> technicianId filter ("" = all)
	inflight int

	wg sync.WaitGroup
}

func NewMover(store *board.Store, api API) *Mover {
	return &Mover{
		store: store,
		api:   api,
		gens:  make(map[uuid.UUID]uint64),
		views: make(map[string]string),
	}
}

// RegisterView declares a board view and loads it from the server.
func (m *Mover) RegisterView(ctx context.Context, key, technicianID string) error {
	m.mu.Lock()
	m.views[key] = technicianID
	m.mu.Unlock()
	return m.RefreshView(ctx, key)
}

// RefreshView refetches one view's authoritative state.
func (m *Mover) RefreshView(ctx context.Context, key string) error {
	m.mu.Lock()
	technicianID, ok := m.views[key]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	cards, err := m.api.FetchBoard(ctx, technicianID)
	if err != nil {
		return err
	}
	m.store.ReplaceView(key, cards)
	return nil
}

// Move applies the optimistic status transition. The local views are updated
// synchronously before this returns; confirmation, reconciliation and
// rollback happen asynchronously.
func (m *Mover) Move(ctx context.Context, viewKey string, cardID uuid.UUID, target Target) error {
	if !target.Status.Valid() {
		return ErrInvalidStatus
	}

	card, ok := m.store.Card(viewKey, cardID)
	if !ok {
		return ErrUnknownCard
	}

	// dropping a card back onto its own slot is a no-op, skip the network
	if status, idx, ok := m.store.Location(viewKey, cardID); ok &&
		status == target.Status && idx == target.Position {
		return nil
	}

	snap := m.store.Snapshot(cardID)
	m.store.MoveCard(cardID, target.Status, target.Position)

	m.mu.Lock()
	m.gens[cardID]++
	gen := m.gens[cardID]
	m.inflight++
	m.mu.Unlock()

	m.wg.Add(1)
	go m.confirm(ctx, cardID, card.Version, target, snap, gen)
	return nil
}

func (m *Mover) confirm(ctx context.Context, cardID uuid.UUID, version int, target Target, snap board.Snapshot, gen uint64) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}()

	updated, err := m.api.PatchStatus(ctx, cardID, models.StatusPatchRequest{
		Status:   target.Status,
		Position: target.Position,
		Version:  version,
	})

	m.mu.Lock()
	superseded := m.gens[cardID] != gen
	m.mu.Unlock()
	if superseded {
		// a later move owns the card now; this response is stale either way
		log.WithField("appointment", cardID).Debug("discarding superseded move response")
		return
	}

	if err == nil {
		m.store.Reconcile(updated)
		return
	}

	m.store.Restore(snap)
	m.notify(cardID, err)

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		log.WithField("appointment", cardID).Warn("move rejected by concurrent edit, refetching board")
		m.refreshAll(ctx)
		return
	}
	log.WithField("appointment", cardID).WithError(err).Error("move failed, rolled back")
}

func (m *Mover) refreshAll(ctx context.Context) {
	m.mu.Lock()
	keys := make([]string, 0, len(m.views))
	for key := range m.views {
		keys = append(keys, key)
	}
	m.mu.Unlock()

	for _, key := range keys {
		if err := m.RefreshView(ctx, key); err != nil {
			log.WithField("view", key).WithError(err).Warn("board refetch failed")
		}
	}
}

func (m *Mover) notify(cardID uuid.UUID, err error) {
	if m.OnError != nil {
		m.OnError(cardID, err)
	}
}

// Wait blocks until every in-flight confirmation settled. Test hook and
// shutdown aid.
func (m *Mover) Wait() {
	m.wg.Wait()
}

// PollBoard refreshes a view on an interval until ctx is cancelled. Ticks
// arriving while a move is in flight are skipped so a refresh cannot clobber
// optimistic state that has not settled yet.
func (m *Mover) PollBoard(ctx context.Context, viewKey string, interval time.Duration) {
	if interval <= 0 {
		interval = defaultBoardPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			busy := m.inflight > 0
			m.mu.Unlock()
			if busy {
				continue
			}
			if err := m.RefreshView(ctx, viewKey); err != nil && ctx.Err() == nil {
				log.WithField("view", viewKey).WithError(err).Warn("board poll failed")
			}
		}
	}
}

// PollMessages fetches an appointment's message thread on an interval until
// ctx is cancelled, delivering each batch to fn.
func (m *Mover) PollMessages(ctx context.Context, appointmentID uuid.UUID, interval time.Duration, fn func([]models.Message)) {
	if interval <= 0 {
		interval = defaultMessagePollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			messages, err := m.api.FetchMessages(ctx, appointmentID)
			if err != nil {
				if ctx.Err() == nil {
					log.WithField("appointment", appointmentID).WithError(err).Warn("message poll failed")
				}
				continue
			}
			fn(messages)
		}
	}
}
