// Package board holds the in-memory board views used by the admin console.
// A Store keeps one View per cached board query (the full board, a
// per-technician board, ...) and supports snapshot/restore so optimistic
// mutations can be rolled back exactly.
package board

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/models"
)

// View is a single cached board query: cards by id plus per-column order.
type View struct {
	key     string
	cards   map[uuid.UUID]*models.BoardCard
	columns map[models.AppointmentStatus][]uuid.UUID
}

// Store holds every cached board view. All access goes through one mutex;
// the server is the arbiter of truth, the store only mirrors it.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewStore() *Store {
	return &Store{views: make(map[string]*View)}
}

// ReplaceView rebuilds a view from an authoritative server payload. Cards are
// ordered by position; ties keep the payload order.
func (s *Store) ReplaceView(key string, cards []models.BoardCard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &View{
		key:     key,
		cards:   make(map[uuid.UUID]*models.BoardCard, len(cards)),
		columns: make(map[models.AppointmentStatus][]uuid.UUID),
	}

	sorted := make([]models.BoardCard, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Status != sorted[j].Status {
			return sorted[i].Status < sorted[j].Status
		}
		return sorted[i].Position < sorted[j].Position
	})

	for i := range sorted {
		card := sorted[i]
		v.cards[card.ID] = &card
		v.columns[card.Status] = append(v.columns[card.Status], card.ID)
	}
	for status := range v.columns {
		v.reindex(status)
	}

	s.views[key] = v
}

// DropView removes a cached view (e.g. when its console tab closes).
func (s *Store) DropView(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, key)
}

// Card returns a copy of the card in the given view.
func (s *Store) Card(viewKey string, id uuid.UUID) (models.BoardCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if !ok {
		return models.BoardCard{}, false
	}
	card, ok := v.cards[id]
	if !ok {
		return models.BoardCard{}, false
	}
	return *card, true
}

// Location reports the column and visual index of a card within a view.
func (s *Store) Location(viewKey string, id uuid.UUID) (models.AppointmentStatus, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if !ok {
		return "", 0, false
	}
	card, ok := v.cards[id]
	if !ok {
		return "", 0, false
	}
	for i, cardID := range v.columns[card.Status] {
		if cardID == id {
			return card.Status, i, true
		}
	}
	return card.Status, card.Position, true
}

// MoveCard applies a local move to every view containing the card: the card
// leaves its current column, enters the target column at the given index
// (clamped), and both columns are reindexed.
func (s *Store) MoveCard(id uuid.UUID, status models.AppointmentStatus, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.views {
		if _, ok := v.cards[id]; ok {
			v.move(id, status, index)
		}
	}
}

// UpsertCard inserts a card into a view at its position, or overwrites and
// repositions it when already present. Used to apply server broadcast events.
func (s *Store) UpsertCard(viewKey string, card models.BoardCard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if !ok {
		return
	}
	if existing, ok := v.cards[card.ID]; ok {
		*existing = card
		v.move(card.ID, card.Status, card.Position)
		return
	}

	stored := card
	v.cards[card.ID] = &stored
	col := v.columns[card.Status]
	index := card.Position
	if index < 0 {
		index = 0
	}
	if index > len(col) {
		index = len(col)
	}
	col = append(col, uuid.Nil)
	copy(col[index+1:], col[index:])
	col[index] = card.ID
	v.columns[card.Status] = col
	v.reindex(card.Status)
}

// RemoveCard deletes a card from every view containing it and closes the gap
// it leaves in each column.
func (s *Store) RemoveCard(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.views {
		card, ok := v.cards[id]
		if !ok {
			continue
		}
		col := v.columns[card.Status]
		for i, cardID := range col {
			if cardID == id {
				v.columns[card.Status] = append(col[:i], col[i+1:]...)
				break
			}
		}
		delete(v.cards, id)
		v.reindex(card.Status)
	}
}

// Reconcile overwrites a card with the authoritative record returned by the
// server, repositioning it in every view that contains it.
func (s *Store) Reconcile(card models.BoardCard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.views {
		existing, ok := v.cards[card.ID]
		if !ok {
			continue
		}
		*existing = card
		v.move(card.ID, card.Status, card.Position)
	}
}

// Columns returns the derived columns of a view in display order.
func (s *Store) Columns(viewKey string) []models.BoardColumn {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if !ok {
		return nil
	}

	cols := make([]models.BoardColumn, 0, len(models.BoardStatuses))
	for _, status := range models.BoardStatuses {
		col := models.BoardColumn{Status: status, Title: status.Title()}
		for _, id := range v.columns[status] {
			card := *v.cards[id]
			col.Cards = append(col.Cards, card)
			col.Count++
			col.SumCents += card.TotalCents
		}
		cols = append(cols, col)
	}
	return cols
}

// Cards returns every card of a view, column order first.
func (s *Store) Cards(viewKey string) []models.BoardCard {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if !ok {
		return nil
	}
	var out []models.BoardCard
	for _, status := range models.BoardStatuses {
		for _, id := range v.columns[status] {
			out = append(out, *v.cards[id])
		}
	}
	return out
}

// ViewKeys lists the keys of views currently containing the card.
func (s *Store) ViewKeys(id uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, v := range s.views {
		if _, ok := v.cards[id]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (v *View) move(id uuid.UUID, status models.AppointmentStatus, index int) {
	card, ok := v.cards[id]
	if !ok {
		return
	}

	// remove from current column
	oldStatus := card.Status
	from := v.columns[oldStatus]
	for i, cardID := range from {
		if cardID == id {
			v.columns[oldStatus] = append(from[:i], from[i+1:]...)
			break
		}
	}

	to := v.columns[status]
	if index < 0 {
		index = 0
	}
	if index > len(to) {
		index = len(to)
	}
	to = append(to, uuid.Nil)
	copy(to[index+1:], to[index:])
	to[index] = id
	v.columns[status] = to

	card.Status = status
	v.reindex(oldStatus)
	v.reindex(status)
}

// reindex rewrites positions to 0..n-1 so ordering stays dense after moves.
func (v *View) reindex(status models.AppointmentStatus) {
	for i, id := range v.columns[status] {
		v.cards[id].Position = i
	}
}
