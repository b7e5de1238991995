package board

import (
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/models"
)

// Snapshot is a deep copy of every view that contained a card at capture
// time. Restore puts the copies back verbatim.
type Snapshot struct {
	views map[string]*View
}

// Snapshot captures all views containing the card. Views added after the
// capture are untouched by Restore.
func (s *Store) Snapshot(id uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{views: make(map[string]*View)}
	for key, v := range s.views {
		if _, ok := v.cards[id]; ok {
			snap.views[key] = v.clone()
		}
	}
	return snap
}

// Restore replaces the captured views with their snapshot copies.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range snap.views {
		s.views[key] = v.clone()
	}
}

// clone deep-copies a view so later mutations cannot leak into a snapshot.
func (v *View) clone() *View {
	c := &View{
		key:     v.key,
		cards:   make(map[uuid.UUID]*models.BoardCard, len(v.cards)),
		columns: make(map[models.AppointmentStatus][]uuid.UUID, len(v.columns)),
	}
	for id, card := range v.cards {
		copied := *card
		c.cards[id] = &copied
	}
	for status, ids := range v.columns {
		c.columns[status] = append([]uuid.UUID(nil), ids...)
	}
	return c
}
