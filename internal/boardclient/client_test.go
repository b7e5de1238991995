package boardclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderon/shopdesk-api/internal/models"
)

func TestClientPatchStatusOK(t *testing.T) {
	id := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/appointments/"+id.String()+"/status", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req models.StatusPatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.StatusReady, req.Status)
		assert.Equal(t, 3, req.Version)

		json.NewEncoder(w).Encode(models.BoardCard{
			ID: id, Status: req.Status, Position: req.Position, Version: req.Version + 1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	card, err := c.PatchStatus(context.Background(), id, models.StatusPatchRequest{
		Status: models.StatusReady, Position: 2, Version: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, card.Version)
	assert.Equal(t, 2, card.Position)
}

func TestClientPatchStatusConflict(t *testing.T) {
	id := uuid.New()
	current := models.Appointment{
		ID:       id,
		Status:   models.StatusInProgress,
		Position: 0,
		Version:  7,
		Customer: models.Customer{Name: "Avery"},
		Vehicle:  models.Vehicle{Make: "Honda", Model: "Civic", Year: 2019},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":       "Appointment was changed by someone else",
			"appointment": current,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.PatchStatus(context.Background(), id, models.StatusPatchRequest{
		Status: models.StatusReady, Version: 6,
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 7, conflict.Current.Version)
	assert.Equal(t, models.StatusInProgress, conflict.Current.Status)
	assert.Equal(t, "Avery", conflict.Current.CustomerName)
	assert.Equal(t, "2019 Honda Civic", conflict.Current.VehicleInfo)
}

func TestClientFetchBoardFlattensColumns(t *testing.T) {
	a := models.BoardCard{ID: uuid.New(), Status: models.StatusScheduled, Position: 0}
	b := models.BoardCard{ID: uuid.New(), Status: models.StatusReady, Position: 0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/board", r.URL.Path)
		assert.Equal(t, "t1", r.URL.Query().Get("technicianId"))
		json.NewEncoder(w).Encode(boardResponse{Columns: []models.BoardColumn{
			{Status: models.StatusScheduled, Cards: []models.BoardCard{a}},
			{Status: models.StatusReady, Cards: []models.BoardCard{b}},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	cards, err := c.FetchBoard(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, a.ID, cards[0].ID)
	assert.Equal(t, b.ID, cards[1].ID)
}

func TestClientRequestHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, "")
	_, err := c.FetchBoard(ctx, "")
	assert.Error(t, err)
}
