// Package boardclient implements the console's optimistic status-board
// protocol: moves are applied to the local board views synchronously, then
// confirmed against the REST API; version conflicts roll the views back to
// their pre-move snapshots.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/models"
)

// API is the slice of the shopdesk REST API the board client needs.
type API interface {
	FetchBoard(ctx context.Context, technicianID string) ([]models.BoardCard, error)
	PatchStatus(ctx context.Context, id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error)
	FetchMessages(ctx context.Context, appointmentID uuid.UUID) ([]models.Message, error)
}

// ConflictError is returned when the server rejects a patch because the
// client's cached version is stale. Current carries the authoritative card.
type ConflictError struct {
	Current models.BoardCard
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: appointment %s is at version %d", e.Current.ID, e.Current.Version)
}

// Client talks to the shopdesk API over HTTP.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type boardResponse struct {
	Columns []models.BoardColumn `json:"columns"`
}

type conflictResponse struct {
	Error       string              `json:"error"`
	Appointment *models.Appointment `json:"appointment"`
}

func (c *Client) FetchBoard(ctx context.Context, technicianID string) ([]models.BoardCard, error) {
	u := c.BaseURL + "/api/board"
	if technicianID != "" {
		u += "?technicianId=" + url.QueryEscape(technicianID)
	}

	var resp boardResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp, nil); err != nil {
		return nil, err
	}

	var cards []models.BoardCard
	for _, col := range resp.Columns {
		cards = append(cards, col.Cards...)
	}
	return cards, nil
}

func (c *Client) PatchStatus(ctx context.Context, id uuid.UUID, req models.StatusPatchRequest) (models.BoardCard, error) {
	u := fmt.Sprintf("%s/api/appointments/%s/status", c.BaseURL, id)

	var card models.BoardCard
	err := c.do(ctx, http.MethodPatch, u, req, &card, func(status int, body []byte) error {
		if status != http.StatusConflict {
			return nil
		}
		var conflict conflictResponse
		if jsonErr := json.Unmarshal(body, &conflict); jsonErr == nil && conflict.Appointment != nil {
			return &ConflictError{Current: models.BoardCardFrom(conflict.Appointment)}
		}
		return &ConflictError{}
	})
	if err != nil {
		return models.BoardCard{}, err
	}
	return card, nil
}

func (c *Client) FetchMessages(ctx context.Context, appointmentID uuid.UUID) ([]models.Message, error) {
	u := fmt.Sprintf("%s/api/appointments/%s/messages", c.BaseURL, appointmentID)

	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, u, nil, &messages, nil); err != nil {
		return nil, err
	}
	return messages, nil
}

// do issues one JSON request. onStatus, when set, may translate a non-2xx
// status into a typed error before the generic one is built.
func (c *Client) do(ctx context.Context, method, u string, in, out interface{}, onStatus func(int, []byte) error) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if onStatus != nil {
			if typed := onStatus(resp.StatusCode, raw); typed != nil {
				return typed
			}
		}
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, u, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
