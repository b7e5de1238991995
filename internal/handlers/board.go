package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/cache"
	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/models"
)

// errStaleVersion aborts a write transaction when the client's version is
// behind the stored one.
var errStaleVersion = errors.New("stale appointment version")

var boardCache *cache.Boards

// InitBoardCache wires the optional redis cache for board reads.
func InitBoardCache(b *cache.Boards) {
	boardCache = b
}

func evictBoardCache(c *fiber.Ctx) {
	boardCache.Evict(c.UserContext())
}

type boardResponse struct {
	Columns []models.BoardColumn `json:"columns"`
}

// GetBoard returns every status column with its cards and aggregates.
// Optional technicianId narrows the board to one technician's workload.
func GetBoard(c *fiber.Ctx) error {
	cacheKey := "all"
	q := database.DB.Model(&models.Appointment{}).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Services")

	if techID := c.Query("technicianId"); techID != "" {
		id, err := uuid.Parse(techID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid technician ID",
			})
		}
		q = q.Where("technician_id = ?", id)
		cacheKey = "tech:" + id.String()
	}

	if payload, ok := boardCache.Get(c.UserContext(), cacheKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	var appointments []models.Appointment
	if err := q.Order("status ASC, position ASC").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch board",
		})
	}

	byStatus := make(map[models.AppointmentStatus][]models.BoardCard)
	for i := range appointments {
		card := models.BoardCardFrom(&appointments[i])
		byStatus[card.Status] = append(byStatus[card.Status], card)
	}

	resp := boardResponse{Columns: make([]models.BoardColumn, 0, len(models.BoardStatuses))}
	for _, status := range models.BoardStatuses {
		col := models.BoardColumn{Status: status, Title: status.Title(), Cards: byStatus[status]}
		for _, card := range col.Cards {
			col.Count++
			col.SumCents += card.TotalCents
		}
		resp.Columns = append(resp.Columns, col)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode board",
		})
	}
	boardCache.Set(c.UserContext(), cacheKey, payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
