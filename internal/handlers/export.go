package handlers

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/export"
	"github.com/calderon/shopdesk-api/internal/models"
)

// ExportAppointments streams the visible appointment set as CSV or JSON.
// Fields are picked with ?fields=customer_name,service; format defaults to csv.
func ExportAppointments(c *fiber.Ctx) error {
	var fields []string
	if raw := c.Query("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if !export.KnownField(f) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unknown field: " + f,
				})
			}
			fields = append(fields, f)
		}
	}

	q := database.DB.Model(&models.Appointment{}).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Services")
	if status := c.Query("status"); status != "" {
		if !models.AppointmentStatus(status).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown status",
			})
		}
		q = q.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := q.Order("start_time ASC").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	var buf bytes.Buffer
	switch format := c.Query("format", "csv"); format {
	case "csv":
		if err := export.CSV(&buf, appointments, fields); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build export",
			})
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="appointments.csv"`)
	case "json":
		if err := export.JSON(&buf, appointments, fields); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build export",
			})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown format: " + format,
		})
	}

	return c.Send(buf.Bytes())
}
