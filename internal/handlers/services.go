package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/middleware"
	"github.com/calderon/shopdesk-api/internal/models"
)

// CreateServiceItem adds a line item to an appointment
func CreateServiceItem(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var apt models.Appointment
	if err := database.DB.First(&apt, aptID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}

	var req models.CreateServiceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Service name is required",
		})
	}

	item := models.ServiceItem{
		AppointmentID: aptID,
		Name:          req.Name,
		PriceCents:    req.PriceCents,
		Hours:         req.Hours,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add service",
		})
	}

	// totals feed the column aggregates
	evictBoardCache(c)
	Board.Broadcast(middleware.GetUserID(c), WSEvent{
		Type: EventAppointmentUpdated,
		Data: fiber.Map{"id": aptID},
	})

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateServiceItem edits a line item
func UpdateServiceItem(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}
	itemID, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid service ID",
		})
	}

	var item models.ServiceItem
	if err := database.DB.
		Where("id = ? AND appointment_id = ?", itemID, aptID).
		First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Service not found",
		})
	}

	var req models.UpdateServiceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.PriceCents != nil {
		item.PriceCents = *req.PriceCents
	}
	if req.Hours != nil {
		item.Hours = *req.Hours
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}

	if err := database.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update service",
		})
	}

	evictBoardCache(c)

	return c.JSON(item)
}

// DeleteServiceItem removes a line item
func DeleteServiceItem(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}
	itemID, err := uuid.Parse(c.Params("serviceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid service ID",
		})
	}

	result := database.DB.
		Where("id = ? AND appointment_id = ?", itemID, aptID).
		Delete(&models.ServiceItem{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete service",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Service not found",
		})
	}

	evictBoardCache(c)

	return c.SendStatus(fiber.StatusNoContent)
}
