package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/middleware"
	"github.com/calderon/shopdesk-api/internal/models"
)

// GetMessages returns an appointment's message thread, oldest first
func GetMessages(c *fiber.Ctx) error {
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

	var messages []models.Message
	if err := database.DB.
		Where("appointment_id = ?", aptID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}

	return c.JSON(messages)
}

// CreateMessage sends a message on an appointment, either free-form or
// rendered from a template
func CreateMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var apt models.Appointment
	if err := database.DB.Preload("Customer").Preload("Vehicle").
		First(&apt, aptID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}

	var req models.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	body := req.Body
	if req.TemplateID != nil {
		var tmpl models.MessageTemplate
		if err := database.DB.First(&tmpl, *req.TemplateID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		body = tmpl.Render(templateFields(&apt))
	}
	if body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message body or template is required",
		})
	}

	msg := models.Message{
		AppointmentID: aptID,
		SenderID:      &userID,
		Direction:     models.MessageOutbound,
		Body:          body,
		TemplateID:    req.TemplateID,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send message",
		})
	}

	Board.Broadcast(userID, WSEvent{
		Type: EventMessageAdded,
		Data: msg,
	})

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteMessage removes a message from a thread
func DeleteMessage(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}
	msgID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message ID",
		})
	}

	result := database.DB.
		Where("id = ? AND appointment_id = ?", msgID, aptID).
		Delete(&models.Message{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete message",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Message not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// templateFields builds the placeholder values for a template render
func templateFields(apt *models.Appointment) map[string]string {
	return map[string]string{
		"customerName": apt.Customer.Name,
		"vehicle":      apt.Vehicle.Display(),
		"startTime":    apt.StartTime.Format(time.RFC1123),
		"shopName":     shopName,
	}
}
