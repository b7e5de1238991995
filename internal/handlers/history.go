package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/models"
)

// GetCustomerHistory returns a customer's past and current appointments with
// their status trail, newest first
func GetCustomerHistory(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid customer ID",
		})
	}

	var customer models.Customer
	if err := database.DB.First(&customer, customerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}

	var appointments []models.Appointment
	if err := database.DB.
		Where("customer_id = ?", customerID).
		Preload("Vehicle").
		Preload("Services").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("StatusEvents.Actor").
		Order("start_time DESC").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}

	visits := 0
	lifetimeCents := 0
	for i := range appointments {
		if appointments[i].Status == models.StatusCompleted {
			visits++
			lifetimeCents += appointments[i].TotalCents()
		}
	}

	return c.JSON(fiber.Map{
		"customer":      customer,
		"appointments":  appointments,
		"visits":        visits,
		"lifetimeCents": lifetimeCents,
	})
}
