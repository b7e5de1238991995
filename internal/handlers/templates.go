package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/models"
)

var shopName = "Shopdesk Auto"

// InitShopName sets the {{shopName}} placeholder value for template renders.
func InitShopName(name string) {
	if name != "" {
		shopName = name
	}
}

// GetTemplates lists the message templates
func GetTemplates(c *fiber.Ctx) error {
	var templates []models.MessageTemplate
	if err := database.DB.Order("name ASC").Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch templates",
		})
	}
	return c.JSON(templates)
}

// CreateTemplate adds a message template
func CreateTemplate(c *fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" || req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and body are required",
		})
	}

	var existing models.MessageTemplate
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Template name already in use",
		})
	}

	tmpl := models.MessageTemplate{
		Name: req.Name,
		Body: req.Body,
	}
	if err := database.DB.Create(&tmpl).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create template",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

// UpdateTemplate edits a message template
func UpdateTemplate(c *fiber.Ctx) error {
	tmplID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	var tmpl models.MessageTemplate
	if err := database.DB.First(&tmpl, tmplID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	var req models.UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Body != nil {
		tmpl.Body = *req.Body
	}

	if err := database.DB.Save(&tmpl).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update template",
		})
	}

	return c.JSON(tmpl)
}

// DeleteTemplate removes a message template
func DeleteTemplate(c *fiber.Ctx) error {
	tmplID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	result := database.DB.Delete(&models.MessageTemplate{}, tmplID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete template",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
