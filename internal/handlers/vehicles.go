package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/models"
)

// CreateVehicle adds a vehicle to a customer profile
func CreateVehicle(c *fiber.Ctx) error {
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

	var req models.CreateVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Make == "" || req.Model == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Make and model are required",
		})
	}

	vehicle := models.Vehicle{
		CustomerID: customerID,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		Plate:      req.Plate,
		VIN:        req.VIN,
		Mileage:    req.Mileage,
	}
	if err := database.DB.Create(&vehicle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create vehicle",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

// UpdateVehicle edits a vehicle
func UpdateVehicle(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid customer ID",
		})
	}
	vehicleID, err := uuid.Parse(c.Params("vehicleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid vehicle ID",
		})
	}

	var vehicle models.Vehicle
	if err := database.DB.
		Where("id = ? AND customer_id = ?", vehicleID, customerID).
		First(&vehicle).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Vehicle not found",
		})
	}

	var req models.UpdateVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Plate != nil {
		vehicle.Plate = *req.Plate
	}
	if req.VIN != nil {
		vehicle.VIN = *req.VIN
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}

	if err := database.DB.Save(&vehicle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update vehicle",
		})
	}

	return c.JSON(vehicle)
}
