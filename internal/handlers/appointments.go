package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/calderon/shopdesk-api/internal/database"
	"github.com/calderon/shopdesk-api/internal/middleware"
	"github.com/calderon/shopdesk-api/internal/models"
)

func GetAppointments(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Appointment{}).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Services")

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid 'from' timestamp",
			})
		}
		q = q.Where("start_time >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid 'to' timestamp",
			})
		}
		q = q.Where("start_time < ?", t)
	}
	if techID := c.Query("technicianId"); techID != "" {
		id, err := uuid.Parse(techID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid technician ID",
			})
		}
		q = q.Where("technician_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		if !models.AppointmentStatus(status).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown status",
			})
		}
		q = q.Where("status = ?", status)
	}
	if customerID := c.Query("customerId"); customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid customer ID",
			})
		}
		q = q.Where("customer_id = ?", id)
	}

	var appointments []models.Appointment
	if err := q.Order("start_time ASC").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	return c.JSON(appointments)
}

func GetAppointment(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var apt models.Appointment
	if err := database.DB.
		Preload("Customer").
		Preload("Vehicle").
		Preload("Services").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("StatusEvents.Actor").
		First(&apt, aptID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}

	return c.JSON(apt)
}

func CreateAppointment(c *fiber.Ctx) error {
	var req models.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CustomerID == uuid.Nil || req.VehicleID == uuid.Nil || req.StartTime.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Customer, vehicle and start time are required",
		})
	}

	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, req.VehicleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Vehicle not found",
		})
	}
	if vehicle.CustomerID != req.CustomerID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Vehicle does not belong to customer",
		})
	}

	// new cards land at the end of the SCHEDULED column
	var count int64
	database.DB.Model(&models.Appointment{}).
		Where("status = ?", models.StatusScheduled).
		Count(&count)

	apt := models.Appointment{
		CustomerID:   req.CustomerID,
		VehicleID:    req.VehicleID,
		TechnicianID: req.TechnicianID,
		Status:       models.StatusScheduled,
		Position:     int(count),
		Version:      1,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Notes:        req.Notes,
	}

	if err := database.DB.Create(&apt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create appointment",
		})
	}

	database.DB.Preload("Customer").Preload("Vehicle").First(&apt, apt.ID)

	evictBoardCache(c)
	Board.Broadcast(middleware.GetUserID(c), WSEvent{
		Type: EventAppointmentCreated,
		Data: models.BoardCardFrom(&apt),
	})

	return c.Status(fiber.StatusCreated).JSON(apt)
}

func UpdateAppointment(c *fiber.Ctx) error {
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var req models.UpdateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var apt models.Appointment
	if err := database.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		First(&apt, aptID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}

	if req.Version != apt.Version {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       "Appointment was changed by someone else",
			"appointment": apt,
		})
	}

	if req.TechnicianID != nil {
		apt.TechnicianID = req.TechnicianID
	}
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = req.EndTime
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	apt.Version++

	if err := database.DB.Save(&apt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update appointment",
		})
	}

	evictBoardCache(c)
	Board.Broadcast(middleware.GetUserID(c), WSEvent{
		Type: EventAppointmentUpdated,
		Data: models.BoardCardFrom(&apt),
	})

	return c.JSON(apt)
}

func DeleteAppointment(c *fiber.Ctx) error {
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

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&apt).Error; err != nil {
			return err
		}
		// close the gap the card leaves behind
		return tx.Model(&models.Appointment{}).
			Where("status = ? AND position > ?", apt.Status, apt.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete appointment",
		})
	}

	evictBoardCache(c)
	Board.Broadcast(middleware.GetUserID(c), WSEvent{
		Type: EventAppointmentDeleted,
		Data: fiber.Map{"id": apt.ID},
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// PatchAppointmentStatus moves an appointment to another column/position.
// The request must carry the client's last-known version; a mismatch means a
// concurrent edit won and the client gets 409 plus the authoritative record.
func PatchAppointmentStatus(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	aptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var req models.StatusPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown status",
		})
	}

	var apt models.Appointment
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&apt, aptID).Error; err != nil {
			return err
		}
		if req.Version != apt.Version {
			return errStaleVersion
		}

		oldStatus, oldPosition := apt.Status, apt.Position

		// close the gap in the old column
		if err := tx.Model(&models.Appointment{}).
			Where("status = ? AND position > ? AND id != ?", oldStatus, oldPosition, apt.ID).
			UpdateColumn("position", gorm.Expr("position - 1")).Error; err != nil {
			return err
		}

		// clamp the target position to the column length
		var count int64
		if err := tx.Model(&models.Appointment{}).
			Where("status = ? AND id != ?", req.Status, apt.ID).
			Count(&count).Error; err != nil {
			return err
		}
		position := req.Position
		if position < 0 {
			position = 0
		}
		if position > int(count) {
			position = int(count)
		}

		// open a gap in the new column
		if err := tx.Model(&models.Appointment{}).
			Where("status = ? AND position >= ? AND id != ?", req.Status, position, apt.ID).
			UpdateColumn("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}

		now := time.Now()
		apt.Status = req.Status
		apt.Position = position
		apt.Version++
		switch req.Status {
		case models.StatusCompleted:
			apt.CompletedAt = &now
		case models.StatusCanceled, models.StatusNoShow:
			apt.CancelledAt = &now
		}

		if err := tx.Save(&apt).Error; err != nil {
			return err
		}

		return tx.Create(&models.StatusEvent{
			AppointmentID: apt.ID,
			ActorID:       userID,
			FromStatus:    oldStatus,
			ToStatus:      req.Status,
		}).Error
	})

	if txErr == errStaleVersion {
		// return the authoritative record so the client can reconcile
		var current models.Appointment
		database.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
			First(&current, aptID)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       "Appointment was changed by someone else",
			"appointment": current,
		})
	}
	if txErr != nil {
		if txErr == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Appointment not found",
			})
		}
		log.WithError(txErr).Error("status patch failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update status",
		})
	}

	database.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		First(&apt, apt.ID)

	evictBoardCache(c)
	card := models.BoardCardFrom(&apt)
	Board.Broadcast(userID, WSEvent{
		Type: EventAppointmentMoved,
		Data: card,
	})

	return c.JSON(card)
}
