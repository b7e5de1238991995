package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceItem is a single line item on an appointment (oil change, brake job).
type ServiceItem struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	AppointmentID uuid.UUID      `json:"appointmentId" gorm:"type:uuid;index;not null"`
	Name          string         `json:"name" gorm:"not null"`
	PriceCents    int            `json:"priceCents" gorm:"not null;default:0"`
	Hours         float64        `json:"hours" gorm:"default:0"`
	Completed     bool           `json:"completed" gorm:"default:false"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *ServiceItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ServiceItem DTOs
type CreateServiceItemRequest struct {
	Name       string  `json:"name" validate:"required"`
	PriceCents int     `json:"priceCents"`
	Hours      float64 `json:"hours"`
}

type UpdateServiceItemRequest struct {
	Name       *string  `json:"name"`
	PriceCents *int     `json:"priceCents"`
	Hours      *float64 `json:"hours"`
	Completed  *bool    `json:"completed"`
}
