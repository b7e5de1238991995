package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message directions
const (
	MessageOutbound = "outbound" // shop -> customer
	MessageInbound  = "inbound"  // customer -> shop
)

// Message is a customer-facing message attached to an appointment.
type Message struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	AppointmentID uuid.UUID      `json:"appointmentId" gorm:"type:uuid;index;not null"`
	SenderID      *uuid.UUID     `json:"senderId" gorm:"type:uuid"` // staff user for outbound, nil for inbound
	Direction     string         `json:"direction" gorm:"not null;default:'outbound'"`
	Body          string         `json:"body" gorm:"not null"`
	TemplateID    *uuid.UUID     `json:"templateId" gorm:"type:uuid"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Message DTOs
type CreateMessageRequest struct {
	Body       string     `json:"body"`
	TemplateID *uuid.UUID `json:"templateId"`
}
