package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusEvent records one status transition of an appointment, for the
// customer history view and auditing.
type StatusEvent struct {
	ID            uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	AppointmentID uuid.UUID         `json:"appointmentId" gorm:"type:uuid;index;not null"`
	ActorID       uuid.UUID         `json:"actorId" gorm:"type:uuid;not null"`
	FromStatus    AppointmentStatus `json:"fromStatus" gorm:"not null"`
	ToStatus      AppointmentStatus `json:"toStatus" gorm:"not null"`
	CreatedAt     time.Time         `json:"createdAt"`

	Actor User `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
}

func (e *StatusEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
