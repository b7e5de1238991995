package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus is the canonical status vocabulary shared by the API and
// the board client. Each status maps to one board column.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusReady      AppointmentStatus = "READY"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
	StatusCanceled   AppointmentStatus = "CANCELED"
)

// BoardStatuses lists the columns in display order.
var BoardStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusInProgress,
	StatusReady,
	StatusCompleted,
	StatusNoShow,
	StatusCanceled,
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusReady, StatusCompleted, StatusNoShow, StatusCanceled:
		return true
	}
	return false
}

// Title is the column heading shown on the board.
func (s AppointmentStatus) Title() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusInProgress:
		return "In Progress"
	case StatusReady:
		return "Ready"
	case StatusCompleted:
		return "Completed"
	case StatusNoShow:
		return "No Show"
	case StatusCanceled:
		return "Canceled"
	}
	return string(s)
}

type Appointment struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID         `json:"customerId" gorm:"type:uuid;index;not null"`
	VehicleID    uuid.UUID         `json:"vehicleId" gorm:"type:uuid;index;not null"`
	TechnicianID *uuid.UUID        `json:"technicianId" gorm:"type:uuid;index"`
	Status       AppointmentStatus `json:"status" gorm:"not null;default:'SCHEDULED'"`
	Position     int               `json:"position" gorm:"not null;default:0"`
	// Version is bumped on every mutation; stale writes are rejected with 409.
	Version     int            `json:"version" gorm:"not null;default:1"`
	StartTime   time.Time      `json:"startTime" gorm:"index;not null"`
	EndTime     *time.Time     `json:"endTime"`
	Notes       string         `json:"notes"`
	CancelledAt *time.Time     `json:"cancelledAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Customer     Customer      `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle      Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Services     []ServiceItem `json:"services,omitempty" gorm:"foreignKey:AppointmentID"`
	StatusEvents []StatusEvent `json:"statusEvents,omitempty" gorm:"foreignKey:AppointmentID"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TotalCents sums the appointment's service line items.
func (a *Appointment) TotalCents() int {
	total := 0
	for _, s := range a.Services {
		total += s.PriceCents
	}
	return total
}

// Appointment DTOs
type CreateAppointmentRequest struct {
	CustomerID   uuid.UUID  `json:"customerId" validate:"required"`
	VehicleID    uuid.UUID  `json:"vehicleId" validate:"required"`
	TechnicianID *uuid.UUID `json:"technicianId"`
	StartTime    time.Time  `json:"startTime" validate:"required"`
	EndTime      *time.Time `json:"endTime"`
	Notes        string     `json:"notes"`
}

type UpdateAppointmentRequest struct {
	TechnicianID *uuid.UUID `json:"technicianId"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Notes        *string    `json:"notes"`
	Version      int        `json:"version" validate:"required"`
}

// StatusPatchRequest moves an appointment to a column/position. Version must
// match the server's current version or the patch is rejected.
type StatusPatchRequest struct {
	Status   AppointmentStatus `json:"status" validate:"required"`
	Position int               `json:"position"`
	Version  int               `json:"version" validate:"required"`
}
