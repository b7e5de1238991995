package models

import (
	"time"

	"github.com/google/uuid"
)

// BoardCard is the board projection of an appointment.
type BoardCard struct {
	ID           uuid.UUID         `json:"id"`
	CustomerName string            `json:"customerName"`
	VehicleInfo  string            `json:"vehicleInfo"`
	Status       AppointmentStatus `json:"status"`
	Position     int               `json:"position"`
	Version      int               `json:"version"`
	StartTime    time.Time         `json:"startTime"`
	TotalCents   int               `json:"totalCents"`
}

// BoardColumn is one status bucket with its aggregates. Derived, never stored.
type BoardColumn struct {
	Status   AppointmentStatus `json:"status"`
	Title    string            `json:"title"`
	Count    int               `json:"count"`
	SumCents int               `json:"sumCents"`
	Cards    []BoardCard       `json:"cards"`
}

// BoardCardFrom projects an appointment (with preloaded customer, vehicle and
// services) onto its board card.
func BoardCardFrom(a *Appointment) BoardCard {
	return BoardCard{
		ID:           a.ID,
		CustomerName: a.Customer.Name,
		VehicleInfo:  a.Vehicle.Display(),
		Status:       a.Status,
		Position:     a.Position,
		Version:      a.Version,
		StartTime:    a.StartTime,
		TotalCents:   a.TotalCents(),
	}
}
