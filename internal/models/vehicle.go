package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID      `json:"customerId" gorm:"type:uuid;index;not null"`
	Make       string         `json:"make" gorm:"not null"`
	Model      string         `json:"model" gorm:"not null"`
	Year       int            `json:"year"`
	Plate      string         `json:"plate" gorm:"index"`
	VIN        string         `json:"vin"`
	Mileage    int            `json:"mileage"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Display is the short label used on board cards, e.g. "2019 Honda Civic".
func (v *Vehicle) Display() string {
	if v.Year > 0 {
		return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
	}
	return fmt.Sprintf("%s %s", v.Make, v.Model)
}

// Vehicle DTOs
type CreateVehicleRequest struct {
	Make    string `json:"make" validate:"required"`
	Model   string `json:"model" validate:"required"`
	Year    int    `json:"year"`
	Plate   string `json:"plate"`
	VIN     string `json:"vin"`
	Mileage int    `json:"mileage"`
}

type UpdateVehicleRequest struct {
	Make    *string `json:"make"`
	Model   *string `json:"model"`
	Year    *int    `json:"year"`
	Plate   *string `json:"plate"`
	VIN     *string `json:"vin"`
	Mileage *int    `json:"mileage"`
}
