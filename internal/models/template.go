package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageTemplate is a reusable message body with {{placeholder}} slots.
// Supported placeholders: {{customerName}}, {{vehicle}}, {{startTime}}, {{shopName}}.
type MessageTemplate struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	Body      string         `json:"body" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Render substitutes placeholders; unknown placeholders are left untouched.
func (t *MessageTemplate) Render(fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for key, value := range fields {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.Body)
}

// Template DTOs
type CreateTemplateRequest struct {
	Name string `json:"name" validate:"required"`
	Body string `json:"body" validate:"required"`
}

type UpdateTemplateRequest struct {
	Name *string `json:"name"`
	Body *string `json:"body"`
}
