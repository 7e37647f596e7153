package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company is an organization whose balance sheets are tracked.
// Created on first upload referencing a new name or by seeding; immutable after.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
