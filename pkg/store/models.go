package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	Email     string    `gorm:"primaryKey"`
	Password  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ProfileModel struct {
	ID         string         `gorm:"primaryKey"`
	OwnerEmail string         `gorm:"not null;index"`
	Name       string         `gorm:"not null"`
	Position   int            `gorm:"not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"not null"`
}
