package models

import "github.com/google/uuid"

// Vehicle is a car listed by a customer.
type Vehicle struct {
	BaseModel
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Registration string    `gorm:"uniqueIndex" json:"registration"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
}
