package models

import "github.com/google/uuid"

// Service is a garage's service offering.
type Service struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Cost     float64   `json:"cost"`

	Bookings []Booking `gorm:"foreignKey:ServiceID" json:"bookings,omitempty"`
}
