package models

import "github.com/google/uuid"

// Booking records a customer requesting a service for one of their vehicles.
type Booking struct {
	BaseModel
	ServiceID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_booking_once" json:"service_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_booking_once" json:"user_id"`
	VehicleID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_booking_once" json:"vehicle_id"`
	Paid      bool      `gorm:"default:false" json:"paid"`

	Reviews []Review `gorm:"foreignKey:BookingID" json:"reviews,omitempty"`
}
