package models

import "github.com/google/uuid"

// Review is a customer's comment on a completed booking.
type Review struct {
	BaseModel
	BookingID uuid.UUID `gorm:"type:uuid;index" json:"booking_id"`
	Comment   string    `gorm:"size:500" json:"comment"`
}
