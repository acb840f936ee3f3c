package models

// Account roles. Customers book services, garages offer them.
const (
	RoleUser   = "user"
	RoleGarage = "garage"
)

// User represents a registered account, either a customer or a garage.
type User struct {
	BaseModel
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`

	Vehicles []Vehicle `gorm:"foreignKey:UserID" json:"vehicles,omitempty"`
	Services []Service `gorm:"foreignKey:UserID" json:"services,omitempty"`
	Bookings []Booking `gorm:"foreignKey:UserID" json:"bookings,omitempty"`
}
