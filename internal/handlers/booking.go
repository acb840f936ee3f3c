package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/middleware"
	"github.com/example/okoagari/internal/models"
)

// BookingHandler manages service bookings.
type BookingHandler struct {
	db *gorm.DB
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{db: db}
}

type createBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
}

// CreateBooking books a service for one of the caller's vehicles.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.ServiceID == uuid.Nil || req.VehicleID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing service_id or vehicle_id")
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	var vehicle models.Vehicle
	if err := h.db.First(&vehicle, "id = ?", req.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vehicle not found")
		}
		return err
	}

	var existing models.Booking
	err := h.db.Where("service_id = ? AND user_id = ? AND vehicle_id = ?",
		req.ServiceID, userID, req.VehicleID).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "booking already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	booking := models.Booking{
		ServiceID: req.ServiceID,
		UserID:    userID,
		VehicleID: req.VehicleID,
	}

	if err := h.db.Create(&booking).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "booking created successfully",
		"booking": booking,
	})
}

type myBookingRow struct {
	ID              uuid.UUID `json:"id"`
	ServiceID       uuid.UUID `json:"service_id"`
	ServicePaid     bool      `json:"service_paid"`
	ServiceName     string    `json:"service_name"`
	ServiceLocation string    `json:"service_location"`
	ServiceCost     float64   `json:"service_cost"`
	VehicleID       uuid.UUID `json:"vehicle_id"`
	VehicleModel    string    `json:"vehicle_model"`
	VehicleYear     int       `json:"vehicle_year"`
	GarageName      string    `json:"garage_name"`
	GarageEmail     string    `json:"garage_email"`
	ReviewComment   *string   `json:"review_comment"`
}

// ListMyBookings returns the caller's bookings joined with service,
// vehicle, garage, and review details.
func (h *BookingHandler) ListMyBookings(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var rows []myBookingRow
	err := h.db.Table("bookings").
		Select(`bookings.id, bookings.service_id, bookings.paid AS service_paid,
			services.name AS service_name, services.location AS service_location, services.cost AS service_cost,
			bookings.vehicle_id, vehicles.model AS vehicle_model, vehicles.year AS vehicle_year,
			users.name AS garage_name, users.email AS garage_email,
			reviews.comment AS review_comment`).
		Joins("JOIN services ON services.id = bookings.service_id").
		Joins("JOIN vehicles ON vehicles.id = bookings.vehicle_id").
		Joins("JOIN users ON users.id = services.user_id").
		Joins("LEFT JOIN reviews ON reviews.booking_id = bookings.id").
		Where("bookings.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	return c.JSON(rows)
}

type incomingRequestRow struct {
	BookingID           uuid.UUID `json:"service_request_id"`
	ServiceName         string    `json:"service_name"`
	ServicePaid         bool      `json:"service_paid"`
	ServiceLocation     string    `json:"service_location"`
	ServiceCost         float64   `json:"service_cost"`
	VehicleModel        string    `json:"vehicle_model"`
	VehicleYear         int       `json:"vehicle_year"`
	VehicleRegistration string    `json:"vehicle_registration"`
	CustomerName        string    `json:"customer_name"`
	CustomerEmail       string    `json:"customer_email"`
	CreatedAt           time.Time `json:"created_at"`
	ReviewComment       *string   `json:"review_comment"`
}

// ListIncomingRequests returns the bookings made against the calling
// garage's offerings.
func (h *BookingHandler) ListIncomingRequests(c *fiber.Ctx) error {
	garageID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var count int64
	if err := h.db.Model(&models.Service{}).Where("user_id = ?", garageID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no services found for this mechanic")
	}

	var rows []incomingRequestRow
	err := h.db.Table("bookings").
		Select(`bookings.id AS booking_id, services.name AS service_name, bookings.paid AS service_paid,
			services.location AS service_location, services.cost AS service_cost,
			vehicles.model AS vehicle_model, vehicles.year AS vehicle_year, vehicles.registration AS vehicle_registration,
			users.name AS customer_name, users.email AS customer_email,
			bookings.created_at, reviews.comment AS review_comment`).
		Joins("JOIN services ON services.id = bookings.service_id").
		Joins("JOIN vehicles ON vehicles.id = bookings.vehicle_id").
		Joins("JOIN users ON users.id = bookings.user_id").
		Joins("LEFT JOIN reviews ON reviews.booking_id = bookings.id").
		Where("services.user_id = ?", garageID).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	return c.JSON(rows)
}
