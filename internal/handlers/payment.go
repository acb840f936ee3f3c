package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/models"
	"github.com/example/okoagari/internal/services"
)

// PaymentHandler initiates mobile-money payments for bookings.
type PaymentHandler struct {
	db    *gorm.DB
	mpesa *services.MpesaService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB, mpesa *services.MpesaService) *PaymentHandler {
	return &PaymentHandler{db: db, mpesa: mpesa}
}

type payRequest struct {
	Phone     string    `json:"phone"`
	Amount    int64     `json:"amount"`
	BookingID uuid.UUID `json:"booking_id"`
}

// Pay sends an STK push for a booking and marks it paid once the gateway
// accepts the request.
func (h *PaymentHandler) Pay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Amount <= 0 || req.BookingID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "phone, amount and booking_id are required")
	}

	var booking models.Booking
	if err := h.db.First(&booking, "id = ?", req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "booking not found")
		}
		return err
	}

	phone := services.NormalizePhone(req.Phone)

	result, err := h.mpesa.STKPush(phone, req.Amount, booking.ID.String())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "unable to process payment request")
	}

	if err := h.db.Model(&booking).Update("paid", true).Error; err != nil {
		return err
	}

	return c.JSON(result)
}
