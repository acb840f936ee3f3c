package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/middleware"
	"github.com/example/okoagari/internal/models"
	"github.com/example/okoagari/internal/utils"
)

// ReviewHandler manages booking reviews.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

type createReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id"`
	Comment   string    `json:"comment"`
}

// CreateReview adds a review to one of the caller's bookings.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.BookingID == uuid.Nil || req.Comment == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing booking_id or comment")
	}

	var booking models.Booking
	if err := h.db.First(&booking, "id = ?", req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "booking not found")
		}
		return err
	}

	if booking.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "cannot review another user's booking")
	}

	review := models.Review{
		BookingID: req.BookingID,
		Comment:   req.Comment,
	}

	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "review added successfully",
		"review":  review,
	})
}

type reviewRow struct {
	ReviewID        uuid.UUID `json:"review_id"`
	ReviewComment   string    `json:"review_comment"`
	BookingID       uuid.UUID `json:"booking_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	ServiceLocation string    `json:"service_location"`
	ServiceCost     float64   `json:"service_cost"`
	GarageID        uuid.UUID `json:"garage_id"`
	GarageName      string    `json:"garage_name"`
	GarageEmail     string    `json:"garage_email"`
}

// ListReviews returns all reviews joined with customer, service, and
// garage details.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	page := utils.ParsePagination(c)

	var rows []reviewRow
	err := h.db.Table("reviews").
		Select(`reviews.id AS review_id, reviews.comment AS review_comment, bookings.id AS booking_id,
			customers.id AS customer_id, customers.name AS customer_name, customers.email AS customer_email,
			services.id AS service_id, services.name AS service_name, services.location AS service_location, services.cost AS service_cost,
			garages.id AS garage_id, garages.name AS garage_name, garages.email AS garage_email`).
		Joins("JOIN bookings ON bookings.id = reviews.booking_id").
		Joins("JOIN users AS customers ON customers.id = bookings.user_id").
		Joins("JOIN services ON services.id = bookings.service_id").
		Joins("JOIN users AS garages ON garages.id = services.user_id").
		Order("reviews.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		result = append(result, fiber.Map{
			"review_id":      row.ReviewID,
			"review_comment": row.ReviewComment,
			"booking_id":     row.BookingID,
			"customer": fiber.Map{
				"customer_id":    row.CustomerID,
				"customer_name":  row.CustomerName,
				"customer_email": row.CustomerEmail,
			},
			"service": fiber.Map{
				"service_id":       row.ServiceID,
				"service_name":     row.ServiceName,
				"service_location": row.ServiceLocation,
				"service_cost":     row.ServiceCost,
			},
			"garage": fiber.Map{
				"garage_id":    row.GarageID,
				"garage_name":  row.GarageName,
				"garage_email": row.GarageEmail,
			},
		})
	}

	return c.JSON(result)
}
