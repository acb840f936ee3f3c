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

// ServiceHandler manages garage service offerings.
type ServiceHandler struct {
	db *gorm.DB
}

// NewServiceHandler constructs a ServiceHandler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

type serviceRequest struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Cost     float64 `json:"cost"`
}

// CreateService adds a service offering for the calling garage.
func (h *ServiceHandler) CreateService(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if role, ok := middleware.GetCurrentUserRole(c); ok && role != models.RoleGarage {
		return fiber.NewError(fiber.StatusForbidden, "only garages can offer services")
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Cost == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	service := models.Service{
		UserID:   userID,
		Name:     req.Name,
		Location: req.Location,
		Cost:     req.Cost,
	}

	if err := h.db.Create(&service).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "service added successfully",
		"service": service,
	})
}

// ListServices returns the calling garage's offerings.
func (h *ServiceHandler) ListServices(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var svcs []models.Service
	if err := h.db.Where("user_id = ?", userID).Find(&svcs).Error; err != nil {
		return err
	}

	return c.JSON(svcs)
}

// UpdateService updates an offering. Only the owning garage may update.
func (h *ServiceHandler) UpdateService(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	serviceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Cost == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var service models.Service
	if err := h.db.Where("id = ? AND user_id = ?", serviceID, userID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	service.Name = req.Name
	service.Location = req.Location
	service.Cost = req.Cost

	if err := h.db.Save(&service).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "service updated successfully",
	})
}

// DeleteService removes an offering and the bookings made against it.
func (h *ServiceHandler) DeleteService(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	serviceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid service id")
	}

	var service models.Service
	if err := h.db.Where("id = ? AND user_id = ?", serviceID, userID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		bookingIDs := tx.Model(&models.Booking{}).Select("id").Where("service_id = ?", serviceID)
		if err := tx.Where("booking_id IN (?)", bookingIDs).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", serviceID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&service).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "service deleted successfully",
	})
}

type publicServiceRow struct {
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	ServiceCost     float64   `json:"service_cost"`
	ServiceLocation string    `json:"service_location"`
	UserID          uuid.UUID `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
}

// ListAllServices returns every offering joined with its garage. Public.
func (h *ServiceHandler) ListAllServices(c *fiber.Ctx) error {
	page := utils.ParsePagination(c)

	var rows []publicServiceRow
	err := h.db.Table("services").
		Select("services.id AS service_id, services.name AS service_name, services.cost AS service_cost, services.location AS service_location, users.id AS user_id, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = services.user_id").
		Order("services.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	return c.JSON(rows)
}
