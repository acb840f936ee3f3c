package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/middleware"
	"github.com/example/okoagari/internal/models"
)

// VehicleHandler manages the authenticated user's vehicles.
type VehicleHandler struct {
	db *gorm.DB
}

// NewVehicleHandler constructs a VehicleHandler.
func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

type vehicleRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Registration string `json:"registration"`
	Transmission string `json:"transmission"`
	FuelType     string `json:"fuel_type"`
}

func (r vehicleRequest) validate() error {
	if r.Make == "" || r.Model == "" || r.Year == 0 || r.Registration == "" ||
		r.Transmission == "" || r.FuelType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	return nil
}

// CreateVehicle registers a vehicle owned by the caller.
func (h *VehicleHandler) CreateVehicle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req vehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := req.validate(); err != nil {
		return err
	}

	vehicle := models.Vehicle{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Registration: req.Registration,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
		UserID:       userID,
	}

	if err := h.db.Create(&vehicle).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "vehicle created successfully",
		"vehicle": vehicle,
	})
}

// ListVehicles returns the caller's vehicles.
func (h *VehicleHandler) ListVehicles(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var vehicles []models.Vehicle
	if err := h.db.Where("user_id = ?", userID).Find(&vehicles).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"vehicles": vehicles})
}

// UpdateVehicle replaces a vehicle's details. Only the owner may update.
func (h *VehicleHandler) UpdateVehicle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vehicleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid vehicle id")
	}

	var req vehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := req.validate(); err != nil {
		return err
	}

	var vehicle models.Vehicle
	if err := h.db.Where("id = ? AND user_id = ?", vehicleID, userID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vehicle not found")
		}
		return err
	}

	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.Registration = req.Registration
	vehicle.Transmission = req.Transmission
	vehicle.FuelType = req.FuelType

	if err := h.db.Save(&vehicle).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "vehicle updated successfully",
	})
}

// DeleteVehicle removes a vehicle. Only the owner may delete.
func (h *VehicleHandler) DeleteVehicle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vehicleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid vehicle id")
	}

	var vehicle models.Vehicle
	if err := h.db.Where("id = ? AND user_id = ?", vehicleID, userID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vehicle not found")
		}
		return err
	}

	if err := h.db.Delete(&vehicle).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "vehicle deleted successfully",
	})
}
