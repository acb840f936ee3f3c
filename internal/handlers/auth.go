package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/auth"
	"github.com/example/okoagari/internal/config"
	"github.com/example/okoagari/internal/middleware"
	"github.com/example/okoagari/internal/models"
	"github.com/example/okoagari/internal/services"
	"github.com/example/okoagari/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	codes    *auth.CodeStore
	notifier services.Notifier
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, codes *auth.CodeStore, notifier services.Notifier) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, codes: codes, notifier: notifier}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if req.Role != models.RoleUser && req.Role != models.RoleGarage {
		return fiber.NewError(fiber.StatusBadRequest, "role must be 'user' or 'garage'")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: passwordHash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user created successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and sends a verification code to the user's
// email. The session token is only issued after the code is verified.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	code, err := h.codes.Issue(user.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	body := fmt.Sprintf("Your verification code is %s. It will expire in %d minutes.",
		code, int(h.cfg.OTPTTL.Minutes()))
	if err := h.notifier.Send(user.Email, "Verification Code", body); err != nil {
		// The code stays pending; only delivery failed.
		return fiber.NewError(fiber.StatusBadGateway, "failed to send verification code")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "please verify the code sent to your email",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

// VerifyOTP validates the emailed code and issues the session token.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if err := h.codes.Verify(req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, auth.ErrNoPendingCode):
			return fiber.NewError(fiber.StatusNotFound, "no verification code found for email")
		case errors.Is(err, auth.ErrCodeExpired):
			return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
		case errors.Is(err, auth.ErrCodeMismatch):
			return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
		default:
			return err
		}
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"role":  user.Role,
			"email": user.Email,
		},
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUser updates a user's own profile fields.
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	targetParam := c.Query("user_id")
	if targetParam == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id query parameter is required")
	}

	targetID, err := uuid.Parse(targetParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}

	callerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if callerID != targetID {
		return fiber.NewError(fiber.StatusForbidden, "cannot update another user's information")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"role":  user.Role,
			"email": user.Email,
		},
	})
}

type mechanicRow struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	NumberOfServices int64     `json:"number_of_services"`
}

// ListMechanics returns garages together with their offering counts.
func (h *AuthHandler) ListMechanics(c *fiber.Ctx) error {
	var mechanics []mechanicRow
	err := h.db.Table("users").
		Select("users.id, users.name, users.email, users.role, COUNT(services.id) AS number_of_services").
		Joins("LEFT JOIN services ON services.user_id = users.id").
		Where("users.role = ?", models.RoleGarage).
		Group("users.id").
		Scan(&mechanics).Error
	if err != nil {
		return err
	}

	if len(mechanics) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no mechanics found")
	}

	return c.JSON(mechanics)
}

// DeleteUser removes a user together with their dependent records.
func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	callerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if callerID != targetID {
		return fiber.NewError(fiber.StatusForbidden, "cannot delete another user's account")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		serviceIDs := tx.Model(&models.Service{}).Select("id").Where("user_id = ?", targetID)
		bookingIDs := tx.Model(&models.Booking{}).Select("id").
			Where("user_id = ? OR service_id IN (?)", targetID, serviceIDs)

		if err := tx.Where("booking_id IN (?)", bookingIDs).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR service_id IN (?)", targetID, serviceIDs).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Service{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Vehicle{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "user and associated records deleted successfully",
	})
}
