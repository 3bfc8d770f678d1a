package controllers

import (
	"errors"
	"fmt"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UsersController manages operator accounts (owner/admin only).
type UsersController struct{}

// List returns operator accounts
// GET /api/users?role=&status=
func (uc *UsersController) List(c *fiber.Ctx) error {
	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// Get returns a single operator account
// GET /api/users/:id
func (uc *UsersController) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("user %d not found", id)))
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateUserRequest is the operator update payload
type UpdateUserRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Update modifies an operator account
// PUT /api/users/:id
func (uc *UsersController) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("user %d not found", id)))
		}
		return respondError(c, err)
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Role != "" {
		if !utils.IsValidRole(req.Role) {
			return respondError(c, apperrors.NewValidationFailed("role must be one of: owner, admin, registrar"))
		}
		updates["role"] = req.Role
	}
	if req.Status != "" {
		if !utils.IsValidUserStatus(req.Status) {
			return respondError(c, apperrors.NewValidationFailed("status must be one of: active, inactive, suspended"))
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			return respondError(c, err)
		}
	}

	middleware.LogActivity(c, "UPDATE", "users", id, updates)
	return c.JSON(fiber.Map{"user": user})
}

// Delete soft-deletes an operator account
// DELETE /api/users/:id
func (uc *UsersController) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	current, err := middleware.GetCurrentUser(c)
	if err == nil && current.ID == id {
		return respondError(c, apperrors.NewValidationFailed("cannot delete your own account"))
	}

	res := database.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return respondError(c, apperrors.NewNotFound(fmt.Sprintf("user %d not found", id)))
	}

	middleware.LogActivity(c, "DELETE", "users", id, nil)
	return c.JSON(fiber.Map{"message": "User deleted"})
}
