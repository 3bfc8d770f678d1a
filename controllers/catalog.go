package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogController manages the reference data the workflows point at:
// academic sessions, classes and sections. Public endpoints serve the intake
// forms; mutation is restricted to owner/admin.
type CatalogController struct{}

// ListReferenceData returns everything the public forms need in one call
// GET /api/public/reference
func (cc *CatalogController) ListReferenceData(c *fiber.Ctx) error {
	var sessions []models.AcademicSession
	if err := database.DB.Order("start_date DESC").Find(&sessions).Error; err != nil {
		return respondError(c, err)
	}

	var classes []models.Class
	err := database.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Order("sort_order ASC, id ASC").Find(&classes).Error
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"academic_sessions": sessions,
		"classes":           classes,
	})
}

// SessionRequest is the create/update payload for academic sessions
type SessionRequest struct {
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  *bool      `json:"is_active"`
}

// CreateSession creates an academic session
// POST /api/catalog/sessions
func (cc *CatalogController) CreateSession(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return respondError(c, apperrors.NewValidationFailed("session name is required"))
	}

	session := models.AcademicSession{Name: req.Name}
	if req.StartDate != nil {
		session.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		session.EndDate = *req.EndDate
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsActive != nil && *req.IsActive {
			// Only one session may be active at a time
			if err := tx.Model(&models.AcademicSession{}).Where("is_active = ?", true).
				Update("is_active", false).Error; err != nil {
				return err
			}
			session.IsActive = true
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "sessions", session.ID, fiber.Map{"name": session.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

// UpdateSession updates an academic session
// PUT /api/catalog/sessions/:id
func (cc *CatalogController) UpdateSession(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var session models.AcademicSession
	if err := database.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("academic session %d not found", id)))
		}
		return respondError(c, err)
	}

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.StartDate != nil {
			updates["start_date"] = *req.StartDate
		}
		if req.EndDate != nil {
			updates["end_date"] = *req.EndDate
		}
		if req.IsActive != nil {
			if *req.IsActive {
				if err := tx.Model(&models.AcademicSession{}).Where("is_active = ? AND id <> ?", true, id).
					Update("is_active", false).Error; err != nil {
					return err
				}
			}
			updates["is_active"] = *req.IsActive
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&session).Updates(updates).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "sessions", id, nil)
	return c.JSON(fiber.Map{"session": session})
}

// ClassRequest is the create/update payload for classes
type ClassRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// CreateClass creates a class
// POST /api/catalog/classes
func (cc *CatalogController) CreateClass(c *fiber.Ctx) error {
	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return respondError(c, apperrors.NewValidationFailed("class name is required"))
	}

	class := models.Class{Name: req.Name, SortOrder: req.SortOrder}
	if err := database.DB.Create(&class).Error; err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "classes", class.ID, fiber.Map{"name": class.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": class})
}

// UpdateClass updates a class
// PUT /api/catalog/classes/:id
func (cc *CatalogController) UpdateClass(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("class %d not found", id)))
		}
		return respondError(c, err)
	}

	var req ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.SortOrder > 0 {
		updates["sort_order"] = req.SortOrder
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&class).Updates(updates).Error; err != nil {
			return respondError(c, err)
		}
	}

	middleware.LogActivity(c, "UPDATE", "classes", id, nil)
	return c.JSON(fiber.Map{"class": class})
}

// SectionRequest is the create payload for sections
type SectionRequest struct {
	ClassID   uint   `json:"class_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// CreateSection creates a section within a class
// POST /api/catalog/sections
func (cc *CatalogController) CreateSection(c *fiber.Ctx) error {
	var req SectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.ClassID == 0 {
		return respondError(c, apperrors.NewValidationFailed("section name and class_id are required"))
	}

	var class models.Class
	if err := database.DB.First(&class, req.ClassID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("class %d not found", req.ClassID)))
		}
		return respondError(c, err)
	}

	section := models.Section{ClassID: req.ClassID, Name: req.Name, SortOrder: req.SortOrder}
	if err := database.DB.Create(&section).Error; err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "sections", section.ID, fiber.Map{
		"name":     section.Name,
		"class_id": section.ClassID,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"section": section})
}

// DeleteSection removes a section that has no enrolled students
// DELETE /api/catalog/sections/:id
func (cc *CatalogController) DeleteSection(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var inUse int64
	if err := database.DB.Model(&models.Student{}).Where("section_id = ?", id).Count(&inUse).Error; err != nil {
		return respondError(c, err)
	}
	if inUse > 0 {
		return respondError(c, apperrors.NewConflict(fmt.Sprintf("section %d has %d enrolled students", id, inUse)))
	}

	res := database.DB.Delete(&models.Section{}, id)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return respondError(c, apperrors.NewNotFound(fmt.Sprintf("section %d not found", id)))
	}

	middleware.LogActivity(c, "DELETE", "sections", id, nil)
	return c.JSON(fiber.Map{"message": "Section deleted"})
}
