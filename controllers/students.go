package controllers

import (
	"errors"
	"fmt"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StudentsController is the read side over enrolled students. Enrollment state
// only changes through admission conversion and approved renewals.
type StudentsController struct{}

// List returns enrolled students with optional class/session filters
// GET /api/students?class_id=&session_id=&page=&limit=
func (sc *StudentsController) List(c *fiber.Ctx) error {
	page, limit := paginationParams(c)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.Student{})
	if classID := c.QueryInt("class_id", 0); classID > 0 {
		query = query.Where("class_id = ?", classID)
	}
	if sessionID := c.QueryInt("session_id", 0); sessionID > 0 {
		query = query.Where("academic_session_id = ?", sessionID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + utils.SanitizeString(search) + "%"
		query = query.Where("name LIKE ? OR roll_number LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, err)
	}

	var students []models.Student
	err := query.Preload("AcademicSession").Preload("Class").Preload("Section").
		Order("roll_number ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&students).Error
	if err != nil {
		return respondError(c, err)
	}

	dtos := make([]utils.StudentDTO, 0, len(students))
	for _, s := range students {
		dtos = append(dtos, utils.ToStudentDTO(s))
	}
	return c.JSON(paginatedResponse(dtos, total, page, limit))
}

// Get returns a single student
// GET /api/students/:id
func (sc *StudentsController) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var student models.Student
	err = database.DB.Preload("AcademicSession").Preload("Class").Preload("Section").
		First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("student %d not found", id)))
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"student": utils.ToStudentDTO(student)})
}

// FindByRoll returns a student by roll number
// GET /api/students/roll/:roll
func (sc *StudentsController) FindByRoll(c *fiber.Ctx) error {
	roll := c.Params("roll")

	var student models.Student
	err := database.DB.Preload("AcademicSession").Preload("Class").Preload("Section").
		Where("roll_number = ?", roll).First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFound(fmt.Sprintf("no student with roll number %s", roll)))
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"student": utils.ToStudentDTO(student)})
}
