package services

import (
	"errors"
	"fmt"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RenewalService re-enrolls existing students into a new academic session.
// pending -> approved | rejected, both terminal. Approval mutates the
// student's current enrollment in the same transaction as the status flip.
type RenewalService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewRenewalService() *RenewalService {
	return &RenewalService{db: database.GetDB(), validate: validator.New()}
}

// NewRenewalServiceWithDB is used by callers that manage their own
// connection, primarily tests.
func NewRenewalServiceWithDB(db *gorm.DB) *RenewalService {
	return &RenewalService{db: db, validate: validator.New()}
}

// SubmitRenewalRequest is the renewal intake payload.
type SubmitRenewalRequest struct {
	StudentID         uint   `json:"student_id" validate:"required"`
	AcademicSessionID uint   `json:"academic_session_id" validate:"required"`
	ClassID           uint   `json:"class_id" validate:"required"`
	SectionID         uint   `json:"section_id" validate:"required"`
	ContactOverride   string `json:"contact_override" validate:"omitempty,max=20"`
	AddressOverride   string `json:"address_override" validate:"omitempty,max=500"`
}

// FindStudentByRoll is the pure read backing the public renewal intake: a
// guardian locates the enrollment record by roll number before submitting.
func (s *RenewalService) FindStudentByRoll(rollNumber string) (*models.Student, error) {
	var student models.Student
	err := s.db.Preload("AcademicSession").Preload("Class").Preload("Section").
		Where("roll_number = ?", rollNumber).First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("no student with roll number %s", rollNumber))
		}
		return nil, err
	}
	return &student, nil
}

// Submit creates a pending renewal. At most one pending renewal may exist per
// (student, session); the check runs under a row lock on the student so two
// concurrent submissions for the same student serialize instead of both
// passing the uniqueness check.
func (s *RenewalService) Submit(req SubmitRenewalRequest) (*models.RenewalApplication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationFailed(err.Error())
	}

	var renewal models.RenewalApplication
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var student models.Student
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&student, req.StudentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("student %d not found", req.StudentID))
			}
			return err
		}

		var session models.AcademicSession
		if err := tx.First(&session, req.AcademicSessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("academic session %d not found", req.AcademicSessionID))
			}
			return err
		}

		var section models.Section
		if err := tx.Where("id = ? AND class_id = ?", req.SectionID, req.ClassID).First(&section).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("section %d not found in class %d", req.SectionID, req.ClassID))
			}
			return err
		}

		var pending int64
		err = tx.Model(&models.RenewalApplication{}).
			Where("student_id = ? AND academic_session_id = ? AND status = ?",
				req.StudentID, req.AcademicSessionID, models.RenewalStatusPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperrors.NewConflict(fmt.Sprintf("a pending renewal already exists for student %s in session %s", student.RollNumber, session.Name))
		}

		renewal = models.RenewalApplication{
			StudentID:         req.StudentID,
			AcademicSessionID: req.AcademicSessionID,
			ClassID:           req.ClassID,
			SectionID:         req.SectionID,
			ContactOverride:   req.ContactOverride,
			AddressOverride:   req.AddressOverride,
			Status:            models.RenewalStatusPending,
		}
		return tx.Create(&renewal).Error
	})
	if err != nil {
		return nil, err
	}
	return &renewal, nil
}

// Get returns a renewal with its student and catalog references.
func (s *RenewalService) Get(id uint) (*models.RenewalApplication, error) {
	var renewal models.RenewalApplication
	err := s.db.Preload("Student").Preload("AcademicSession").Preload("Class").Preload("Section").
		First(&renewal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("renewal application %d not found", id))
		}
		return nil, err
	}
	return &renewal, nil
}

// List returns renewals filtered by status with pagination.
func (s *RenewalService) List(status string, page, limit int) ([]models.RenewalApplication, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.RenewalApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var renewals []models.RenewalApplication
	err := query.Preload("Student").Preload("AcademicSession").Preload("Class").Preload("Section").
		Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&renewals).Error
	if err != nil {
		return nil, 0, err
	}
	return renewals, total, nil
}

// Decide finalizes a pending renewal. Approval moves the student to the
// renewal's session/class/section and applies any overrides; rejection leaves
// the student untouched. Status flip and student update share one transaction.
func (s *RenewalService) Decide(id uint, decision, reason string) (*models.RenewalApplication, error) {
	if decision != models.RenewalStatusApproved && decision != models.RenewalStatusRejected {
		return nil, apperrors.NewValidationFailed(fmt.Sprintf("decision must be approved or rejected, got %q", decision))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var renewal models.RenewalApplication
		if err := tx.First(&renewal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("renewal application %d not found", id))
			}
			return err
		}

		res := tx.Model(&models.RenewalApplication{}).
			Where("id = ? AND status = ?", id, models.RenewalStatusPending).
			Updates(map[string]interface{}{
				"status":        decision,
				"status_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewInvalidState(fmt.Sprintf("renewal %d has already been decided", id))
		}

		if decision == models.RenewalStatusRejected {
			return nil
		}

		updates := map[string]interface{}{
			"academic_session_id": renewal.AcademicSessionID,
			"class_id":            renewal.ClassID,
			"section_id":          renewal.SectionID,
		}
		if renewal.ContactOverride != "" {
			updates["contact_number"] = renewal.ContactOverride
		}
		if renewal.AddressOverride != "" {
			updates["address"] = renewal.AddressOverride
		}
		return tx.Model(&models.Student{}).
			Where("id = ?", renewal.StudentID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}
