package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// AdmissionService owns the admission application state machine:
// pending -> approved | rejected, approved -> student. The rejected and
// student states are terminal. Test slots and the coarse decision are
// deliberately independent operations with no ordering between them.
type AdmissionService struct {
	db        *gorm.DB
	sequences *SequenceService
	validate  *validator.Validate
}

func NewAdmissionService() *AdmissionService {
	return &AdmissionService{
		db:        database.GetDB(),
		sequences: NewSequenceService(),
		validate:  validator.New(),
	}
}

// NewAdmissionServiceWithDB is used by callers that manage their own
// connection, primarily tests.
func NewAdmissionServiceWithDB(db *gorm.DB) *AdmissionService {
	return &AdmissionService{
		db:        db,
		sequences: NewSequenceServiceWithDB(db),
		validate:  validator.New(),
	}
}

// SubmitApplicationRequest is the public intake payload.
type SubmitApplicationRequest struct {
	StudentName     string     `json:"student_name" validate:"required,min=2,max=200"`
	FatherName      string     `json:"father_name" validate:"required,min=2,max=200"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender" validate:"omitempty,oneof=male female"`
	ContactNumber   string     `json:"contact_number" validate:"required,min=7,max=20"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Address         string     `json:"address" validate:"required,max=500"`
	GuardianName    string     `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianContact string     `json:"guardian_contact" validate:"omitempty,max=20"`
	ClassID         uint       `json:"class_id" validate:"required"`

	PhotoKey           string `json:"photo_key" validate:"omitempty,max=500"`
	IdentityDocKey     string `json:"identity_doc_key" validate:"omitempty,max=500"`
	AuthorityLetterKey string `json:"authority_letter_key" validate:"omitempty,max=500"`
	PreviousResultKey  string `json:"previous_result_key" validate:"omitempty,max=500"`
}

// Submit validates the intake payload, allocates an application number and
// creates the application in pending status. Number allocation and the insert
// share one transaction so an aborted insert never burns a visible number row.
func (s *AdmissionService) Submit(req SubmitApplicationRequest) (*models.AdmissionApplication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationFailed(err.Error())
	}

	var class models.Class
	if err := s.db.First(&class, req.ClassID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("class %d not found", req.ClassID))
		}
		return nil, err
	}

	app := models.AdmissionApplication{
		StudentName:        req.StudentName,
		FatherName:         req.FatherName,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		ContactNumber:      req.ContactNumber,
		Email:              req.Email,
		Address:            req.Address,
		GuardianName:       req.GuardianName,
		GuardianContact:    req.GuardianContact,
		ClassID:            req.ClassID,
		PhotoKey:           req.PhotoKey,
		IdentityDocKey:     req.IdentityDocKey,
		AuthorityLetterKey: req.AuthorityLetterKey,
		PreviousResultKey:  req.PreviousResultKey,
		Status:             models.AdmissionStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, txErr := s.sequences.NextTx(tx, NamespaceApplication)
		if txErr != nil {
			return txErr
		}
		app.ApplicationNumber = number
		return tx.Create(&app).Error
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// Get returns an application with its class and converted student, if any.
func (s *AdmissionService) Get(id uint) (*models.AdmissionApplication, error) {
	var app models.AdmissionApplication
	if err := s.db.Preload("Class").Preload("Student").First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("admission application %d not found", id))
		}
		return nil, err
	}
	return &app, nil
}

// GetByNumber looks an application up by its public application number.
func (s *AdmissionService) GetByNumber(number string) (*models.AdmissionApplication, error) {
	var app models.AdmissionApplication
	err := s.db.Preload("Class").Preload("Student").
		Where("application_number = ?", number).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(fmt.Sprintf("admission application %s not found", number))
		}
		return nil, err
	}
	return &app, nil
}

// List returns applications filtered by status with pagination.
func (s *AdmissionService) List(status string, page, limit int) ([]models.AdmissionApplication, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.AdmissionApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.AdmissionApplication
	err := query.Preload("Class").Preload("Student").
		Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

var testSlotColumns = map[string][3]string{
	models.TestSubjectQuran:   {"quran_passed", "quran_marks", "quran_reason"},
	models.TestSubjectOral:    {"oral_passed", "oral_marks", "oral_reason"},
	models.TestSubjectWritten: {"written_passed", "written_marks", "written_reason"},
}

// RecordTestResult sets or corrects one test slot. Allowed while the
// application is pending or approved; terminal applications are immutable.
// The write is a conditional update so a concurrent transition to a terminal
// state loses nothing: the losing writer affects zero rows and gets an error.
func (s *AdmissionService) RecordTestResult(id uint, subject string, passed bool, marks, reason string) (*models.AdmissionApplication, error) {
	cols, ok := testSlotColumns[subject]
	if !ok {
		return nil, apperrors.NewValidationFailed(fmt.Sprintf("unknown test subject %q", subject))
	}

	updates := map[string]interface{}{
		cols[0]: passed,
		cols[1]: marks,
		cols[2]: reason,
	}
	// written_admit_eligible is derived from a passed oral slot; correcting
	// that slot to not-passed must revoke it in the same write.
	if subject == models.TestSubjectOral && !passed {
		updates["written_admit_eligible"] = false
	}

	res := s.db.Model(&models.AdmissionApplication{}).
		Where("id = ? AND status IN ?", id, []string{models.AdmissionStatusPending, models.AdmissionStatusApproved}).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainStaleWrite(id, "record test result")
	}

	return s.Get(id)
}

// MarkWrittenAdmitEligible flips the derived eligibility flag. It requires a
// passed oral slot and a non-terminal status; re-invoking once set is a no-op
// success.
func (s *AdmissionService) MarkWrittenAdmitEligible(id uint) (*models.AdmissionApplication, error) {
	app, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if app.WrittenAdmitEligible {
		return app, nil
	}
	if app.IsTerminal() {
		return nil, apperrors.NewInvalidState(fmt.Sprintf("application %s is %s and can no longer change", app.ApplicationNumber, app.Status))
	}
	if app.OralPassed == nil || !*app.OralPassed {
		return nil, apperrors.NewPreconditionFailed("oral test must be passed before written-admit eligibility")
	}

	// Re-check the gate in the WHERE clause: a concurrent correction of the
	// oral slot or a concurrent rejection must not slip the flag through.
	res := s.db.Model(&models.AdmissionApplication{}).
		Where("id = ? AND status IN ? AND oral_passed = ?",
			id, []string{models.AdmissionStatusPending, models.AdmissionStatusApproved}, true).
		Update("written_admit_eligible", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainStaleWrite(id, "mark written-admit eligible")
	}

	return s.Get(id)
}

// Decide records the coarse accept/reject decision. Only a pending
// application can be decided; the decision is independent of which test slots
// have been filled.
func (s *AdmissionService) Decide(id uint, decision, reason string) (*models.AdmissionApplication, error) {
	if decision != models.AdmissionStatusApproved && decision != models.AdmissionStatusRejected {
		return nil, apperrors.NewValidationFailed(fmt.Sprintf("decision must be approved or rejected, got %q", decision))
	}

	res := s.db.Model(&models.AdmissionApplication{}).
		Where("id = ? AND status = ?", id, models.AdmissionStatusPending).
		Updates(map[string]interface{}{
			"status":        decision,
			"status_reason": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidState(fmt.Sprintf("application %d has already been decided", id))
	}

	return s.Get(id)
}

// FullyApprove converts an approved application into an enrolled student.
// The status flip and the student insert share one transaction: a reader can
// never observe a student-status application without its student row, or the
// reverse. Exactly one of two concurrent callers wins; the loser gets a
// Conflict and the existing student.
func (s *AdmissionService) FullyApprove(id uint) (*models.Student, error) {
	var created models.Student
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var app models.AdmissionApplication
		if err := tx.First(&app, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound(fmt.Sprintf("admission application %d not found", id))
			}
			return err
		}

		switch app.Status {
		case models.AdmissionStatusApproved:
			// proceed
		case models.AdmissionStatusStudent:
			return apperrors.NewConflict(fmt.Sprintf("application %s is already enrolled", app.ApplicationNumber))
		default:
			return apperrors.NewPreconditionFailed(fmt.Sprintf("application %s must be approved before enrollment, current status is %s", app.ApplicationNumber, app.Status))
		}

		// Conditional flip guards the race: both callers may have read
		// "approved", but only one update matches.
		res := tx.Model(&models.AdmissionApplication{}).
			Where("id = ? AND status = ?", id, models.AdmissionStatusApproved).
			Update("status", models.AdmissionStatusStudent)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflict(fmt.Sprintf("application %s was enrolled concurrently", app.ApplicationNumber))
		}

		roll, err := s.sequences.NextTx(tx, NamespaceRoll)
		if err != nil {
			return err
		}

		var activeSession models.AcademicSession
		if err := tx.Where("is_active = ?", true).First(&activeSession).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewPreconditionFailed("no active academic session to enroll into")
			}
			return err
		}

		appID := app.ID
		created = models.Student{
			RollNumber:             roll,
			Name:                   app.StudentName,
			FatherName:             app.FatherName,
			DateOfBirth:            app.DateOfBirth,
			Gender:                 app.Gender,
			GuardianName:           app.GuardianName,
			ContactNumber:          app.ContactNumber,
			Address:                app.Address,
			PhotoKey:               app.PhotoKey,
			AdmissionApplicationID: &appID,
			AcademicSessionID:      activeSession.ID,
			ClassID:                app.ClassID,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		// On a lost race or a repeat call, hand back the student that does exist.
		if errors.Is(err, apperrors.ErrConflict) {
			var existing models.Student
			if lookupErr := s.db.Where("admission_application_id = ?", id).First(&existing).Error; lookupErr == nil {
				return &existing, err
			}
		}
		return nil, err
	}
	return &created, nil
}

// explainStaleWrite turns a zero-rows-affected conditional update into the
// precise domain error: the row either does not exist or is in a state that
// forbids the write.
func (s *AdmissionService) explainStaleWrite(id uint, action string) error {
	var app models.AdmissionApplication
	if err := s.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound(fmt.Sprintf("admission application %d not found", id))
		}
		return err
	}
	return apperrors.NewInvalidState(fmt.Sprintf("cannot %s: application %s is %s", action, app.ApplicationNumber, app.Status))
}
