package services

import (
	"errors"
	"testing"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"gorm.io/gorm"
)

// seedStudent enrolls a student directly, as admission conversion would.
func seedStudent(t *testing.T, db *gorm.DB, session models.AcademicSession, class models.Class, section models.Section) models.Student {
	t.Helper()

	student := models.Student{
		RollNumber:        "STU-000001",
		Name:              "Abdullah Khan",
		FatherName:        "Rashid Khan",
		ContactNumber:     "03001234567",
		Address:           "House 12, Street 4, Lahore",
		AcademicSessionID: session.ID,
		ClassID:           class.ID,
		SectionID:         &section.ID,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	return student
}

// seedNextSession creates the session a renewal targets.
func seedNextSession(t *testing.T, db *gorm.DB) models.AcademicSession {
	t.Helper()

	next := models.AcademicSession{Name: "2026-2027"}
	if err := db.Create(&next).Error; err != nil {
		t.Fatalf("failed to seed next session: %v", err)
	}
	return next
}

func TestFindStudentByRoll(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	svc := NewRenewalServiceWithDB(db)

	found, err := svc.FindStudentByRoll(student.RollNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != student.ID {
		t.Fatalf("expected student %d, got %d", student.ID, found.ID)
	}

	if _, err := svc.FindStudentByRoll("STU-999999"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSubmitRenewalCreatesPending(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	renewal, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renewal.Status != models.RenewalStatusPending {
		t.Fatalf("expected pending status, got %q", renewal.Status)
	}
}

func TestSubmitRenewalRejectsDuplicatePending(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	req := SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
	}
	if _, err := svc.Submit(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Submit(req)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for duplicate pending renewal, got %v", err)
	}
}

func TestSubmitRenewalAllowsResubmitAfterRejection(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	req := SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
	}
	first, err := svc.Submit(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Decide(first.ID, models.RenewalStatusRejected, "fees outstanding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Submit(req); err != nil {
		t.Fatalf("resubmission after rejection must succeed, got %v", err)
	}
}

func TestSubmitRenewalValidatesReferences(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	svc := NewRenewalServiceWithDB(db)

	// Unknown student
	_, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         9999,
		AcademicSessionID: session.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found for unknown student, got %v", err)
	}

	// Section not in the requested class
	otherClass := models.Class{Name: "Darja Oola", SortOrder: 2}
	if err := db.Create(&otherClass).Error; err != nil {
		t.Fatalf("failed to seed class: %v", err)
	}
	_, err = svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: session.ID,
		ClassID:           otherClass.ID,
		SectionID:         section.ID,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found for section outside class, got %v", err)
	}
}

func TestDecideRenewalApprovalUpdatesEnrollment(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)

	nextClass := models.Class{Name: "Darja Oola", SortOrder: 2}
	if err := db.Create(&nextClass).Error; err != nil {
		t.Fatalf("failed to seed class: %v", err)
	}
	nextSection := models.Section{ClassID: nextClass.ID, Name: "A"}
	if err := db.Create(&nextSection).Error; err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}

	svc := NewRenewalServiceWithDB(db)
	renewal, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           nextClass.ID,
		SectionID:         nextSection.ID,
		ContactOverride:   "03007654321",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decided, err := svc.Decide(renewal.ID, models.RenewalStatusApproved, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != models.RenewalStatusApproved {
		t.Fatalf("expected approved, got %q", decided.Status)
	}

	var updated models.Student
	if err := db.First(&updated, student.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AcademicSessionID != next.ID || updated.ClassID != nextClass.ID ||
		updated.SectionID == nil || *updated.SectionID != nextSection.ID {
		t.Fatal("approval must move the student to the renewal's enrollment")
	}
	if updated.ContactNumber != "03007654321" {
		t.Fatalf("contact override must apply on approval, got %q", updated.ContactNumber)
	}
	if updated.Address != student.Address {
		t.Fatal("address must not change without an override")
	}
}

func TestDecideRenewalRejectionLeavesStudentUntouched(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	renewal, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
		ContactOverride:   "03007654321",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Decide(renewal.ID, models.RenewalStatusRejected, "fees outstanding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var unchanged models.Student
	if err := db.First(&unchanged, student.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unchanged.AcademicSessionID != session.ID || unchanged.ContactNumber != student.ContactNumber {
		t.Fatal("rejection must not touch the student")
	}
}

func TestDecideRenewalRollsBackOnMidTransactionFault(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	renewal, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
		ContactOverride:   "03007654321",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restore := failStudentWrites(t, db)
	if _, err := svc.Decide(renewal.ID, models.RenewalStatusApproved, ""); err == nil {
		t.Fatal("approval must fail while student writes fail")
	}

	// Status flip and student update commit together or not at all.
	var after models.RenewalApplication
	if err := db.First(&after, renewal.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Status != models.RenewalStatusPending {
		t.Fatalf("expected pending after rollback, got %q", after.Status)
	}
	var unchanged models.Student
	if err := db.First(&unchanged, student.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unchanged.AcademicSessionID != session.ID || unchanged.ContactNumber != student.ContactNumber {
		t.Fatal("rolled-back approval must not touch the student")
	}

	restore()
	decided, err := svc.Decide(renewal.ID, models.RenewalStatusApproved, "")
	if err != nil {
		t.Fatalf("approval must succeed after recovery: %v", err)
	}
	if decided.Status != models.RenewalStatusApproved {
		t.Fatalf("expected approved, got %q", decided.Status)
	}
	var moved models.Student
	if err := db.First(&moved, student.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.AcademicSessionID != next.ID || moved.ContactNumber != "03007654321" {
		t.Fatal("recovered approval must apply the enrollment move and overrides")
	}
}

func TestDecideRenewalOnlyOnce(t *testing.T) {
	db := testDB(t)
	session, class, section := seedCatalog(t, db)
	student := seedStudent(t, db, session, class, section)
	next := seedNextSession(t, db)
	svc := NewRenewalServiceWithDB(db)

	renewal, err := svc.Submit(SubmitRenewalRequest{
		StudentID:         student.ID,
		AcademicSessionID: next.ID,
		ClassID:           class.ID,
		SectionID:         section.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Decide(renewal.ID, models.RenewalStatusApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.Decide(renewal.ID, models.RenewalStatusRejected, "")
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("second decision must fail with invalid state, got %v", err)
	}
}
