package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
)

func TestSubmitCreatesPendingApplication(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)

	app := submitTestApplication(t, svc, class.ID)

	if app.Status != models.AdmissionStatusPending {
		t.Fatalf("expected pending status, got %q", app.Status)
	}
	if !strings.HasPrefix(app.ApplicationNumber, "ARB-") {
		t.Fatalf("expected ARB- prefixed number, got %q", app.ApplicationNumber)
	}
	if app.WrittenAdmitEligible {
		t.Fatal("new application must not be written-admit eligible")
	}
}

func TestSubmitValidatesPayload(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)

	_, err := svc.Submit(SubmitApplicationRequest{StudentName: "X"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitRejectsUnknownClass(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)

	_, err := svc.Submit(SubmitApplicationRequest{
		StudentName:   "Abdullah Khan",
		FatherName:    "Rashid Khan",
		ContactNumber: "03001234567",
		Address:       "House 12, Street 4, Lahore",
		ClassID:       9999,
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRecordTestResultSetsSlot(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	updated, err := svc.RecordTestResult(app.ID, models.TestSubjectQuran, true, "85/100", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.QuranPassed == nil || !*updated.QuranPassed {
		t.Fatal("quran slot should be passed")
	}
	if updated.OralPassed != nil || updated.WrittenPassed != nil {
		t.Fatal("other slots must stay unset")
	}
}

func TestRecordTestResultCanBeCorrected(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, true, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, false, "", "did not attend retake")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.OralPassed == nil || *updated.OralPassed {
		t.Fatal("oral slot should have been corrected to failed")
	}
	if updated.OralReason != "did not attend retake" {
		t.Fatalf("expected correction reason, got %q", updated.OralReason)
	}
}

func TestRecordTestResultRejectsTerminalApplication(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.Decide(app.ID, models.AdmissionStatusRejected, "incomplete documents"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.RecordTestResult(app.ID, models.TestSubjectQuran, true, "", "")
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected invalid-state error, got %v", err)
	}
}

func TestRecordTestResultUnknownSubject(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	_, err := svc.RecordTestResult(app.ID, "calligraphy", true, "", "")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkWrittenAdmitEligibleRequiresOralPass(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	// Oral unset
	_, err := svc.MarkWrittenAdmitEligible(app.ID)
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition error with oral unset, got %v", err)
	}

	// Oral failed
	if _, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, false, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.MarkWrittenAdmitEligible(app.ID)
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition error with oral failed, got %v", err)
	}

	// Oral passed
	if _, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, true, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := svc.MarkWrittenAdmitEligible(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.WrittenAdmitEligible {
		t.Fatal("application should be written-admit eligible")
	}
}

func TestMarkWrittenAdmitEligibleIsIdempotent(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, true, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkWrittenAdmitEligible(app.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := svc.MarkWrittenAdmitEligible(app.ID)
	if err != nil {
		t.Fatalf("second call must be a no-op success, got %v", err)
	}
	if !again.WrittenAdmitEligible {
		t.Fatal("flag should remain set")
	}
}

func TestCorrectingOralToFailedRevokesWrittenAdmit(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, true, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkWrittenAdmitEligible(app.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	corrected, err := svc.RecordTestResult(app.ID, models.TestSubjectOral, false, "", "marks entered for the wrong candidate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corrected.OralPassed == nil || *corrected.OralPassed {
		t.Fatal("oral slot should have been corrected to failed")
	}
	if corrected.WrittenAdmitEligible {
		t.Fatal("eligibility must be revoked with the oral correction")
	}

	// Re-correcting a non-oral slot must not resurrect the flag either.
	updated, err := svc.RecordTestResult(app.ID, models.TestSubjectQuran, true, "90/100", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.WrittenAdmitEligible {
		t.Fatal("eligibility must stay revoked until the oral slot passes again")
	}
}

func TestDecideTransitionsPendingOnly(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	approved, err := svc.Decide(app.ID, models.AdmissionStatusApproved, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Status != models.AdmissionStatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}

	_, err = svc.Decide(app.ID, models.AdmissionStatusRejected, "changed our mind")
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("second decision must fail with invalid state, got %v", err)
	}
}

func TestDecideValidatesDecision(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.Decide(app.ID, "maybe", ""); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideMissingApplication(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)

	if _, err := svc.Decide(12345, models.AdmissionStatusApproved, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFullyApproveCreatesStudent(t *testing.T) {
	db := testDB(t)
	session, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.Decide(app.ID, models.AdmissionStatusApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	student, err := svc.FullyApprove(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(student.RollNumber, "STU-") {
		t.Fatalf("expected STU- prefixed roll number, got %q", student.RollNumber)
	}
	if student.AdmissionApplicationID == nil || *student.AdmissionApplicationID != app.ID {
		t.Fatal("student must reference its source application")
	}
	if student.AcademicSessionID != session.ID {
		t.Fatal("student must be enrolled in the active session")
	}
	if student.Name != app.StudentName {
		t.Fatalf("profile should carry over, got name %q", student.Name)
	}

	converted, err := svc.Get(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted.Status != models.AdmissionStatusStudent {
		t.Fatalf("expected student status, got %q", converted.Status)
	}
}

func TestFullyApproveRequiresApprovedStatus(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	_, err := svc.FullyApprove(app.ID)
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition error for pending application, got %v", err)
	}
}

func TestFullyApproveRepeatReturnsExistingStudent(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.Decide(app.ID, models.AdmissionStatusApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := svc.FullyApprove(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.FullyApprove(app.ID)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict on repeat, got %v", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatal("repeat call must hand back the already-enrolled student")
	}

	var count int64
	if err := db.Model(&models.Student{}).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one student, got %d", count)
	}
}

func TestFullyApproveRollsBackWhenStudentInsertFails(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	if _, err := svc.Decide(app.ID, models.AdmissionStatusApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restore := failStudentWrites(t, db)
	if _, err := svc.FullyApprove(app.ID); err == nil {
		t.Fatal("enrollment must fail while student writes fail")
	}

	// Status flip and student insert commit together or not at all.
	after, err := svc.Get(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Status != models.AdmissionStatusApproved {
		t.Fatalf("expected approved after rollback, got %q", after.Status)
	}
	var count int64
	if err := db.Model(&models.Student{}).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("no student row may survive the rollback, got %d", count)
	}

	restore()
	student, err := svc.FullyApprove(app.ID)
	if err != nil {
		t.Fatalf("enrollment must succeed after recovery: %v", err)
	}
	if student.AdmissionApplicationID == nil || *student.AdmissionApplicationID != app.ID {
		t.Fatal("student must reference its source application")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)

	a := submitTestApplication(t, svc, class.ID)
	submitTestApplication(t, svc, class.ID)
	if _, err := svc.Decide(a.ID, models.AdmissionStatusRejected, "late"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, total, err := svc.List(models.AdmissionStatusPending, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Fatalf("expected one pending application, got total=%d len=%d", total, len(pending))
	}

	all, total, err := svc.List("", 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected two applications, got total=%d len=%d", total, len(all))
	}
}

func TestGetByNumber(t *testing.T) {
	db := testDB(t)
	_, class, _ := seedCatalog(t, db)
	svc := NewAdmissionServiceWithDB(db)
	app := submitTestApplication(t, svc, class.ID)

	found, err := svc.GetByNumber(app.ApplicationNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != app.ID {
		t.Fatalf("expected application %d, got %d", app.ID, found.ID)
	}

	if _, err := svc.GetByNumber("ARB-999999"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
