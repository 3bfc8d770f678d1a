package services

import (
	"errors"
	"os"
	"testing"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens the integration test database named by TEST_DATABASE_DSN and
// resets workflow tables. Tests that need it are skipped when the variable is
// unset so the pure-function tests still run everywhere.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database-backed test")
	}

	if config.AppConfig == nil {
		config.AppConfig = &config.Config{
			ApplicationNumberPrefix: "ARB",
			RollNumberPrefix:        "STU",
			SequencePadWidth:        6,
		}
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.AcademicSession{},
		&models.Class{},
		&models.Section{},
		&models.AdmissionApplication{},
		&models.Student{},
		&models.RenewalApplication{},
		&models.SequenceCounter{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, table := range []string{
		"renewal_applications",
		"students",
		"admission_applications",
		"sequence_counters",
		"sections",
		"classes",
		"academic_sessions",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset table %s: %v", table, err)
		}
	}

	for _, ns := range []string{NamespaceApplication, NamespaceRoll} {
		if err := db.Create(&models.SequenceCounter{Namespace: ns}).Error; err != nil {
			t.Fatalf("failed to seed sequence counter %s: %v", ns, err)
		}
	}

	return db
}

// failStudentWrites aborts inserts and updates against the students table,
// standing in for a connection fault mid-transaction. The returned func lifts
// the fault again.
func failStudentWrites(t *testing.T, db *gorm.DB) (restore func()) {
	t.Helper()

	abort := func(tx *gorm.DB) {
		if tx.Statement.Table == "students" {
			tx.AddError(errors.New("injected student write failure"))
		}
	}
	if err := db.Callback().Create().Before("gorm:create").Register("test_abort_student_create", abort); err != nil {
		t.Fatalf("failed to register create fault: %v", err)
	}
	if err := db.Callback().Update().Before("gorm:update").Register("test_abort_student_update", abort); err != nil {
		t.Fatalf("failed to register update fault: %v", err)
	}
	return func() {
		db.Callback().Create().Remove("test_abort_student_create")
		db.Callback().Update().Remove("test_abort_student_update")
	}
}

// seedCatalog creates the reference rows a workflow test needs.
func seedCatalog(t *testing.T, db *gorm.DB) (models.AcademicSession, models.Class, models.Section) {
	t.Helper()

	session := models.AcademicSession{Name: "2025-2026", IsActive: true}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	class := models.Class{Name: "Hifz", SortOrder: 1}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("failed to seed class: %v", err)
	}

	section := models.Section{ClassID: class.ID, Name: "A", SortOrder: 1}
	if err := db.Create(&section).Error; err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}

	return session, class, section
}

// submitTestApplication pushes a valid application through intake.
func submitTestApplication(t *testing.T, svc *AdmissionService, classID uint) *models.AdmissionApplication {
	t.Helper()

	app, err := svc.Submit(SubmitApplicationRequest{
		StudentName:   "Abdullah Khan",
		FatherName:    "Rashid Khan",
		ContactNumber: "03001234567",
		Address:       "House 12, Street 4, Lahore",
		GuardianName:  "Rashid Khan",
		ClassID:       classID,
	})
	if err != nil {
		t.Fatalf("failed to submit application: %v", err)
	}
	return app
}
