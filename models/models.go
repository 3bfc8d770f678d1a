package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Admission application statuses
const (
	AdmissionStatusPending  = "pending"
	AdmissionStatusApproved = "approved"
	AdmissionStatusRejected = "rejected"
	AdmissionStatusStudent  = "student"
)

// Renewal application statuses
const (
	RenewalStatusPending  = "pending"
	RenewalStatusApproved = "approved"
	RenewalStatusRejected = "rejected"
)

// Test subjects evaluated on an admission application
const (
	TestSubjectQuran   = "quran"
	TestSubjectOral    = "oral"
	TestSubjectWritten = "written"
)

// User model for admin operators
type User struct {
	BaseModel
	Username             string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password             string     `json:"-" gorm:"size:255;not null"`
	Email                string     `json:"email" gorm:"size:255;uniqueIndex"`
	Phone                string     `json:"phone" gorm:"size:20"`
	Role                 string     `json:"role" gorm:"size:50;not null;default:'registrar';type:enum('owner','admin','registrar')"` // owner, admin, registrar
	Status               string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
	Avatar               string     `json:"avatar" gorm:"size:500"`
	PasswordResetToken   string     `json:"-" gorm:"size:255"`
	PasswordResetExpires *time.Time `json:"-"`
}

// AcademicSession model (reference catalog)
type AcademicSession struct {
	BaseModel
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active" gorm:"default:false"`
}

// Class model (reference catalog)
type Class struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	SortOrder int    `json:"sort_order" gorm:"default:1"`

	// Relationships
	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:ClassID"`
}

// Section model, belongs to a Class (reference catalog)
type Section struct {
	BaseModel
	ClassID   uint   `json:"class_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"size:100;not null"`
	SortOrder int    `json:"sort_order" gorm:"default:1"`

	// Relationships
	Class Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

// AdmissionApplication is a candidate record progressing toward enrollment.
// The three test slots (quran, oral, written) are independent: each holds a
// nullable passed flag plus free-form marks and reason, and may be re-recorded
// until the application reaches a terminal status.
type AdmissionApplication struct {
	BaseModel
	ApplicationNumber string `json:"application_number" gorm:"size:50;not null;uniqueIndex"`

	// Profile
	StudentName     string     `json:"student_name" gorm:"size:200;not null"`
	FatherName      string     `json:"father_name" gorm:"size:200;not null"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender" gorm:"size:20"`
	ContactNumber   string     `json:"contact_number" gorm:"size:20;not null"`
	Email           string     `json:"email" gorm:"size:255"`
	Address         string     `json:"address" gorm:"size:500;not null"`
	GuardianName    string     `json:"guardian_name" gorm:"size:200"`
	GuardianContact string     `json:"guardian_contact" gorm:"size:20"`
	ClassID         uint       `json:"class_id" gorm:"not null"`

	// Document storage keys, opaque to the workflow
	PhotoKey           string `json:"photo_key" gorm:"size:500"`
	IdentityDocKey     string `json:"identity_doc_key" gorm:"size:500"`
	AuthorityLetterKey string `json:"authority_letter_key" gorm:"size:500"`
	PreviousResultKey  string `json:"previous_result_key" gorm:"size:500"`

	// Test slots
	QuranPassed   *bool  `json:"quran_passed"`
	QuranMarks    string `json:"quran_marks" gorm:"size:50"`
	QuranReason   string `json:"quran_reason" gorm:"size:500"`
	OralPassed    *bool  `json:"oral_passed"`
	OralMarks     string `json:"oral_marks" gorm:"size:50"`
	OralReason    string `json:"oral_reason" gorm:"size:500"`
	WrittenPassed *bool  `json:"written_passed"`
	WrittenMarks  string `json:"written_marks" gorm:"size:50"`
	WrittenReason string `json:"written_reason" gorm:"size:500"`

	// Derived: may only become true once the oral slot is passed
	WrittenAdmitEligible bool `json:"written_admit_eligible" gorm:"default:false"`

	Status       string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','approved','rejected','student');index"`
	StatusReason string `json:"status_reason" gorm:"size:500"`

	// Relationships
	Class   Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:AdmissionApplicationID"`
}

// IsTerminal reports whether the application can no longer be mutated.
func (a *AdmissionApplication) IsTerminal() bool {
	return a.Status == AdmissionStatusRejected || a.Status == AdmissionStatusStudent
}

// GuardianOrApplicantName picks the name notifications address. Guardian when
// one was recorded, else the student.
func (a *AdmissionApplication) GuardianOrApplicantName() string {
	if a.GuardianName != "" {
		return a.GuardianName
	}
	return a.StudentName
}

// Student model. AdmissionApplicationID is nullable: migrated students were
// never converted from an application. The unique index guarantees no two
// students can ever claim the same application.
type Student struct {
	BaseModel
	RollNumber             string     `json:"roll_number" gorm:"size:50;not null;uniqueIndex"`
	Name                   string     `json:"name" gorm:"size:200;not null"`
	FatherName             string     `json:"father_name" gorm:"size:200"`
	DateOfBirth            *time.Time `json:"date_of_birth"`
	Gender                 string     `json:"gender" gorm:"size:20"`
	GuardianName           string     `json:"guardian_name" gorm:"size:200"`
	ContactNumber          string     `json:"contact_number" gorm:"size:20"`
	Address                string     `json:"address" gorm:"size:500"`
	PhotoKey               string     `json:"photo_key" gorm:"size:500"`
	AdmissionApplicationID *uint      `json:"admission_application_id" gorm:"uniqueIndex"`

	// Current enrollment, mutated only by approved renewals. Fresh enrollees
	// have no section until one is assigned.
	AcademicSessionID uint  `json:"academic_session_id" gorm:"index"`
	ClassID           uint  `json:"class_id" gorm:"index"`
	SectionID         *uint `json:"section_id"`

	// Relationships
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
	Class           Class           `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Section         Section         `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

// RenewalApplication re-enrolls an existing student into a new session.
// Overrides are one-time corrections applied to the student only on approval.
type RenewalApplication struct {
	BaseModel
	StudentID         uint   `json:"student_id" gorm:"not null;index"`
	AcademicSessionID uint   `json:"academic_session_id" gorm:"not null;index"`
	ClassID           uint   `json:"class_id" gorm:"not null"`
	SectionID         uint   `json:"section_id" gorm:"not null"`
	ContactOverride   string `json:"contact_override" gorm:"size:20"`
	AddressOverride   string `json:"address_override" gorm:"size:500"`
	Status            string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','approved','rejected');index"`
	StatusReason      string `json:"status_reason" gorm:"size:500"`

	// Relationships
	Student         Student         `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
	Class           Class           `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Section         Section         `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}

// SequenceCounter backs the identifier generator. One row per namespace;
// the value is only ever read and advanced under a row lock.
type SequenceCounter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Namespace string    `json:"namespace" gorm:"size:50;not null;uniqueIndex"`
	Value     uint64    `json:"value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// OutboundNotification is a best-effort message to an applicant or guardian,
// keyed by contact info rather than a user account.
type OutboundNotification struct {
	BaseModel
	RecipientName string     `json:"recipient_name" gorm:"size:200"`
	Email         string     `json:"email" gorm:"size:255"`
	Phone         string     `json:"phone" gorm:"size:20"`
	Subject       string     `json:"subject" gorm:"size:255;not null"`
	Message       string     `json:"message" gorm:"type:text;not null"`
	Channels      JSON       `json:"channels" gorm:"type:json"`
	Status        string     `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','sent','failed')"`
	Error         string     `json:"error" gorm:"type:text"`
	DispatchedAt  *time.Time `json:"dispatched_at"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error       string    `json:"error" gorm:"type:text"`
}
