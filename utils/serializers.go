package utils

import (
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
)

// Compact representations used across APIs

type ClassShort struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

type SectionShort struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

type SessionShort struct {
	ID       uint   `json:"id"`
	Name     string `json:"name,omitempty"`
	IsActive bool   `json:"is_active"`
}

// TestSlotDTO is one subject evaluation on an application.
type TestSlotDTO struct {
	Passed *bool  `json:"passed"`
	Marks  string `json:"marks,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type ApplicationDTO struct {
	ID                   uint        `json:"id"`
	ApplicationNumber    string      `json:"application_number"`
	StudentName          string      `json:"student_name"`
	FatherName           string      `json:"father_name"`
	DateOfBirth          *time.Time  `json:"date_of_birth,omitempty"`
	Gender               string      `json:"gender,omitempty"`
	ContactNumber        string      `json:"contact_number"`
	Email                string      `json:"email,omitempty"`
	Address              string      `json:"address"`
	GuardianName         string      `json:"guardian_name,omitempty"`
	GuardianContact      string      `json:"guardian_contact,omitempty"`
	Class                ClassShort  `json:"class"`
	PhotoKey             string      `json:"photo_key,omitempty"`
	IdentityDocKey       string      `json:"identity_doc_key,omitempty"`
	AuthorityLetterKey   string      `json:"authority_letter_key,omitempty"`
	PreviousResultKey    string      `json:"previous_result_key,omitempty"`
	QuranTest            TestSlotDTO `json:"quran_test"`
	OralTest             TestSlotDTO `json:"oral_test"`
	WrittenTest          TestSlotDTO `json:"written_test"`
	WrittenAdmitEligible bool        `json:"written_admit_eligible"`
	Status               string      `json:"status"`
	StatusReason         string      `json:"status_reason,omitempty"`
	StudentID            *uint       `json:"student_id,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// ToApplicationDTO maps an AdmissionApplication to its API shape.
// Assumes the caller has preloaded Class (and Student when converted).
func ToApplicationDTO(a models.AdmissionApplication) ApplicationDTO {
	dto := ApplicationDTO{
		ID:                   a.ID,
		ApplicationNumber:    a.ApplicationNumber,
		StudentName:          a.StudentName,
		FatherName:           a.FatherName,
		DateOfBirth:          a.DateOfBirth,
		Gender:               a.Gender,
		ContactNumber:        a.ContactNumber,
		Email:                a.Email,
		Address:              a.Address,
		GuardianName:         a.GuardianName,
		GuardianContact:      a.GuardianContact,
		Class:                ClassShort{ID: a.ClassID, Name: a.Class.Name},
		PhotoKey:             a.PhotoKey,
		IdentityDocKey:       a.IdentityDocKey,
		AuthorityLetterKey:   a.AuthorityLetterKey,
		PreviousResultKey:    a.PreviousResultKey,
		QuranTest:            TestSlotDTO{Passed: a.QuranPassed, Marks: a.QuranMarks, Reason: a.QuranReason},
		OralTest:             TestSlotDTO{Passed: a.OralPassed, Marks: a.OralMarks, Reason: a.OralReason},
		WrittenTest:          TestSlotDTO{Passed: a.WrittenPassed, Marks: a.WrittenMarks, Reason: a.WrittenReason},
		WrittenAdmitEligible: a.WrittenAdmitEligible,
		Status:               a.Status,
		StatusReason:         a.StatusReason,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if a.Student != nil {
		id := a.Student.ID
		dto.StudentID = &id
	}
	return dto
}

type StudentDTO struct {
	ID                     uint         `json:"id"`
	RollNumber             string       `json:"roll_number"`
	Name                   string       `json:"name"`
	FatherName             string       `json:"father_name,omitempty"`
	DateOfBirth            *time.Time   `json:"date_of_birth,omitempty"`
	Gender                 string       `json:"gender,omitempty"`
	GuardianName           string       `json:"guardian_name,omitempty"`
	ContactNumber          string       `json:"contact_number,omitempty"`
	Address                string       `json:"address,omitempty"`
	PhotoKey               string       `json:"photo_key,omitempty"`
	AdmissionApplicationID *uint        `json:"admission_application_id,omitempty"`
	AcademicSession        SessionShort `json:"academic_session"`
	Class                  ClassShort   `json:"class"`
	Section                SectionShort `json:"section"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// ToStudentDTO maps a Student to its API shape.
// Assumes the caller has preloaded AcademicSession, Class and Section.
func ToStudentDTO(s models.Student) StudentDTO {
	var section SectionShort
	if s.SectionID != nil {
		section = SectionShort{ID: *s.SectionID, Name: s.Section.Name}
	}
	return StudentDTO{
		ID:                     s.ID,
		RollNumber:             s.RollNumber,
		Name:                   s.Name,
		FatherName:             s.FatherName,
		DateOfBirth:            s.DateOfBirth,
		Gender:                 s.Gender,
		GuardianName:           s.GuardianName,
		ContactNumber:          s.ContactNumber,
		Address:                s.Address,
		PhotoKey:               s.PhotoKey,
		AdmissionApplicationID: s.AdmissionApplicationID,
		AcademicSession:        SessionShort{ID: s.AcademicSessionID, Name: s.AcademicSession.Name, IsActive: s.AcademicSession.IsActive},
		Class:                  ClassShort{ID: s.ClassID, Name: s.Class.Name},
		Section:                section,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

type RenewalDTO struct {
	ID              uint         `json:"id"`
	StudentID       uint         `json:"student_id"`
	RollNumber      string       `json:"roll_number,omitempty"`
	StudentName     string       `json:"student_name,omitempty"`
	AcademicSession SessionShort `json:"academic_session"`
	Class           ClassShort   `json:"class"`
	Section         SectionShort `json:"section"`
	ContactOverride string       `json:"contact_override,omitempty"`
	AddressOverride string       `json:"address_override,omitempty"`
	Status          string       `json:"status"`
	StatusReason    string       `json:"status_reason,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ToRenewalDTO maps a RenewalApplication to its API shape.
// Assumes the caller has preloaded Student, AcademicSession, Class and Section.
func ToRenewalDTO(r models.RenewalApplication) RenewalDTO {
	return RenewalDTO{
		ID:              r.ID,
		StudentID:       r.StudentID,
		RollNumber:      r.Student.RollNumber,
		StudentName:     r.Student.Name,
		AcademicSession: SessionShort{ID: r.AcademicSessionID, Name: r.AcademicSession.Name, IsActive: r.AcademicSession.IsActive},
		Class:           ClassShort{ID: r.ClassID, Name: r.Class.Name},
		Section:         SectionShort{ID: r.SectionID, Name: r.Section.Name},
		ContactOverride: r.ContactOverride,
		AddressOverride: r.AddressOverride,
		Status:          r.Status,
		StatusReason:    r.StatusReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
