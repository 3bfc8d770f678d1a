package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService renders admission and enrollment data as Excel workbooks for
// the office staff. Reports are read-only snapshots; nothing here mutates
// workflow state.
type ReportService struct {
	db *gorm.DB
}

func NewReportService() *ReportService {
	return &ReportService{db: database.GetDB()}
}

// NewReportServiceWithDB is used by tests.
func NewReportServiceWithDB(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func boolCell(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "Pass"
	}
	return "Fail"
}

// AdmissionsWorkbook exports admission applications, optionally filtered by
// status, as a single-sheet workbook.
func (r *ReportService) AdmissionsWorkbook(status string) (*bytes.Buffer, string, error) {
	query := r.db.Model(&models.AdmissionApplication{}).Preload("Class")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.AdmissionApplication
	if err := query.Order("id ASC").Find(&apps).Error; err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Application No", "Student Name", "Father Name", "Class", "Contact",
		"Quran", "Oral", "Written", "Written Admit", "Status", "Submitted",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, app := range apps {
		writtenAdmit := "No"
		if app.WrittenAdmitEligible {
			writtenAdmit = "Yes"
		}
		values := []interface{}{
			app.ApplicationNumber,
			app.StudentName,
			app.FatherName,
			app.Class.Name,
			app.ContactNumber,
			boolCell(app.QuranPassed),
			boolCell(app.OralPassed),
			boolCell(app.WrittenPassed),
			writtenAdmit,
			app.Status,
			app.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 22)
	f.SetColWidth(sheet, "C", "E", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	name := fmt.Sprintf("admissions_%s.xlsx", time.Now().Format("2006-01-02"))
	if status != "" {
		name = fmt.Sprintf("admissions_%s_%s.xlsx", status, time.Now().Format("2006-01-02"))
	}
	return buf, name, nil
}

// StudentsWorkbook exports the enrolled student roster grouped by class, one
// sheet per class plus a summary sheet.
func (r *ReportService) StudentsWorkbook() (*bytes.Buffer, string, error) {
	var classes []models.Class
	if err := r.db.Order("sort_order ASC, id ASC").Find(&classes).Error; err != nil {
		return nil, "", err
	}

	var students []models.Student
	err := r.db.Preload("Class").Preload("Section").Preload("AcademicSession").
		Order("roll_number ASC").Find(&students).Error
	if err != nil {
		return nil, "", err
	}

	byClass := make(map[uint][]models.Student)
	for _, s := range students {
		byClass[s.ClassID] = append(byClass[s.ClassID], s)
	}

	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	f.SetCellValue(summary, "A1", "Class")
	f.SetCellValue(summary, "B1", "Students")
	for i, cls := range classes {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+2), cls.Name)
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+2), len(byClass[cls.ID]))
	}
	f.SetCellValue(summary, fmt.Sprintf("A%d", len(classes)+2), "Total")
	f.SetCellValue(summary, fmt.Sprintf("B%d", len(classes)+2), len(students))

	headers := []string{"Roll No", "Name", "Father Name", "Section", "Session", "Contact"}
	for _, cls := range classes {
		roster := byClass[cls.ID]
		if len(roster) == 0 {
			continue
		}
		sheet := cls.Name
		f.NewSheet(sheet)
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for row, s := range roster {
			values := []interface{}{
				s.RollNumber, s.Name, s.FatherName,
				s.Section.Name, s.AcademicSession.Name, s.ContactNumber,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}
		f.SetColWidth(sheet, "A", "C", 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, fmt.Sprintf("students_%s.xlsx", time.Now().Format("2006-01-02")), nil
}
