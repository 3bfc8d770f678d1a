package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"

	"github.com/gofiber/fiber/v2"
)

// ReportsController serves Excel exports for the office staff.
type ReportsController struct {
	service *services.ReportService
}

func NewReportsController() *ReportsController {
	return &ReportsController{service: services.NewReportService()}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportAdmissions downloads the admission applications workbook
// GET /api/reports/admissions.xlsx?status=
func (rc *ReportsController) ExportAdmissions(c *fiber.Ctx) error {
	buf, name, err := rc.service.AdmissionsWorkbook(c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "EXPORT", "admissions", 0, fiber.Map{"file": name})

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}

// ExportStudents downloads the student roster workbook
// GET /api/reports/students.xlsx
func (rc *ReportsController) ExportStudents(c *fiber.Ctx) error {
	buf, name, err := rc.service.StudentsWorkbook()
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "EXPORT", "students", 0, fiber.Map{"file": name})

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
