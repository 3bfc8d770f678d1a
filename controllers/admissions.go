package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/notifications"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdmissionsController exposes the admission workflow. Intake and status
// lookup are public; everything else sits behind operator auth.
type AdmissionsController struct {
	service  *services.AdmissionService
	notifier *notifications.Service
}

func NewAdmissionsController() *AdmissionsController {
	return &AdmissionsController{
		service:  services.NewAdmissionService(),
		notifier: notifications.NewService(),
	}
}

// notify delivers applicant messages off the request path. Failures are
// logged; the workflow result never depends on notification delivery.
func (ac *AdmissionsController) notify(build func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in notification dispatch")
			}
		}()
		if err := build(); err != nil {
			logrus.WithError(err).Warn("Failed to dispatch applicant notification")
		}
	}()
}

// Submit handles the public admission intake form
// POST /api/public/admissions
func (ac *AdmissionsController) Submit(c *fiber.Ctx) error {
	var req services.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	app, err := ac.service.Submit(req)
	if err != nil {
		return respondError(c, err)
	}

	ac.notify(func() error {
		return ac.notifier.EnqueueOrCreate(notifications.ApplicationReceived(app))
	})
	ac.notifier.BroadcastEvent("admission.submitted", fiber.Map{
		"id":                 app.ID,
		"application_number": app.ApplicationNumber,
		"student_name":       app.StudentName,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "Application submitted successfully",
		"application_number": app.ApplicationNumber,
		"id":                 app.ID,
	})
}

// GetByNumber is the public status lookup by application number
// GET /api/public/admissions/:number
func (ac *AdmissionsController) GetByNumber(c *fiber.Ctx) error {
	number := c.Params("number")
	app, err := ac.service.GetByNumber(number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"application": utils.ToApplicationDTO(*app)})
}

// List returns admission applications for operators
// GET /api/admissions?status=&page=&limit=
func (ac *AdmissionsController) List(c *fiber.Ctx) error {
	page, limit := paginationParams(c)
	apps, total, err := ac.service.List(c.Query("status"), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	dtos := make([]utils.ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dtos = append(dtos, utils.ToApplicationDTO(app))
	}
	return c.JSON(paginatedResponse(dtos, total, page, limit))
}

// Get returns a single admission application
// GET /api/admissions/:id
func (ac *AdmissionsController) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	app, err := ac.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"application": utils.ToApplicationDTO(*app)})
}

// TestResultRequest records one subject evaluation
type TestResultRequest struct {
	Subject string `json:"subject" validate:"required"`
	Passed  bool   `json:"passed"`
	Marks   string `json:"marks"`
	Reason  string `json:"reason"`
}

// RecordTestResult sets or corrects one of the three test slots
// PUT /api/admissions/:id/test-result
func (ac *AdmissionsController) RecordTestResult(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req TestResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !utils.IsValidTestSubject(req.Subject) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject must be one of: quran, oral, written",
		})
	}

	app, err := ac.service.RecordTestResult(id, req.Subject, req.Passed, req.Marks, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "admissions", id, fiber.Map{
		"subject": req.Subject,
		"passed":  req.Passed,
	})

	return c.JSON(fiber.Map{
		"message":     "Test result recorded",
		"application": utils.ToApplicationDTO(*app),
	})
}

// MarkWrittenAdmitEligible flips the written-admit eligibility flag
// POST /api/admissions/:id/written-admit
func (ac *AdmissionsController) MarkWrittenAdmitEligible(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	app, err := ac.service.MarkWrittenAdmitEligible(id)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "admissions", id, fiber.Map{
		"field": "written_admit_eligible",
	})

	return c.JSON(fiber.Map{
		"message":     "Application marked eligible for written admit",
		"application": utils.ToApplicationDTO(*app),
	})
}

// DecisionRequest carries the coarse accept/reject decision
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required"`
	Reason   string `json:"reason"`
}

// Decide approves or rejects a pending application
// POST /api/admissions/:id/decision
func (ac *AdmissionsController) Decide(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	app, err := ac.service.Decide(id, req.Decision, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "admissions", id, fiber.Map{
		"decision": req.Decision,
		"reason":   req.Reason,
	})

	ac.notify(func() error {
		return ac.notifier.EnqueueOrCreate(notifications.ApplicationDecided(app))
	})
	ac.notifier.BroadcastEvent("admission.decided", fiber.Map{
		"id":                 app.ID,
		"application_number": app.ApplicationNumber,
		"status":             app.Status,
	})

	return c.JSON(fiber.Map{
		"message":     "Decision recorded",
		"application": utils.ToApplicationDTO(*app),
	})
}

// FullyApprove converts an approved application into an enrolled student
// POST /api/admissions/:id/enroll
func (ac *AdmissionsController) FullyApprove(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	student, err := ac.service.FullyApprove(id)
	if err != nil {
		// A lost race still identifies the enrolled student
		if student != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   err.Error(),
				"student": fiber.Map{"id": student.ID, "roll_number": student.RollNumber},
			})
		}
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, fiber.Map{
		"application_id": id,
		"roll_number":    student.RollNumber,
	})

	if app, getErr := ac.service.Get(id); getErr == nil {
		enrolled := student
		ac.notify(func() error {
			return ac.notifier.EnqueueOrCreate(notifications.EnrollmentApproved(app, enrolled))
		})
	}
	ac.notifier.BroadcastEvent("admission.enrolled", fiber.Map{
		"application_id": id,
		"student_id":     student.ID,
		"roll_number":    student.RollNumber,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student enrolled successfully",
		"student": fiber.Map{
			"id":          student.ID,
			"roll_number": student.RollNumber,
			"name":        student.Name,
		},
	})
}
