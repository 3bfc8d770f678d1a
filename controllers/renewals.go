package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/notifications"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RenewalsController exposes the session renewal workflow. Roll number lookup
// and submission are public so guardians can renew without an account.
type RenewalsController struct {
	service  *services.RenewalService
	notifier *notifications.Service
}

func NewRenewalsController() *RenewalsController {
	return &RenewalsController{
		service:  services.NewRenewalService(),
		notifier: notifications.NewService(),
	}
}

// FindStudentByRoll is the public lookup backing the renewal form
// GET /api/public/renewals/student/:roll
func (rc *RenewalsController) FindStudentByRoll(c *fiber.Ctx) error {
	student, err := rc.service.FindStudentByRoll(c.Params("roll"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"student": utils.ToStudentDTO(*student)})
}

// Submit handles the public renewal form
// POST /api/public/renewals
func (rc *RenewalsController) Submit(c *fiber.Ctx) error {
	var req services.SubmitRenewalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	renewal, err := rc.service.Submit(req)
	if err != nil {
		return respondError(c, err)
	}

	rc.notifier.BroadcastEvent("renewal.submitted", fiber.Map{
		"id":         renewal.ID,
		"student_id": renewal.StudentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Renewal application submitted successfully",
		"id":      renewal.ID,
	})
}

// List returns renewal applications for operators
// GET /api/renewals?status=&page=&limit=
func (rc *RenewalsController) List(c *fiber.Ctx) error {
	page, limit := paginationParams(c)
	renewals, total, err := rc.service.List(c.Query("status"), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	dtos := make([]utils.RenewalDTO, 0, len(renewals))
	for _, r := range renewals {
		dtos = append(dtos, utils.ToRenewalDTO(r))
	}
	return c.JSON(paginatedResponse(dtos, total, page, limit))
}

// Get returns a single renewal application
// GET /api/renewals/:id
func (rc *RenewalsController) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	renewal, err := rc.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"renewal": utils.ToRenewalDTO(*renewal)})
}

// Decide approves or rejects a pending renewal
// POST /api/renewals/:id/decision
func (rc *RenewalsController) Decide(c *fiber.Ctx) error {
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

	renewal, err := rc.service.Decide(id, req.Decision, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "renewals", id, fiber.Map{
		"decision": req.Decision,
		"reason":   req.Reason,
	})

	decided := renewal
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in notification dispatch")
			}
		}()
		if err := rc.notifier.EnqueueOrCreate(notifications.RenewalDecided(decided)); err != nil {
			logrus.WithError(err).Warn("Failed to dispatch renewal notification")
		}
	}()
	rc.notifier.BroadcastEvent("renewal.decided", fiber.Map{
		"id":     renewal.ID,
		"status": renewal.Status,
	})

	return c.JSON(fiber.Map{
		"message": "Decision recorded",
		"renewal": utils.ToRenewalDTO(*renewal),
	})
}
