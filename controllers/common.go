package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error to its HTTP response. Domain errors carry
// their message; anything else is logged and returned as a generic 500 so
// infrastructure details never leak to callers.
func respondError(c *fiber.Ctx, err error) error {
	if apperrors.IsDomain(err) {
		return c.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("Unhandled service error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// paginationParams reads ?page and ?limit with the service-layer defaults.
func paginationParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	return page, limit
}

// paginatedResponse is the standard list envelope.
func paginatedResponse(items interface{}, total int64, page, limit int) fiber.Map {
	return fiber.Map{
		"data": items,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	}
}

// idParam parses the :id route parameter.
func idParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationFailed("invalid id parameter")
	}
	return uint(id), nil
}
