package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/gofiber/fiber/v2"
)

// NotificationsController lets operators audit outbound applicant messages.
type NotificationsController struct{}

// List returns outbound notifications, newest first
// GET /api/notifications?status=&page=&limit=
func (nc *NotificationsController) List(c *fiber.Ctx) error {
	page, limit := paginationParams(c)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.OutboundNotification{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, err)
	}

	var rows []models.OutboundNotification
	err := query.Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(paginatedResponse(rows, total, page, limit))
}
