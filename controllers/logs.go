package controllers

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"

	"github.com/gofiber/fiber/v2"
)

// LogsController exposes the audit trail and its S3 archives (owner/admin).
type LogsController struct {
	archive *services.LogArchiveService
}

func NewLogsController(archive *services.LogArchiveService) *LogsController {
	return &LogsController{archive: archive}
}

// List returns activity log entries, newest first
// GET /api/logs?user_id=&resource=&page=&limit=
func (lc *LogsController) List(c *fiber.Ctx) error {
	page, limit := paginationParams(c)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := database.DB.Model(&models.ActivityLog{})
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, err)
	}

	var logs []models.ActivityLog
	err := query.Preload("User").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(paginatedResponse(logs, total, page, limit))
}

// ListArchives returns archived log file metadata
// GET /api/logs/archives
func (lc *LogsController) ListArchives(c *fiber.Ctx) error {
	archives, err := lc.archive.GetArchivedLogs()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"archives": archives})
}

// DownloadArchive streams an archive ZIP from S3
// GET /api/logs/archives/:id/download
func (lc *LogsController) DownloadArchive(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	reader, fileName, err := lc.archive.DownloadArchivedLogs(id)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.SendStream(reader)
}
