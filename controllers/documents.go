package controllers

import (
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/storage"

	"github.com/gofiber/fiber/v2"
)

// DocumentsController handles applicant document upload and retrieval. Upload
// is public so the intake form can attach files before submission; the stored
// key is what the application record carries.
type DocumentsController struct {
	storage *storage.StorageService
}

func NewDocumentsController() (*DocumentsController, error) {
	svc, err := storage.NewStorageService()
	if err != nil {
		return nil, err
	}
	return &DocumentsController{storage: svc}, nil
}

var allowedDocTypes = map[string]bool{
	"photo":            true,
	"identity":         true,
	"authority_letter": true,
	"previous_result":  true,
}

// Upload stores one document and returns its opaque key
// POST /api/public/documents  (multipart: file, doc_type)
func (dc *DocumentsController) Upload(c *fiber.Ctx) error {
	docType := c.FormValue("doc_type")
	if !allowedDocTypes[docType] {
		return respondError(c, apperrors.NewValidationFailed(
			"doc_type must be one of: photo, identity, authority_letter, previous_result"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	key, err := dc.storage.UploadDocument(file, docType)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Document uploaded",
		"key":     key,
	})
}

// Presign returns a short-lived download URL for a stored document key
// GET /api/documents/presign?key=
func (dc *DocumentsController) Presign(c *fiber.Ctx) error {
	key := c.Query("key")
	url, err := dc.storage.PresignGet(key, 15*time.Minute)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"url":        url,
		"expires_in": int((15 * time.Minute).Seconds()),
	})
}
