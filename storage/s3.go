package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// StorageService stores applicant documents in a private S3 bucket. Workflow
// records hold only the opaque object key; viewing goes through short-lived
// presigned URLs so the bucket never needs public access.
type StorageService struct {
	s3Client *s3.S3
	bucket   string
}

func NewStorageService() (*StorageService, error) {
	awsCfg := &aws.Config{Region: aws.String(config.AppConfig.AWSRegion)}
	if config.AppConfig.AWSAccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
	}, nil
}

// UploadDocument validates and stores an uploaded document, returning the
// object key. docType partitions the bucket (photo, identity, authority_letter,
// previous_result).
func (s *StorageService) UploadDocument(file *multipart.FileHeader, docType string) (string, error) {
	if file.Size > config.AppConfig.MaxFileSize {
		return "", apperrors.NewValidationFailed(fmt.Sprintf(
			"file exceeds maximum size of %d bytes", config.AppConfig.MaxFileSize))
	}

	ext := fileExtension(file.Filename)
	if !allowedExtension(ext) {
		return "", apperrors.NewValidationFailed(fmt.Sprintf(
			"file type %q not allowed (allowed: %s)", ext, config.AppConfig.AllowedExtensions))
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	now := time.Now()
	key := fmt.Sprintf("documents/%s/%d/%02d/%s.%s",
		docType, now.Year(), now.Month(), uuid.New().String()[:16], ext)

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType(ext)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// PresignGet returns a time-limited download URL for a stored object key.
func (s *StorageService) PresignGet(key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", apperrors.NewValidationFailed("object key is required")
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}

// DeleteObject removes a stored document.
func (s *StorageService) DeleteObject(key string) error {
	if key == "" {
		return apperrors.NewValidationFailed("object key is required")
	}
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func fileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 1 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

func allowedExtension(ext string) bool {
	for _, allowed := range strings.Split(config.AppConfig.AllowedExtensions, ",") {
		if ext == strings.TrimSpace(strings.ToLower(allowed)) {
			return true
		}
	}
	return false
}

func contentType(extension string) string {
	switch strings.ToLower(extension) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
