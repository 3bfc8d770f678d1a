package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LogArchiveService flushes Redis-cached activity logs into the database and
// periodically archives old rows to S3 as zipped JSON+CSV exports.
type LogArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
	cron        *cron.Cron
}

// archivedLog is the representation stored inside archive files.
type archivedLog struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	UserRole   string         `json:"user_role,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewLogArchiveService() *LogArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; log archiving to S3 disabled until configured")
	}

	return &LogArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedLogsToDatabase moves activity logs older than 24h from the Redis
// cache into MySQL. Recent entries stay cached for the dashboard's live view.
func (las *LogArchiveService) FlushCachedLogsToDatabase() error {
	if las.redisClient == nil {
		return errors.New("redis client not available")
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-24 * time.Hour)

	expired, err := las.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read expired log keys: %w", err)
	}

	var processed, failed int
	for _, logKey := range expired {
		data, err := las.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to read cached log %s", logKey)
				failed++
			}
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal cached log %s", logKey)
			failed++
			continue
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Error("Failed to persist cached log")
			failed++
			continue
		}

		pipe := las.redisClient.Pipeline()
		pipe.Del(ctx, logKey)
		pipe.ZRem(ctx, "logs:queue", logKey)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to evict cached log %s", logKey)
		}
		processed++
	}

	if processed > 0 || failed > 0 {
		logrus.Infof("Flushed %d cached logs to database, %d errors", processed, failed)
	}
	return nil
}

// ArchiveOldLogs exports activity logs older than daysOld to S3, then removes
// them from the database. The 7-day floor protects against misconfiguration
// wiping recent audit history.
func (las *LogArchiveService) ArchiveOldLogs(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum archive age is 7 days, got %d", daysOld)
	}

	cutoff := time.Now().AddDate(0, 0, -daysOld)

	batchSize := 1000
	var all []archivedLog
	for offset := 0; ; offset += batchSize {
		var logs []models.ActivityLog
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoff).
			Order("id ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&logs).Error
		if err != nil {
			return fmt.Errorf("failed to fetch logs for archiving: %w", err)
		}
		if len(logs) == 0 {
			break
		}

		for _, l := range logs {
			entry := archivedLog{
				ID:         l.ID,
				UserID:     l.UserID,
				Action:     l.Action,
				Resource:   l.Resource,
				ResourceID: l.ResourceID,
				IPAddress:  l.IPAddress,
				UserAgent:  l.UserAgent,
				CreatedAt:  l.CreatedAt,
			}
			if !l.Details.IsNull() {
				var details map[string]any
				if err := json.Unmarshal(l.Details, &details); err == nil {
					entry.Details = details
				}
			}
			if l.User.ID > 0 {
				entry.Username = l.User.Username
				entry.UserRole = l.User.Role
			}
			all = append(all, entry)
		}
	}

	if len(all) == 0 {
		return nil
	}
	logrus.Infof("Archiving %d activity logs older than %s", len(all), cutoff.Format("2006-01-02"))

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format("2006-01-02"))
	buf, err := las.buildArchive(all, fileName)
	if err != nil {
		return fmt.Errorf("failed to build archive: %w", err)
	}

	s3Key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
	if err := las.uploadToS3(s3Key, buf); err != nil {
		return fmt.Errorf("failed to upload archive to S3: %w", err)
	}

	// Unscoped: archived rows must actually leave the table, not soft-delete
	result := database.DB.Unscoped().Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived logs: %w", result.Error)
	}
	logrus.Infof("Archived %s and removed %d rows", s3Key, result.RowsAffected)

	meta := models.LogArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		StartDate:   all[0].CreatedAt,
		EndDate:     cutoff,
		RecordCount: len(all),
		FileSize:    int64(buf.Len()),
		Status:      "completed",
	}
	if err := database.DB.Create(&meta).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}

	return nil
}

// buildArchive produces a ZIP with JSON and CSV renderings of the logs.
func (las *LogArchiveService) buildArchive(logs []archivedLog, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	jsonFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(jsonFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"file_name":    fileName,
		"export_date":  time.Now().UTC(),
		"record_count": len(logs),
		"date_range": map[string]any{
			"start": logs[0].CreatedAt,
			"end":   logs[len(logs)-1].CreatedAt,
		},
		"logs": logs,
	}); err != nil {
		return nil, err
	}

	csvFile, err := zw.Create("activity_logs.csv")
	if err != nil {
		return nil, err
	}
	csvFile.Write([]byte("ID,User ID,Username,Role,Action,Resource,Resource ID,IP Address,Created At,Details\n"))
	for _, l := range logs {
		details := ""
		if l.Details != nil {
			if b, err := json.Marshal(l.Details); err == nil {
				details = strings.ReplaceAll(string(b), "\"", "\"\"")
			}
		}
		line := fmt.Sprintf("%d,%d,%s,%s,%s,%s,%d,%s,%s,\"%s\"\n",
			l.ID, l.UserID, l.Username, l.UserRole, l.Action, l.Resource,
			l.ResourceID, l.IPAddress, l.CreatedAt.Format("2006-01-02 15:04:05"), details)
		csvFile.Write([]byte(line))
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (las *LogArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if las.awsConfig.Region == "" {
		return errors.New("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	bucket := config.AppConfig.S3BucketName

	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

func (las *LogArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if las.awsConfig.Region == "" {
		return nil, errors.New("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	bucket := config.AppConfig.S3BucketName

	out, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// GetArchivedLogs lists archive metadata records, newest first.
func (las *LogArchiveService) GetArchivedLogs() ([]models.LogArchive, error) {
	var archives []models.LogArchive
	err := database.DB.Order("created_at DESC").Find(&archives).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return archives, nil
}

// DownloadArchivedLogs streams a stored archive back from S3.
func (las *LogArchiveService) DownloadArchivedLogs(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.NewNotFound(fmt.Sprintf("log archive %d not found", archiveID))
		}
		return nil, "", err
	}

	reader, err := las.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %w", err)
	}
	return reader, archive.FileName, nil
}

// StartScheduler runs flush hourly and archiving daily off-peak.
func (las *LogArchiveService) StartScheduler() {
	if las.cron != nil {
		return
	}
	las.cron = cron.New()

	las.cron.AddFunc("@hourly", func() {
		if err := las.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("scheduled log flush failed")
		}
	})
	las.cron.AddFunc("30 2 * * *", func() {
		if err := las.ArchiveOldLogs(30); err != nil {
			logrus.WithError(err).Warn("scheduled log archive failed")
		}
	})

	las.cron.Start()
	logrus.Info("Log maintenance scheduler started")
}

// StopScheduler stops the background jobs, waiting for any in flight.
func (las *LogArchiveService) StopScheduler() {
	if las.cron != nil {
		ctx := las.cron.Stop()
		<-ctx.Done()
	}
}
