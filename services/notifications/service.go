package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Queue item structure stored in Redis. Kept minimal to reduce payload size.
// Delivery is best-effort: the triggering operation has already committed by
// the time anything here runs, and failures are logged, never propagated.
type queuedMessage struct {
	RecipientName string    `json:"recipient_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Subject       string    `json:"subject"`
	Message       string    `json:"message"`
	Channels      []string  `json:"channels,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const redisListKey = "notifications:outbound"

// EmailSender delivers a message over email.
type EmailSender interface {
	Send(toEmail, toName, subject, body string) error
}

// TextSender delivers a message to a phone number (WhatsApp gateway).
type TextSender interface {
	Send(phone, body string) error
}

// WSHub broadcasts admin-facing events to connected dashboard clients.
type WSHub interface {
	Broadcast(message interface{})
}

var (
	defaultEmail EmailSender
	defaultText  TextSender
	defaultHub   WSHub
)

// SetDefaultSenders wires the package-level delivery channels used by new
// Service instances.
func SetDefaultSenders(email EmailSender, text TextSender) {
	defaultEmail = email
	defaultText = text
}

// SetDefaultWSHub sets the package-level hub used by new Service instances.
func SetDefaultWSHub(h WSHub) {
	defaultHub = h
}

// Service persists applicant notifications and dispatches them over the
// configured channels, optionally via a Redis queue. If Redis is disabled or
// unavailable it falls back to direct insert-and-send.
type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	useRedis bool
	email    EmailSender
	text     TextSender
	wsHub    WSHub
}

func NewService() *Service {
	return &Service{
		db:       database.GetDB(),
		redis:    database.GetRedisClient(),
		useRedis: config.AppConfig != nil && config.AppConfig.UseRedisNotifications && database.GetRedisClient() != nil,
		email:    defaultEmail,
		text:     defaultText,
		wsHub:    defaultHub,
	}
}

// normalizeChannels keeps only allowed values and derives a default from the
// contact info present on the message.
func normalizeChannels(in []string, hasEmail, hasPhone bool) []string {
	allowed := map[string]struct{}{"email": {}, "whatsapp": {}}
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, ch := range in {
		if _, ok := allowed[ch]; ok {
			if _, dup := seen[ch]; !dup {
				out = append(out, ch)
				seen[ch] = struct{}{}
			}
		}
	}
	if len(out) == 0 {
		if hasEmail {
			out = append(out, "email")
		}
		if hasPhone {
			out = append(out, "whatsapp")
		}
	}
	return out
}

// ApplicationReceived builds the intake confirmation message.
func ApplicationReceived(app *models.AdmissionApplication) queuedMessage {
	return queuedMessage{
		RecipientName: app.GuardianOrApplicantName(),
		Email:         app.Email,
		Phone:         app.ContactNumber,
		Subject:       "Admission application received",
		Message: fmt.Sprintf(
			"Assalamu alaikum %s, the admission application for %s has been received. Your application number is %s. Please keep it for test-day reference.",
			app.GuardianOrApplicantName(), app.StudentName, app.ApplicationNumber),
	}
}

// ApplicationDecided builds the accept/reject decision message.
func ApplicationDecided(app *models.AdmissionApplication) queuedMessage {
	verdict := "has been approved. Please await the enrollment confirmation"
	if app.Status == models.AdmissionStatusRejected {
		verdict = "could not be approved"
		if app.StatusReason != "" {
			verdict += " (" + app.StatusReason + ")"
		}
	}
	return queuedMessage{
		RecipientName: app.GuardianOrApplicantName(),
		Email:         app.Email,
		Phone:         app.ContactNumber,
		Subject:       "Admission application update",
		Message: fmt.Sprintf("Assalamu alaikum %s, application %s for %s %s.",
			app.GuardianOrApplicantName(), app.ApplicationNumber, app.StudentName, verdict),
	}
}

// EnrollmentApproved builds the final enrollment message carrying the roll number.
func EnrollmentApproved(app *models.AdmissionApplication, student *models.Student) queuedMessage {
	return queuedMessage{
		RecipientName: app.GuardianOrApplicantName(),
		Email:         app.Email,
		Phone:         app.ContactNumber,
		Subject:       "Enrollment confirmed",
		Message: fmt.Sprintf(
			"Assalamu alaikum %s, %s has been enrolled at Jamia Arabia Islamia. The roll number is %s.",
			app.GuardianOrApplicantName(), student.Name, student.RollNumber),
	}
}

// RenewalDecided builds the renewal decision message.
func RenewalDecided(renewal *models.RenewalApplication) queuedMessage {
	verdict := "has been approved"
	if renewal.Status == models.RenewalStatusRejected {
		verdict = "could not be approved"
		if renewal.StatusReason != "" {
			verdict += " (" + renewal.StatusReason + ")"
		}
	}
	return queuedMessage{
		RecipientName: renewal.Student.Name,
		Phone:         renewal.Student.ContactNumber,
		Subject:       "Session renewal update",
		Message: fmt.Sprintf("Assalamu alaikum, the session renewal for roll number %s %s.",
			renewal.Student.RollNumber, verdict),
	}
}

// EnqueueOrCreate stores the notification using the Redis queue if enabled,
// else inserts and dispatches directly.
func (s *Service) EnqueueOrCreate(n queuedMessage) error {
	if n.Email == "" && n.Phone == "" {
		return errors.New("no recipient contact info")
	}
	n.CreatedAt = time.Now().UTC()

	if s.useRedis {
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err = s.redis.RPush(context.Background(), redisListKey, b).Err(); err == nil {
			return nil // queued successfully
		}
		logrus.WithError(err).Warn("[notif] Redis enqueue failed, falling back to direct dispatch")
	}

	return s.createAndDispatch(n)
}

// BroadcastEvent pushes an admin dashboard event over the WebSocket hub.
func (s *Service) BroadcastEvent(eventType string, data interface{}) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
}

// createAndDispatch writes the outbound row then hands it to dispatchRow.
func (s *Service) createAndDispatch(n queuedMessage) error {
	channels := normalizeChannels(n.Channels, n.Email != "", n.Phone != "")
	channelsJSON, err := json.Marshal(channels)
	if err != nil {
		channelsJSON = []byte(`[]`)
	}

	row := models.OutboundNotification{
		RecipientName: n.RecipientName,
		Email:         n.Email,
		Phone:         n.Phone,
		Subject:       n.Subject,
		Message:       n.Message,
		Channels:      channelsJSON,
		Status:        "pending",
	}
	if err := s.db.Create(&row).Error; err != nil {
		return err
	}

	s.dispatchRow(&row, channels)
	return nil
}

// dispatchRow attempts delivery on every requested channel and records the
// outcome on the row. Delivery errors mark the row failed and are logged only.
func (s *Service) dispatchRow(row *models.OutboundNotification, channels []string) {
	var firstErr error
	for _, ch := range channels {
		switch ch {
		case "email":
			if s.email == nil || row.Email == "" {
				continue
			}
			if err := s.email.Send(row.Email, row.RecipientName, row.Subject, row.Message); err != nil && firstErr == nil {
				firstErr = err
			}
		case "whatsapp":
			if s.text == nil || row.Phone == "" {
				continue
			}
			if err := s.text.Send(row.Phone, row.Message); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        "sent",
		"dispatched_at": &now,
	}
	if firstErr != nil {
		updates["status"] = "failed"
		updates["error"] = firstErr.Error()
		logrus.WithError(firstErr).WithFields(logrus.Fields{
			"subject": row.Subject,
			"phone":   row.Phone,
			"email":   row.Email,
		}).Warn("[notif] dispatch failed")
	}
	if err := s.db.Model(row).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("[notif] failed to record dispatch outcome")
	}
}

// StartWorker starts a background worker polling the Redis queue and flushing
// to DB + delivery channels.
func (s *Service) StartWorker(stop <-chan struct{}) {
	if !s.useRedis {
		logrus.Info("[notif] Redis notifications disabled; worker not started")
		return
	}
	go func() {
		logrus.Info("[notif] Redis notification worker started")
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		ctx := context.Background()
		batchSize := 200
		for {
			select {
			case <-stop:
				logrus.Info("[notif] worker stopping")
				return
			case <-ticker.C:
				s.flushBatch(ctx, batchSize)
			}
		}
	}()
}

// StartRedispatcher schedules periodic retries for rows stuck in pending,
// typically left behind by a crash between insert and dispatch. The returned
// cron is already started; the caller stops it on shutdown.
func (s *Service) StartRedispatcher() *cron.Cron {
	c := cron.New()
	c.AddFunc("@every 15m", func() {
		if err := s.RedispatchPending(15*time.Minute, 100); err != nil {
			logrus.WithError(err).Warn("[notif] pending redispatch failed")
		}
	})
	c.Start()
	return c
}

// RedispatchPending retries delivery for pending rows older than minAge.
// Rows are flipped to sent or failed; each row gets exactly one retry pass.
func (s *Service) RedispatchPending(minAge time.Duration, limit int) error {
	var rows []models.OutboundNotification
	err := s.db.Where("status = ? AND created_at < ?", "pending", time.Now().Add(-minAge)).
		Order("id ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		var channels []string
		if !row.Channels.IsNull() {
			if err := json.Unmarshal(row.Channels, &channels); err != nil {
				channels = nil
			}
		}
		s.dispatchRow(&row, normalizeChannels(channels, row.Email != "", row.Phone != ""))
	}
	if len(rows) > 0 {
		logrus.Infof("[notif] redispatched %d pending notifications", len(rows))
	}
	return nil
}

// flushBatch polls the Redis queue and processes messages in batches.
func (s *Service) flushBatch(ctx context.Context, batchSize int) {
	if s.redis == nil {
		return
	}
	for i := 0; i < 5; i++ { // up to 5 sub-batches per tick
		vals, err := s.redis.LRange(ctx, redisListKey, 0, int64(batchSize-1)).Result()
		if err != nil || len(vals) == 0 {
			return
		}
		// Trim immediately to avoid duplicates (best-effort)
		if err = s.redis.LTrim(ctx, redisListKey, int64(len(vals)), -1).Err(); err != nil {
			logrus.WithError(err).Warn("[notif] LTrim failed")
		}
		for _, raw := range vals {
			var q queuedMessage
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				continue
			}
			if err := s.createAndDispatch(q); err != nil {
				logrus.WithError(err).Warn("[notif] DB insert failed")
			}
		}
		if len(vals) < batchSize {
			return
		}
	}
}
