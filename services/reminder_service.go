// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"eventhall-backend/apperr"
	"eventhall-backend/metrics"
	"eventhall-backend/models"
	"eventhall-backend/notify"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatchSize = 200

// ReminderService delivers due reminders on a cron schedule and rolls
// recurring reminders forward.
type ReminderService struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *zap.Logger
	metrics  *metrics.Metrics
	cron     *cron.Cron
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, notifier notify.Notifier, log *zap.Logger, m *metrics.Metrics) *ReminderService {
	return &ReminderService{
		db:       db,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartScheduler runs SweepDue on schedule until StopScheduler is called.
func (s *ReminderService) StartScheduler(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := s.SweepDue(ctx)
		if err != nil {
			s.log.Error("reminder sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.log.Info("reminder sweep completed", zap.Int("delivered", n))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder sweep %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	s.log.Info("reminder scheduler started", zap.String("schedule", schedule))
	return nil
}

// StopScheduler waits for a running sweep to finish.
func (s *ReminderService) StopScheduler() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("reminder scheduler stopped")
}

// SweepDue handles every open reminder that is due and not yet notified.
func (s *ReminderService) SweepDue(ctx context.Context) (int, error) {
	now := s.now()
	var due []models.Reminder
	err := s.db.WithContext(ctx).
		Where("is_done = ? AND due_at <= ?", false, now).
		Where("notified_at IS NULL OR notified_at < due_at").
		Order("due_at ASC").
		Limit(sweepBatchSize).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := s.deliver(ctx, &due[i], now); err != nil {
			s.log.Error("reminder delivery bookkeeping failed",
				zap.String("reminder_id", due[i].ID.String()), zap.Error(err))
		}
	}
	return len(due), nil
}

func (s *ReminderService) deliver(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	message := ReminderMessage(reminder)
	entry := models.ReminderLog{
		ReminderID: reminder.ID,
		UserID:     reminder.AssignedTo,
		Message:    message,
		Channel:    notify.ChannelLog,
		Status:     models.ReminderLogSkipped,
		SentAt:     now,
	}

	if phone, ok := s.recipientPhone(ctx, reminder); ok {
		channel, err := s.notifier.Send(ctx, phone, message)
		entry.Channel = channel
		if err != nil {
			entry.Status = models.ReminderLogFailed
			entry.ErrorMessage = err.Error()
			s.log.Warn("failed to send reminder",
				zap.String("reminder_id", reminder.ID.String()), zap.Error(err))
		} else {
			entry.Status = models.ReminderLogSent
		}
	} else {
		s.log.Info("reminder due", zap.String("reminder_id", reminder.ID.String()), zap.String("title", reminder.Title))
	}
	s.metrics.ObserveReminder(entry.Channel, entry.Status)

	updates := map[string]interface{}{"notified_at": now}
	if reminder.Recurring {
		next, err := NextOccurrence(reminder, now)
		if err != nil {
			s.log.Warn("cannot advance recurring reminder",
				zap.String("reminder_id", reminder.ID.String()), zap.Error(err))
		} else if !next.IsZero() {
			updates["due_at"] = next
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Reminder{}).Where("id = ?", reminder.ID).Updates(updates).Error
	})
}

// recipientPhone returns the assignee's phone when they opted into WhatsApp.
func (s *ReminderService) recipientPhone(ctx context.Context, reminder *models.Reminder) (string, bool) {
	if reminder.AssignedTo == nil {
		return "", false
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", *reminder.AssignedTo).Error; err != nil {
		return "", false
	}
	if !user.IsActive || !user.WhatsAppNotifications || user.Phone == "" {
		return "", false
	}
	return user.Phone, true
}

func ReminderMessage(r *models.Reminder) string {
	msg := fmt.Sprintf("Reminder: %s (due %s)", r.Title, r.DueAt.Format("2006-01-02 15:04"))
	if r.Description != "" {
		msg += "\n" + r.Description
	}
	return msg
}

// ValidateRecurrence checks a reminder's recurrence settings at write time.
func ValidateRecurrence(recurring bool, frequency, rule string) error {
	if rule != "" {
		if _, err := cron.ParseStandard(rule); err != nil {
			return apperr.InvalidInput("invalid recurrence_rule: " + err.Error())
		}
		return nil
	}
	if !recurring {
		return nil
	}
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyYearly:
		return nil
	default:
		return apperr.InvalidInput("recurring reminders need a frequency or a recurrence_rule")
	}
}

// NextOccurrence returns the first occurrence of a recurring reminder
// strictly after the given time. A cron rule takes precedence over the
// frequency.
func NextOccurrence(r *models.Reminder, after time.Time) (time.Time, error) {
	if r.RecurrenceRule != "" {
		sched, err := cron.ParseStandard(r.RecurrenceRule)
		if err != nil {
			return time.Time{}, err
		}
		return sched.Next(after), nil
	}

	var step func(time.Time) time.Time
	switch r.Frequency {
	case models.FrequencyDaily:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case models.FrequencyWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case models.FrequencyMonthly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	case models.FrequencyYearly:
		step = func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", r.Frequency)
	}

	next := step(r.DueAt)
	for !next.After(after) {
		next = step(next)
	}
	return next, nil
}
