package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhall-backend/apperr"
	"eventhall-backend/models"
	"eventhall-backend/notify"
	"eventhall-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sentMessage struct {
	phone string
	body  string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, phone, body string) (string, error) {
	if n.err != nil {
		return notify.ChannelWhatsApp, n.err
	}
	n.sent = append(n.sent, sentMessage{phone: phone, body: body})
	return notify.ChannelWhatsApp, nil
}

func TestNextOccurrence(t *testing.T) {
	due := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	after := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reminder models.Reminder
		want     time.Time
	}{
		{
			name:     "daily skips to the first day after",
			reminder: models.Reminder{DueAt: due, Frequency: models.FrequencyDaily},
			want:     time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly keeps the weekday",
			reminder: models.Reminder{DueAt: due, Frequency: models.FrequencyWeekly},
			want:     time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly",
			reminder: models.Reminder{DueAt: due, Frequency: models.FrequencyMonthly},
			want:     time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly",
			reminder: models.Reminder{DueAt: due, Frequency: models.FrequencyYearly},
			want:     time.Date(2027, 1, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "cron rule wins over frequency",
			reminder: models.Reminder{DueAt: due, Frequency: models.FrequencyYearly, RecurrenceRule: "30 8 * * 1"},
			want:     time.Date(2026, 2, 16, 8, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(&tt.reminder, after)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := NextOccurrence(&models.Reminder{DueAt: due, Frequency: "hourly"}, after)
	assert.Error(t, err)
}

func TestValidateRecurrence(t *testing.T) {
	assert.NoError(t, ValidateRecurrence(false, "", ""))
	assert.NoError(t, ValidateRecurrence(true, models.FrequencyWeekly, ""))
	assert.NoError(t, ValidateRecurrence(true, "", "0 9 * * *"))

	err := ValidateRecurrence(true, "", "")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	err = ValidateRecurrence(false, "", "every morning")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))
}

func TestReminderMessage(t *testing.T) {
	r := &models.Reminder{
		Title:       "Call the florist",
		Description: "Confirm the white roses",
		DueAt:       time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, "Reminder: Call the florist (due 2026-05-04 10:30)\nConfirm the white roses", ReminderMessage(r))
}

func createUser(t *testing.T, ts *testServices, email, phone string, whatsapp bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:                 email,
		Username:              email,
		Password:              "secret-password",
		FullName:              "Staff Member",
		Phone:                 phone,
		WhatsAppNotifications: whatsapp,
		IsActive:              true,
	}
	require.NoError(t, ts.db.Create(user).Error)
	return user
}

func TestReminderServiceSweepDue(t *testing.T) {
	cost := utils.PasswordCost
	utils.PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { utils.PasswordCost = cost })

	ts := newTestServices(t, true)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	optedIn := createUser(t, ts, "dana@hall.test", "+972501112233", true)
	optedOut := createUser(t, ts, "yossi@hall.test", "+972504445566", false)

	oneOff := models.Reminder{Title: "Send menu to caterer", DueAt: now.Add(-time.Hour), AssignedTo: &optedIn.ID}
	weekly := models.Reminder{
		Title: "Weekly stock check", DueAt: now.Add(-2 * time.Hour), AssignedTo: &optedOut.ID,
		Recurring: true, Frequency: models.FrequencyWeekly,
	}
	future := models.Reminder{Title: "Renew license", DueAt: now.Add(48 * time.Hour), AssignedTo: &optedIn.ID}
	done := models.Reminder{Title: "Already handled", DueAt: now.Add(-time.Hour), IsDone: true}
	for _, r := range []*models.Reminder{&oneOff, &weekly, &future, &done} {
		require.NoError(t, ts.db.Create(r).Error)
	}

	notifier := &fakeNotifier{}
	svc := NewReminderService(ts.db, notifier, zap.NewNop(), nil)
	svc.now = func() time.Time { return now }

	n, err := svc.SweepDue(ctxBG)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "+972501112233", notifier.sent[0].phone)
	assert.Contains(t, notifier.sent[0].body, "Send menu to caterer")

	var logs []models.ReminderLog
	require.NoError(t, ts.db.Order("status ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ReminderLogSent, logs[0].Status)
	assert.Equal(t, notify.ChannelWhatsApp, logs[0].Channel)
	assert.Equal(t, oneOff.ID, logs[0].ReminderID)
	assert.Equal(t, models.ReminderLogSkipped, logs[1].Status)
	assert.Equal(t, notify.ChannelLog, logs[1].Channel)

	var stored models.Reminder
	require.NoError(t, ts.db.First(&stored, "id = ?", oneOff.ID).Error)
	require.NotNil(t, stored.NotifiedAt)
	assert.False(t, stored.IsDone)

	var storedWeekly models.Reminder
	require.NoError(t, ts.db.First(&storedWeekly, "id = ?", weekly.ID).Error)
	assert.True(t, weekly.DueAt.AddDate(0, 0, 7).Equal(storedWeekly.DueAt.UTC()), "recurring reminder moves to next week")

	n, err = svc.SweepDue(ctxBG)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is sent twice")
	assert.Len(t, notifier.sent, 1)
}

func TestReminderServiceSweepRecordsFailures(t *testing.T) {
	cost := utils.PasswordCost
	utils.PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { utils.PasswordCost = cost })

	ts := newTestServices(t, true)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	user := createUser(t, ts, "dana@hall.test", "+972501112233", true)
	reminder := models.Reminder{Title: "Pay the band", DueAt: now.Add(-time.Minute), AssignedTo: &user.ID}
	require.NoError(t, ts.db.Create(&reminder).Error)

	svc := NewReminderService(ts.db, &fakeNotifier{err: errors.New("twilio unavailable")}, zap.NewNop(), nil)
	svc.now = func() time.Time { return now }

	n, err := svc.SweepDue(ctxBG)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var entry models.ReminderLog
	require.NoError(t, ts.db.First(&entry, "reminder_id = ?", reminder.ID).Error)
	assert.Equal(t, models.ReminderLogFailed, entry.Status)
	assert.Equal(t, "twilio unavailable", entry.ErrorMessage)

	var stored models.Reminder
	require.NoError(t, ts.db.First(&stored, "id = ?", reminder.ID).Error)
	assert.NotNil(t, stored.NotifiedAt, "failed deliveries are not retried every minute")
}
