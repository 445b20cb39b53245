package jobs

import (
	"context"
	"log/slog"
	"time"

	"showpro/internal/consumers"
	"showpro/internal/models"
)

type BookingLister interface {
	List(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error)
}

type ReminderQueue interface {
	QueueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) (bool, error)
}

// PencilReminderJob ставит напоминания по pencilled бронированиям ближайших дней.
// Не больше одного напоминания на бронирование в день.
type PencilReminderJob struct {
	bookings BookingLister
	emails   ReminderQueue
	days     int
	loc      *time.Location
	now      func() time.Time
}

func NewPencilReminderJob(bookings BookingLister, emails ReminderQueue, days int, loc *time.Location) *PencilReminderJob {
	if loc == nil {
		loc = time.UTC
	}
	return &PencilReminderJob{bookings: bookings, emails: emails, days: days, loc: loc, now: time.Now}
}

func (j *PencilReminderJob) Name() string { return "pencil-reminders" }

func (j *PencilReminderJob) Run(ctx context.Context) {
	now := j.now().In(j.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)
	from := models.DateOf(startOfDay)
	to := models.DateOf(startOfDay.AddDate(0, 0, j.days))

	bookings, err := j.bookings.List(ctx, models.BookingFilter{
		From:   &from,
		To:     &to,
		Status: models.StatusPencilled,
	})
	if err != nil {
		slog.Error("Failed to list pencilled bookings", "error", err)
		return
	}

	queued, skipped := 0, 0
	for i := range bookings {
		b := &bookings[i]
		if b.ClientEmail == nil || *b.ClientEmail == "" {
			skipped++
			continue
		}
		ok, err := j.emails.QueueOnce(ctx, consumers.ReminderEmail(b), startOfDay)
		if err != nil {
			slog.Error("Failed to queue pencil reminder", "error", err, "booking_id", b.ID, "job_code", b.JobCode)
			continue
		}
		if ok {
			queued++
		} else {
			skipped++
		}
	}

	slog.Info("Pencil reminders finished",
		"from", from.String(), "to", to.String(),
		"bookings", len(bookings), "queued", queued, "skipped", skipped)
}
