package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"showpro/internal/models"
	"showpro/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmails struct {
	pending []models.EmailQueueItem
	marked  []int64
	limit   int
}

func (f *fakeEmails) Pending(ctx context.Context, limit int) ([]models.EmailQueueItem, error) {
	f.limit = limit
	return f.pending, nil
}

func (f *fakeEmails) MarkSent(ctx context.Context, ids []int64) (*models.MarkSentResponse, error) {
	f.marked = append(f.marked, ids...)
	return &models.MarkSentResponse{Updated: len(ids)}, nil
}

type flakyMailer struct {
	fail map[int64]bool
	sent []int64
}

func (m *flakyMailer) Send(ctx context.Context, item models.EmailQueueItem) error {
	if m.fail[item.ID] {
		return errors.New("smtp: 451 try again later")
	}
	m.sent = append(m.sent, item.ID)
	return nil
}

func TestEmailDispatchMarksOnlyDelivered(t *testing.T) {
	emails := &fakeEmails{pending: []models.EmailQueueItem{{ID: 1}, {ID: 2}, {ID: 3}}}
	mailer := &flakyMailer{fail: map[int64]bool{2: true}}

	NewEmailDispatchJob(emails, mailer).Run(context.Background())

	assert.Equal(t, dispatchBatch, emails.limit)
	assert.Equal(t, []int64{1, 3}, mailer.sent)
	assert.Equal(t, []int64{1, 3}, emails.marked)
}

func TestEmailDispatchNothingPending(t *testing.T) {
	emails := &fakeEmails{}
	NewEmailDispatchJob(emails, LogMailer{}).Run(context.Background())
	assert.Empty(t, emails.marked)
}

type fakeLister struct {
	filter   models.BookingFilter
	bookings []models.BookingView
}

func (f *fakeLister) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingView, error) {
	f.filter = filter
	return f.bookings, nil
}

type fakeReminders struct {
	items []*models.EmailQueueItem
	since time.Time
	done  map[int64]bool
}

func (f *fakeReminders) QueueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) (bool, error) {
	f.since = since
	if f.done[*item.BookingID] {
		return false, nil
	}
	f.items = append(f.items, item)
	return true, nil
}

func pencilled(id int64, email *string) models.BookingView {
	b := models.BookingView{ClientEmail: email}
	b.ID = id
	b.JobCode = fmt.Sprintf("SP24-%05d", id)
	b.BookingDate = models.NewDate(2024, 3, 12)
	b.Status = models.StatusPencilled
	return b
}

func TestPencilRemindersQueueOncePerDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	email := "client@example.com"
	lister := &fakeLister{bookings: []models.BookingView{
		pencilled(1, &email),
		pencilled(2, nil),
		pencilled(3, &email),
	}}
	queue := &fakeReminders{done: map[int64]bool{3: true}}

	job := NewPencilReminderJob(lister, queue, 7, loc)
	job.now = func() time.Time { return time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC) }
	job.Run(context.Background())

	require.NotNil(t, lister.filter.From)
	assert.Equal(t, "2024-03-10", lister.filter.From.String())
	assert.Equal(t, "2024-03-17", lister.filter.To.String())
	assert.Equal(t, models.StatusPencilled, lister.filter.Status)

	require.Len(t, queue.items, 1)
	item := queue.items[0]
	assert.Equal(t, service.EmailKindReminder, item.Kind)
	assert.Equal(t, "client@example.com", item.Recipient)
	assert.Equal(t, "Please confirm booking SP24-00001", item.Subject)
	assert.False(t, item.Approved)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), queue.since)
}
