package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "showpro/internal/errors"
	"showpro/internal/models"
	"showpro/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookings map[int64]*models.BookingView

func (f fakeBookings) Get(ctx context.Context, id int64) (*models.BookingView, error) {
	if b, ok := f[id]; ok {
		return b, nil
	}
	return nil, apperrors.ErrNotFound
}

type fakeInvoices map[int64]*models.InvoiceDocument

func (f fakeInvoices) Document(ctx context.Context, id int64) (*models.InvoiceDocument, error) {
	if d, ok := f[id]; ok {
		return d, nil
	}
	return nil, apperrors.ErrNotFound
}

type fakeQueue struct {
	queued []*models.EmailQueueItem
	seen   map[string]bool
	since  time.Time
	err    error
}

func (q *fakeQueue) Queue(ctx context.Context, item *models.EmailQueueItem) (*models.EmailQueueItem, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.queued = append(q.queued, item)
	return item, nil
}

func (q *fakeQueue) QueueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	if q.seen == nil {
		q.seen = map[string]bool{}
	}
	key := fmt.Sprintf("%s/%d", item.Kind, *item.BookingID)
	q.since = since
	if q.seen[key] {
		return false, nil
	}
	q.seen[key] = true
	q.queued = append(q.queued, item)
	return true, nil
}

func strp(s string) *string { return &s }

func fixtureBookings() fakeBookings {
	b := &models.BookingView{
		ArtistName:  strp("The Trio"),
		ClientName:  strp("Acme Events"),
		ClientEmail: strp("bookings@acme.test"),
		VenueName:   strp("Corn Exchange"),
	}
	b.ID = 1
	b.JobCode = "SP24-00001"
	b.BookingDate = models.NewDate(2024, 3, 9)
	b.StartTime = strp("19:30")

	noEmail := &models.BookingView{ClientName: strp("Walk-in")}
	noEmail.ID = 2
	noEmail.JobCode = "SP24-00002"
	noEmail.BookingDate = models.NewDate(2024, 3, 10)

	return fakeBookings{1: b, 2: noEmail}
}

func bookingEvent(t *testing.T, id int64) []byte {
	t.Helper()
	data, err := json.Marshal(models.BookingEvent{
		BookingID: id,
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return data
}

func TestOnBookingCreatedQueuesConfirmation(t *testing.T) {
	q := &fakeQueue{}
	h := NewHandlers(fixtureBookings(), fakeInvoices{}, q)

	require.NoError(t, h.OnBookingCreated(context.Background(), bookingEvent(t, 1)))
	require.Len(t, q.queued, 1)

	item := q.queued[0]
	assert.Equal(t, "bookings@acme.test", item.Recipient)
	assert.Equal(t, "Booking confirmation SP24-00001", item.Subject)
	assert.Equal(t, service.EmailKindConfirmation, item.Kind)
	assert.Equal(t, int64(1), *item.BookingID)
	assert.False(t, item.Approved)
	assert.Contains(t, item.Body, "Dear Acme Events")
	assert.Contains(t, item.Body, "Saturday 9 March 2024")
	assert.Contains(t, item.Body, "Venue: Corn Exchange")
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), q.since)

	// повторная доставка не дублирует письмо
	require.NoError(t, h.OnBookingCreated(context.Background(), bookingEvent(t, 1)))
	assert.Len(t, q.queued, 1)
}

func TestOnBookingCancelledQueuesNotice(t *testing.T) {
	q := &fakeQueue{}
	h := NewHandlers(fixtureBookings(), fakeInvoices{}, q)

	require.NoError(t, h.OnBookingCancelled(context.Background(), bookingEvent(t, 1)))
	require.Len(t, q.queued, 1)
	assert.Equal(t, service.EmailKindCancellation, q.queued[0].Kind)
	assert.Equal(t, "Booking cancelled SP24-00001", q.queued[0].Subject)
}

func TestBookingEventsSkipped(t *testing.T) {
	q := &fakeQueue{}
	h := NewHandlers(fixtureBookings(), fakeInvoices{}, q)

	err := h.OnBookingCreated(context.Background(), bookingEvent(t, 2))
	assert.ErrorIs(t, err, errSkip, "client without email")

	err = h.OnBookingCreated(context.Background(), bookingEvent(t, 99))
	assert.ErrorIs(t, err, errSkip, "deleted booking")

	assert.Empty(t, q.queued)

	var syntaxErr *json.SyntaxError
	err = h.OnBookingCreated(context.Background(), []byte("{not json"))
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestBookingEventQueueFailureIsRetried(t *testing.T) {
	q := &fakeQueue{err: errors.New("db down")}
	h := NewHandlers(fixtureBookings(), fakeInvoices{}, q)

	err := h.OnBookingCreated(context.Background(), bookingEvent(t, 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errSkip)
}

func TestOnInvoiceIssued(t *testing.T) {
	due := models.NewDate(2024, 4, 30)
	batch := int64(5)
	single := int64(1)

	b := models.BookingView{}
	b.JobCode = "SP24-00001"
	b.BookingDate = models.NewDate(2024, 3, 9)

	docs := fakeInvoices{
		10: {
			Invoice:  models.Invoice{ID: 10, Number: "INV-000010", TotalAmount: 1200, DueOn: &due, BatchID: &batch},
			Client:   &models.Client{Name: "Acme Events", Email: strp("accounts@acme.test")},
			Bookings: []models.BookingView{b},
		},
		11: {
			Invoice: models.Invoice{ID: 11, Number: "INV-000011", BookingID: &single},
			Client:  &models.Client{Name: "Acme Events", Email: strp("accounts@acme.test")},
		},
		12: {
			Invoice: models.Invoice{ID: 12, Number: "INV-000012"},
			Client:  &models.Client{Name: "Cash"},
		},
	}
	q := &fakeQueue{}
	h := NewHandlers(fixtureBookings(), docs, q)

	event := func(id int64) []byte {
		data, err := json.Marshal(models.InvoiceIssuedEvent{InvoiceID: id})
		require.NoError(t, err)
		return data
	}

	require.NoError(t, h.OnInvoiceIssued(context.Background(), event(10)))
	require.Len(t, q.queued, 1)
	item := q.queued[0]
	assert.Equal(t, "Invoice INV-000010", item.Subject)
	assert.Equal(t, "accounts@acme.test", item.Recipient)
	assert.Equal(t, int64(10), *item.InvoiceID)
	assert.Nil(t, item.BookingID)
	assert.Contains(t, item.Body, "1200.00")
	assert.Contains(t, item.Body, "Tuesday 30 April 2024")
	assert.Contains(t, item.Body, "SP24-00001 2024-03-09")

	require.NoError(t, h.OnInvoiceIssued(context.Background(), event(11)))
	require.Len(t, q.queued, 2)
	assert.Equal(t, int64(1), *q.queued[1].BookingID)

	assert.ErrorIs(t, h.OnInvoiceIssued(context.Background(), event(12)), errSkip)
	assert.ErrorIs(t, h.OnInvoiceIssued(context.Background(), event(404)), errSkip)
	assert.Len(t, q.queued, 2)
}
