package service

import (
	"context"
	"errors"
	"testing"

	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(store *fakeBookings, series ...models.Series) (*BookingService, *fakePublisher, *fakeTx) {
	pub := &fakePublisher{}
	tx := &fakeTx{}
	seriesStore := &fakeTable[models.Series]{rows: series, id: func(s *models.Series) *int64 { return &s.ID }}
	svc := NewBookingService(store, seriesStore, tx, pub)
	svc.now = fixedNow
	return svc, pub, tx
}

func TestBookingCreateGeneratesJobCodeAndDefaults(t *testing.T) {
	store := newFakeBookings()
	svc, pub, _ := newBookingService(store)

	b, err := svc.Create(context.Background(), &models.Booking{BookingDate: models.NewDate(2024, 3, 10)})
	require.NoError(t, err)

	assert.Equal(t, "SP24-00001", b.JobCode)
	assert.Equal(t, models.StatusPencilled, b.Status)
	assert.Equal(t, models.StatusPencilled, b.ArtistStatus)
	assert.Equal(t, models.StatusPencilled, b.ClientStatus)
	assert.Equal(t, []string{models.EventBookingCreated}, pub.subjects())

	ev := pub.events[0].data.(models.BookingEvent)
	assert.Equal(t, b.ID, ev.BookingID)
	assert.Equal(t, "SP24-00001", ev.JobCode)
}

func TestBookingCreateKeepsGivenJobCode(t *testing.T) {
	store := newFakeBookings()
	svc, _, _ := newBookingService(store)

	b, err := svc.Create(context.Background(), &models.Booking{JobCode: "LEGACY-1", BookingDate: models.NewDate(2024, 3, 10)})
	require.NoError(t, err)
	assert.Equal(t, "LEGACY-1", b.JobCode)
	assert.Zero(t, store.seq)
}

func TestBookingCreateRejectsFinishBeforeStart(t *testing.T) {
	svc, pub, _ := newBookingService(newFakeBookings())
	finish := models.NewDate(2024, 3, 9)

	_, err := svc.Create(context.Background(), &models.Booking{BookingDate: models.NewDate(2024, 3, 10), FinishDate: &finish})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, pub.events)
}

func TestBookingPublishFailureDoesNotFailCreate(t *testing.T) {
	svc, pub, _ := newBookingService(newFakeBookings())
	pub.err = errors.New("nats down")

	_, err := svc.Create(context.Background(), &models.Booking{BookingDate: models.NewDate(2024, 3, 10)})
	assert.NoError(t, err)
}

func TestBookingUpdatePublishesCancelledOnce(t *testing.T) {
	store := newFakeBookings(models.BookingView{Booking: models.Booking{
		ID: 1, JobCode: "SP24-00007", BookingDate: models.NewDate(2024, 3, 10), Status: models.StatusConfirmed,
	}})
	svc, pub, _ := newBookingService(store)

	b, err := svc.Update(context.Background(), 1, &models.Booking{BookingDate: models.NewDate(2024, 3, 10), Status: models.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, "SP24-00007", b.JobCode)

	_, err = svc.Update(context.Background(), 1, &models.Booking{BookingDate: models.NewDate(2024, 3, 11), Status: models.StatusCancelled})
	require.NoError(t, err)

	assert.Equal(t, []string{models.EventBookingCancelled, models.EventBookingUpdated}, pub.subjects())
}

func TestBookingUpdateMissing(t *testing.T) {
	svc, _, _ := newBookingService(newFakeBookings())
	_, err := svc.Update(context.Background(), 42, &models.Booking{BookingDate: models.NewDate(2024, 3, 10)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 42), apperrors.ErrNotFound)

	_, err = svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCalculateProfit(t *testing.T) {
	p := CalculateProfit(&models.Booking{ID: 3, SellFee: ptr(1000.0), BuyFee: ptr(650.0), VATRate: ptr(20.0)})

	assert.Equal(t, int64(3), p.BookingID)
	assert.Equal(t, 350.0, p.NetProfit)
	assert.Equal(t, 200.0, p.VATAmount)
	assert.Equal(t, 1200.0, p.GrossTotal)
	assert.Equal(t, 35.0, p.MarginPercent)

	empty := CalculateProfit(&models.Booking{BuyFee: ptr(100.0)})
	assert.Equal(t, -100.0, empty.NetProfit)
	assert.Zero(t, empty.MarginPercent)
	assert.Zero(t, empty.VATAmount)
}

func TestBookingProfitNotFound(t *testing.T) {
	svc, _, _ := newBookingService(newFakeBookings())
	_, err := svc.Profit(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBookingListRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newBookingService(newFakeBookings())
	from, to := models.NewDate(2024, 3, 10), models.NewDate(2024, 3, 1)

	_, err := svc.List(context.Background(), models.BookingFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExpandSeries(t *testing.T) {
	store := newFakeBookings()
	series := models.Series{ID: 4, Name: "Friday jazz", ClientID: ptr(int64(12)), RRule: ptr("FREQ=WEEKLY;BYDAY=FR")}
	svc, pub, tx := newBookingService(store, series)

	finish := models.NewDate(2024, 3, 2)
	resp, err := svc.ExpandSeries(context.Background(), 4, &models.ExpandSeriesRequest{
		Template: models.Booking{BookingDate: models.NewDate(2024, 3, 1), FinishDate: &finish, Status: models.StatusConfirmed},
		Until:    models.NewDate(2024, 3, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tx.calls)
	require.Len(t, resp.Bookings, 5)
	assert.Equal(t, 5, store.insertTx)
	for i, b := range resp.Bookings {
		assert.Equal(t, int64(4), *b.SeriesID)
		assert.Equal(t, int64(12), *b.ClientID)
		assert.Equal(t, models.StatusConfirmed, b.Status)
		assert.Equal(t, b.BookingDate.Time().AddDate(0, 0, 1), b.FinishDate.Time())
		assert.NotEmpty(t, b.JobCode)
		if i > 0 {
			assert.NotEqual(t, resp.Bookings[i-1].JobCode, b.JobCode)
		}
	}
	assert.Equal(t, "2024-03-29", resp.Bookings[4].BookingDate.String())
	assert.Len(t, pub.events, 5)
}

func TestExpandSeriesInsertFailurePublishesNothing(t *testing.T) {
	store := newFakeBookings()
	store.failOn = "2024-03-15"
	svc, pub, _ := newBookingService(store, models.Series{ID: 1, Name: "s"})

	_, err := svc.ExpandSeries(context.Background(), 1, &models.ExpandSeriesRequest{
		Template: models.Booking{BookingDate: models.NewDate(2024, 3, 1)},
		RRule:    "FREQ=WEEKLY",
		Until:    models.NewDate(2024, 3, 31),
	})
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestExpandSeriesValidation(t *testing.T) {
	svc, _, _ := newBookingService(newFakeBookings(), models.Series{ID: 1, Name: "no rule"})
	ctx := context.Background()

	_, err := svc.ExpandSeries(ctx, 2, &models.ExpandSeriesRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.ExpandSeries(ctx, 1, &models.ExpandSeriesRequest{
		Template: models.Booking{BookingDate: models.NewDate(2024, 3, 1)},
		Until:    models.NewDate(2024, 3, 31),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.ExpandSeries(ctx, 1, &models.ExpandSeriesRequest{
		RRule: "FREQ=DAILY",
		Until: models.NewDate(2024, 3, 31),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExpandSeriesRejectsUnboundedRules(t *testing.T) {
	store := newFakeBookings()
	svc, _, tx := newBookingService(store, models.Series{ID: 1, Name: "s"})
	ctx := context.Background()

	_, err := svc.ExpandSeries(ctx, 1, &models.ExpandSeriesRequest{
		Template: models.Booking{BookingDate: models.NewDate(2024, 1, 1)},
		RRule:    "FREQ=SECONDLY",
		Until:    models.NewDate(2024, 4, 1),
		Limit:    5,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.ExpandSeries(ctx, 1, &models.ExpandSeriesRequest{
		Template: models.Booking{BookingDate: models.NewDate(2024, 1, 1)},
		RRule:    "FREQ=DAILY",
		Until:    models.NewDate(2030, 1, 1),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Zero(t, tx.calls)
	assert.Zero(t, store.insertTx)
}
