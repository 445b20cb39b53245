package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"showpro/internal/calendar"
	apperrors "showpro/internal/errors"
	"showpro/internal/metrics"
	"showpro/internal/models"

	"github.com/jmoiron/sqlx"
)

// BookingStore - хранилище бронирований
type BookingStore interface {
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Insert(ctx context.Context, item *models.Booking) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, item *models.Booking) error
	Update(ctx context.Context, id int64, item *models.Booking) error
	Delete(ctx context.Context, id int64) error
	NextJobCode(ctx context.Context, ext sqlx.QueryerContext) (string, error)
	ListView(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error)
	GetView(ctx context.Context, id int64) (*models.BookingView, error)
	ListViewByIDs(ctx context.Context, ext sqlx.QueryerContext, ids []int64) ([]models.BookingView, error)
	SetFlag(ctx context.Context, ext sqlx.ExecerContext, flag string, value bool, ids ...int64) error
	MarkInvoiced(ctx context.Context, ext sqlx.ExecerContext, ids ...int64) error
}

type SeriesStore interface {
	Get(ctx context.Context, id int64) (*models.Series, error)
}

type BookingService struct {
	bookings  BookingStore
	series    SeriesStore
	tx        TxRunner
	publisher Publisher
	now       func() time.Time
}

func NewBookingService(bookings BookingStore, series SeriesStore, tx TxRunner, publisher Publisher) *BookingService {
	return &BookingService{
		bookings:  bookings,
		series:    series,
		tx:        tx,
		publisher: publisher,
		now:       time.Now,
	}
}

// applyDefaults - незаданные статусы считаются pencilled
func applyDefaults(b *models.Booking) {
	if b.Status == "" {
		b.Status = models.StatusPencilled
	}
	if b.ArtistStatus == "" {
		b.ArtistStatus = models.StatusPencilled
	}
	if b.ClientStatus == "" {
		b.ClientStatus = models.StatusPencilled
	}
}

func (s *BookingService) event(b *models.Booking) models.BookingEvent {
	return models.BookingEvent{
		BookingID:   b.ID,
		JobCode:     b.JobCode,
		Status:      b.Status,
		BookingDate: b.BookingDate,
		ClientID:    b.ClientID,
		ArtistID:    b.ArtistID,
		Timestamp:   s.now(),
	}
}

func (s *BookingService) List(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error) {
	if f.From != nil && f.To != nil && f.To.Time().Before(f.From.Time()) {
		return nil, apperrors.Invalid("to", "must not be before from")
	}
	bookings, err := s.bookings.ListView(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.BookingView, error) {
	booking, err := s.bookings.GetView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.ErrNotFound
	}
	return booking, nil
}

func checkDates(b *models.Booking) error {
	if b.FinishDate != nil && b.FinishDate.Time().Before(b.BookingDate.Time()) {
		return apperrors.Invalid("finish_date", "must not be before booking_date")
	}
	return nil
}

// Create сохраняет бронирование; пустой job code генерируется
func (s *BookingService) Create(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if err := checkDates(b); err != nil {
		return nil, err
	}
	applyDefaults(b)

	if b.JobCode == "" {
		code, err := s.bookings.NextJobCode(ctx, nil)
		if err != nil {
			return nil, err
		}
		b.JobCode = code
	}

	if err := s.bookings.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	metrics.BookingsCreated.Inc()

	publish(ctx, s.publisher, models.EventBookingCreated, s.event(b))
	return b, nil
}

// Update перезаписывает бронирование. Переход в cancelled публикует
// booking.cancelled, остальные изменения - booking.updated.
func (s *BookingService) Update(ctx context.Context, id int64, b *models.Booking) (*models.Booking, error) {
	if err := checkDates(b); err != nil {
		return nil, err
	}

	existing, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if existing == nil {
		return nil, apperrors.ErrNotFound
	}

	applyDefaults(b)
	if b.JobCode == "" {
		b.JobCode = existing.JobCode
	}

	if err := s.bookings.Update(ctx, id, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	subject := models.EventBookingUpdated
	if b.Status == models.StatusCancelled && existing.Status != models.StatusCancelled {
		subject = models.EventBookingCancelled
	}
	publish(ctx, s.publisher, subject, s.event(b))
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id int64) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Profit считает прибыль по бронированию: net = sell - buy, НДС с sell fee,
// маржа в процентах от sell fee. Пустые суммы считаются нулем.
func (s *BookingService) Profit(ctx context.Context, id int64) (*models.ProfitResponse, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, apperrors.ErrNotFound
	}
	return CalculateProfit(b), nil
}

func CalculateProfit(b *models.Booking) *models.ProfitResponse {
	sell, buy, rate := amount(b.SellFee), amount(b.BuyFee), amount(b.VATRate)

	p := &models.ProfitResponse{
		BookingID: b.ID,
		SellFee:   sell,
		BuyFee:    buy,
		NetProfit: round2(sell - buy),
		VATRate:   rate,
		VATAmount: round2(sell * rate / 100),
	}
	p.GrossTotal = round2(sell + p.VATAmount)
	if sell != 0 {
		p.MarginPercent = round2((sell - buy) / sell * 100)
	}
	return p
}

func amount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ExpandSeries создает бронирования серии по правилу повторения в одной
// транзакции. Правило берется из запроса, иначе из серии.
func (s *BookingService) ExpandSeries(ctx context.Context, seriesID int64, req *models.ExpandSeriesRequest) (*models.ExpandSeriesResponse, error) {
	series, err := s.series.Get(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}
	if series == nil {
		return nil, apperrors.ErrNotFound
	}

	rule := req.RRule
	if rule == "" && series.RRule != nil {
		rule = *series.RRule
	}

	template := req.Template
	if template.BookingDate.IsZero() {
		return nil, apperrors.Invalid("template.booking_date", "is required")
	}
	if err := checkDates(&template); err != nil {
		return nil, err
	}

	dates, err := calendar.ExpandSeries(rule, template.BookingDate.Time(), req.Until.Time(), req.Limit)
	if err != nil {
		return nil, apperrors.Invalid("rrule", err.Error())
	}
	if len(dates) == 0 {
		return nil, apperrors.Invalid("rrule", "produces no dates before until")
	}

	var span time.Duration
	if template.FinishDate != nil {
		span = template.FinishDate.Time().Sub(template.BookingDate.Time())
	}
	if template.ClientID == nil {
		template.ClientID = series.ClientID
	}
	applyDefaults(&template)

	created := make([]models.Booking, 0, len(dates))
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range dates {
			b := template
			b.ID = 0
			b.BookingDate = models.DateOf(d)
			b.SeriesID = &seriesID
			if template.FinishDate != nil {
				finish := models.DateOf(d.Add(span))
				b.FinishDate = &finish
			}

			code, err := s.bookings.NextJobCode(ctx, tx)
			if err != nil {
				return err
			}
			b.JobCode = code

			if err := s.bookings.InsertTx(ctx, tx, &b); err != nil {
				return fmt.Errorf("failed to create series booking %s: %w", b.BookingDate, err)
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Add(float64(len(created)))
	for i := range created {
		publish(ctx, s.publisher, models.EventBookingCreated, s.event(&created[i]))
	}

	return &models.ExpandSeriesResponse{SeriesID: seriesID, Bookings: created}, nil
}
