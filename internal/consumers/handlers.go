package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "showpro/internal/errors"
	"showpro/internal/logger"
	"showpro/internal/models"

	"github.com/nats-io/stan.go"
)

type BookingReader interface {
	Get(ctx context.Context, id int64) (*models.BookingView, error)
}

type InvoiceReader interface {
	Document(ctx context.Context, id int64) (*models.InvoiceDocument, error)
}

type EmailQueue interface {
	Queue(ctx context.Context, item *models.EmailQueueItem) (*models.EmailQueueItem, error)
	QueueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) (bool, error)
}

// Handlers ставят письма в очередь по событиям из NATS.
// Письма создаются неодобренными, отправка идет после одобрения.
type Handlers struct {
	bookings BookingReader
	invoices InvoiceReader
	emails   EmailQueue
	timeout  time.Duration
}

func NewHandlers(bookings BookingReader, invoices InvoiceReader, emails EmailQueue) *Handlers {
	return &Handlers{
		bookings: bookings,
		invoices: invoices,
		emails:   emails,
		timeout:  30 * time.Second,
	}
}

// errSkip - сообщение обработано без действий, подтверждаем
var errSkip = errors.New("skip")

// Wrap превращает обработчик в stan.MsgHandler. Битое сообщение и пропуск
// подтверждаются, ошибка обработки оставляет сообщение на повторную доставку.
func (h *Handlers) Wrap(subject string, fn func(ctx context.Context, data []byte) error) stan.MsgHandler {
	return func(m *stan.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		log := logger.WithFields("subject", subject, "sequence", m.Sequence)
		err := fn(ctx, m.Data)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil, errors.Is(err, errSkip):
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
			log.Error("Failed to unmarshal event", "error", err)
		default:
			log.Error("Failed to process event", "error", err)
			return
		}

		if err := m.Ack(); err != nil {
			log.Error("Failed to ack message", "error", err)
		}
	}
}

// bookingFor загружает бронирование события; errSkip если его нет или у клиента нет email
func (h *Handlers) bookingFor(ctx context.Context, data []byte) (*models.BookingView, *models.BookingEvent, error) {
	var event models.BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, nil, err
	}

	booking, err := h.bookings.Get(ctx, event.BookingID)
	if errors.Is(err, apperrors.ErrNotFound) {
		slog.Warn("Booking from event no longer exists", "booking_id", event.BookingID)
		return nil, nil, errSkip
	}
	if err != nil {
		return nil, nil, err
	}
	if !hasEmail(booking) {
		slog.Info("Client has no email, nothing to queue", "booking_id", booking.ID, "job_code", booking.JobCode)
		return nil, nil, errSkip
	}
	return booking, &event, nil
}

func (h *Handlers) queueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) error {
	queued, err := h.emails.QueueOnce(ctx, item, since)
	if err != nil {
		return fmt.Errorf("failed to queue %s email: %w", item.Kind, err)
	}
	if queued {
		slog.Info("Queued email", "kind", item.Kind, "booking_id", *item.BookingID)
	} else {
		slog.Debug("Email already queued", "kind", item.Kind, "booking_id", *item.BookingID)
	}
	return nil
}

// OnBookingCreated - booking.created: подтверждение клиенту
func (h *Handlers) OnBookingCreated(ctx context.Context, data []byte) error {
	booking, event, err := h.bookingFor(ctx, data)
	if err != nil {
		return err
	}
	return h.queueOnce(ctx, ConfirmationEmail(booking), event.Timestamp)
}

// OnBookingCancelled - booking.cancelled: уведомление об отмене
func (h *Handlers) OnBookingCancelled(ctx context.Context, data []byte) error {
	booking, event, err := h.bookingFor(ctx, data)
	if err != nil {
		return err
	}
	return h.queueOnce(ctx, CancellationEmail(booking), event.Timestamp)
}

// OnInvoiceIssued - invoice.issued: письмо со счетом
func (h *Handlers) OnInvoiceIssued(ctx context.Context, data []byte) error {
	var event models.InvoiceIssuedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	doc, err := h.invoices.Document(ctx, event.InvoiceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		slog.Warn("Invoice from event no longer exists", "invoice_id", event.InvoiceID)
		return errSkip
	}
	if err != nil {
		return err
	}

	item := InvoiceEmail(doc)
	if item == nil {
		slog.Info("Client has no email, invoice not sent", "invoice", event.Number)
		return errSkip
	}
	if item.BookingID != nil {
		return h.queueOnce(ctx, item, event.Timestamp)
	}
	if _, err := h.emails.Queue(ctx, item); err != nil {
		return fmt.Errorf("failed to queue invoice email: %w", err)
	}
	slog.Info("Queued email", "kind", item.Kind, "invoice", event.Number)
	return nil
}
