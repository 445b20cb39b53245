package service

import (
	"context"
	"fmt"
	"time"

	apperrors "showpro/internal/errors"
	"showpro/internal/metrics"
	"showpro/internal/models"
)

// Виды писем в очереди
const (
	EmailKindManual       = "manual"
	EmailKindConfirmation = "confirmation"
	EmailKindCancellation = "cancellation"
	EmailKindInvoice      = "invoice"
	EmailKindReminder     = "pencil_reminder"
)

type EmailStore interface {
	Get(ctx context.Context, id int64) (*models.EmailQueueItem, error)
	Insert(ctx context.Context, item *models.EmailQueueItem) error
	Update(ctx context.Context, id int64, item *models.EmailQueueItem) error
	Delete(ctx context.Context, id int64) error
	ListFiltered(ctx context.Context, f models.EmailFilter) ([]models.EmailQueueItem, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	MarkSent(ctx context.Context, ids []int64, at time.Time) (int, error)
	PendingDispatch(ctx context.Context, limit int) ([]models.EmailQueueItem, error)
	ExistsSince(ctx context.Context, bookingID int64, kind string, since time.Time) (bool, error)
}

type EmailService struct {
	emails    EmailStore
	publisher Publisher
	now       func() time.Time
}

func NewEmailService(emails EmailStore, publisher Publisher) *EmailService {
	return &EmailService{emails: emails, publisher: publisher, now: time.Now}
}

func (s *EmailService) List(ctx context.Context, f models.EmailFilter) ([]models.EmailQueueItem, error) {
	items, err := s.emails.ListFiltered(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return items, nil
}

func (s *EmailService) Get(ctx context.Context, id int64) (*models.EmailQueueItem, error) {
	item, err := s.emails.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	if item == nil {
		return nil, apperrors.ErrNotFound
	}
	return item, nil
}

// Queue ставит письмо в очередь. Новое письмо не одобрено и не отправлено.
func (s *EmailService) Queue(ctx context.Context, item *models.EmailQueueItem) (*models.EmailQueueItem, error) {
	if item.Kind == "" {
		item.Kind = EmailKindManual
	}
	item.Sent = false
	item.SentAt = nil

	if err := s.emails.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to queue email: %w", err)
	}

	publish(ctx, s.publisher, models.EventEmailQueued, models.EmailQueuedEvent{
		EmailID:   item.ID,
		Recipient: item.Recipient,
		Kind:      item.Kind,
		Timestamp: s.now(),
	})
	return item, nil
}

// Update правит письмо; отправленные письма не меняются
func (s *EmailService) Update(ctx context.Context, id int64, item *models.EmailQueueItem) (*models.EmailQueueItem, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Sent {
		return nil, fmt.Errorf("%w: email %d has already been sent", apperrors.ErrConflict, id)
	}
	if item.Kind == "" {
		item.Kind = existing.Kind
	}
	item.Sent = existing.Sent
	item.SentAt = existing.SentAt

	if err := s.emails.Update(ctx, id, item); err != nil {
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	return item, nil
}

func (s *EmailService) Approve(ctx context.Context, id int64, approved bool) (*models.EmailQueueItem, error) {
	if err := s.emails.SetApproved(ctx, id, approved); err != nil {
		return nil, fmt.Errorf("failed to approve email: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *EmailService) Delete(ctx context.Context, id int64) error {
	if err := s.emails.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	return nil
}

// MarkSent отмечает письма отправленными: все или ни одного
func (s *EmailService) MarkSent(ctx context.Context, ids []int64) (*models.MarkSentResponse, error) {
	if len(ids) == 0 {
		return nil, apperrors.Invalid("ids", "must contain at least 1 item(s)")
	}
	n, err := s.emails.MarkSent(ctx, ids, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark emails sent: %w", err)
	}
	metrics.EmailsSent.Add(float64(n))
	return &models.MarkSentResponse{Updated: n}, nil
}

// Pending - одобренные неотправленные письма для рассылки
func (s *EmailService) Pending(ctx context.Context, limit int) ([]models.EmailQueueItem, error) {
	items, err := s.emails.PendingDispatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending emails: %w", err)
	}
	return items, nil
}

// QueueOnce ставит письмо по бронированию, если письма того же вида не было после since
func (s *EmailService) QueueOnce(ctx context.Context, item *models.EmailQueueItem, since time.Time) (bool, error) {
	if item.BookingID != nil {
		exists, err := s.emails.ExistsSince(ctx, *item.BookingID, item.Kind, since)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}
	if _, err := s.Queue(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}
