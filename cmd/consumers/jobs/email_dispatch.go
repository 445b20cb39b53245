package jobs

import (
	"context"
	"log/slog"

	"showpro/internal/models"
)

const dispatchBatch = 100

// Mailer доставляет письмо из очереди
type Mailer interface {
	Send(ctx context.Context, item models.EmailQueueItem) error
}

// LogMailer только пишет письмо в лог
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, item models.EmailQueueItem) error {
	slog.Info("Email dispatched",
		"email_id", item.ID,
		"recipient", item.Recipient,
		"subject", item.Subject,
		"kind", item.Kind)
	return nil
}

type EmailSource interface {
	Pending(ctx context.Context, limit int) ([]models.EmailQueueItem, error)
	MarkSent(ctx context.Context, ids []int64) (*models.MarkSentResponse, error)
}

// EmailDispatchJob отправляет одобренные письма и отмечает их отправленными
type EmailDispatchJob struct {
	emails EmailSource
	mailer Mailer
	batch  int
}

func NewEmailDispatchJob(emails EmailSource, mailer Mailer) *EmailDispatchJob {
	return &EmailDispatchJob{emails: emails, mailer: mailer, batch: dispatchBatch}
}

func (j *EmailDispatchJob) Name() string { return "email-dispatch" }

func (j *EmailDispatchJob) Run(ctx context.Context) {
	items, err := j.emails.Pending(ctx, j.batch)
	if err != nil {
		slog.Error("Failed to load pending emails", "error", err)
		return
	}
	if len(items) == 0 {
		slog.Debug("No emails to dispatch")
		return
	}

	sent := make([]int64, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if err := j.mailer.Send(ctx, item); err != nil {
			// остается в очереди до следующего запуска
			slog.Error("Failed to send email", "error", err, "email_id", item.ID, "recipient", item.Recipient)
			continue
		}
		sent = append(sent, item.ID)
	}
	if len(sent) == 0 {
		return
	}

	// ctx мог быть отменен во время отправки; отметку делаем до конца
	resp, err := j.emails.MarkSent(context.WithoutCancel(ctx), sent)
	if err != nil {
		slog.Error("Failed to mark emails sent", "error", err, "count", len(sent))
		return
	}
	slog.Info("Email dispatch finished", "pending", len(items), "sent", resp.Updated)
}
