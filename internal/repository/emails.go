package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"showpro/internal/database"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type EmailRepository struct {
	*Table[models.EmailQueueItem]
	db *database.DB
}

func NewEmailRepository(db *database.DB) *EmailRepository {
	return &EmailRepository{
		Table: NewTable[models.EmailQueueItem](db, "email_queue",
			"recipient", "subject", "body", "kind", "booking_id", "invoice_id", "approved", "sent", "sent_at",
		).Ordered("created_at DESC, id DESC"),
		db: db,
	}
}

func (r *EmailRepository) ListFiltered(ctx context.Context, f models.EmailFilter) ([]models.EmailQueueItem, error) {
	var where []string
	var args []any
	if f.Approved != nil {
		args = append(args, *f.Approved)
		where = append(where, fmt.Sprintf("approved = $%d", len(args)))
	}
	if f.Sent != nil {
		args = append(args, *f.Sent)
		where = append(where, fmt.Sprintf("sent = $%d", len(args)))
	}

	query := `
		SELECT id, recipient, subject, body, kind, booking_id, invoice_id, approved, sent, sent_at, created_at, updated_at
		FROM email_queue`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	items := []models.EmailQueueItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list email queue: %w", err)
	}
	return items, nil
}

func (r *EmailRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE email_queue SET approved = $1, updated_at = NOW() WHERE id = $2", approved, id)
	if err != nil {
		return fmt.Errorf("failed to approve email %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const markSentQuery = `
	UPDATE email_queue
	SET sent = TRUE, sent_at = $2, updated_at = NOW()
	WHERE id = ANY($1) AND NOT sent`

// checkMarked - все ли письма отмечены; иначе часть id неизвестна или уже отправлена
func checkMarked(n int64, want int) error {
	if int(n) != want {
		return fmt.Errorf("%w: %d of %d emails are unknown or already sent",
			apperrors.ErrConflict, want-int(n), want)
	}
	return nil
}

// MarkSent отмечает письма отправленными в одной транзакции.
// Если хотя бы одного id нет или письмо уже отправлено, ничего не меняется
// и возвращается ErrConflict.
func (r *EmailRepository) MarkSent(ctx context.Context, ids []int64, at time.Time) (int, error) {
	unique := uniqueIDs(ids)
	var updated int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, markSentQuery, pq.Array(unique), at)
		if err != nil {
			return fmt.Errorf("failed to mark emails sent: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if err := checkMarked(n, len(unique)); err != nil {
			return err
		}
		updated = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// PendingDispatch - одобренные и не отправленные письма, старые первыми
func (r *EmailRepository) PendingDispatch(ctx context.Context, limit int) ([]models.EmailQueueItem, error) {
	items := []models.EmailQueueItem{}
	query := `
		SELECT id, recipient, subject, body, kind, booking_id, invoice_id, approved, sent, sent_at, created_at, updated_at
		FROM email_queue
		WHERE approved AND NOT sent
		ORDER BY created_at, id
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list pending emails: %w", err)
	}
	return items, nil
}

// ExistsSince проверяет, ставилось ли письмо данного вида по бронированию после since
func (r *EmailRepository) ExistsSince(ctx context.Context, bookingID int64, kind string, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM email_queue WHERE booking_id = $1 AND kind = $2 AND created_at >= $3)`
	if err := r.db.GetContext(ctx, &exists, query, bookingID, kind, since); err != nil {
		return false, fmt.Errorf("failed to check email queue: %w", err)
	}
	return exists, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
