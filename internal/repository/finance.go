package repository

import (
	"context"
	"fmt"

	"showpro/internal/database"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/jmoiron/sqlx"
)

// FormatInvoiceNumber - "INV-" + шесть цифр
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

type InvoiceRepository struct {
	*Table[models.Invoice]
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{
		Table: NewTable[models.Invoice](db, "invoices",
			"number", "client_id", "booking_id", "batch_id", "net_amount", "vat_amount", "total_amount",
			"issued_on", "due_on", "paid", "terms_template_id",
		).Ordered("issued_on DESC, id DESC"),
		db: db,
	}
}

func (r *InvoiceRepository) NextNumber(ctx context.Context, ext sqlx.QueryerContext) (string, error) {
	if ext == nil {
		ext = r.db
	}
	var seq int64
	if err := sqlx.GetContext(ctx, ext, &seq, "SELECT nextval('invoice_number_seq')"); err != nil {
		return "", fmt.Errorf("failed to generate invoice number: %w", err)
	}
	return FormatInvoiceNumber(seq), nil
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id int64, paid bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE invoices SET paid = $1, updated_at = NOW() WHERE id = $2", paid, id)
	if err != nil {
		return fmt.Errorf("failed to mark invoice %d paid: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type BatchRepository struct {
	*Table[models.InvoiceBatch]
	db *database.DB
}

func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{
		Table: NewTable[models.InvoiceBatch](db, "invoice_batches",
			"reference", "client_id", "issued_on", "notes",
		).Ordered("issued_on DESC, id DESC"),
		db: db,
	}
}

// LinkBookingsTx связывает бронирования с пакетом
func (r *BatchRepository) LinkBookingsTx(ctx context.Context, tx *sqlx.Tx, batchID int64, bookingIDs []int64) error {
	for _, id := range bookingIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO invoice_batch_bookings (batch_id, booking_id) VALUES ($1, $2)", batchID, id); err != nil {
			return fmt.Errorf("failed to link booking %d to batch %d: %w", id, batchID, err)
		}
	}
	return nil
}

func (r *BatchRepository) BookingIDs(ctx context.Context, batchID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids,
		"SELECT booking_id FROM invoice_batch_bookings WHERE batch_id = $1 ORDER BY booking_id", batchID); err != nil {
		return nil, fmt.Errorf("failed to list batch bookings: %w", err)
	}
	return ids, nil
}

type PaymentRepository struct {
	*Table[models.Payment]
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{
		Table: NewTable[models.Payment](db, "payments",
			"booking_id", "invoice_id", "direction", "amount", "paid_on", "method", "reference",
		).Ordered("paid_on DESC, id DESC"),
	}
}
