package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"showpro/internal/database"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var bookingColumns = []string{
	"job_code", "booking_date", "finish_date", "start_time", "finish_time",
	"status", "artist_status", "client_status", "placeholder",
	"sell_fee", "buy_fee", "vat_rate", "deposit_amount",
	"deposit_paid", "artist_paid", "client_paid", "invoiced",
	"artist_id", "client_id", "venue_id", "location_id", "supplier_id", "team_id", "series_id",
	"notes",
}

// Колонки-флаги оплаты, которые можно выставлять через SetFlag.
// invoiced выставляется только через MarkInvoiced.
var bookingFlags = map[string]bool{
	"deposit_paid": true,
	"artist_paid":  true,
	"client_paid":  true,
}

type BookingRepository struct {
	*Table[models.Booking]
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{
		Table: NewTable[models.Booking](db, "bookings", bookingColumns...).Ordered("booking_date, id"),
		db:    db,
	}
}

// NextJobCode вызывает next_job_code(): "SP" + две цифры года + "-" + пять цифр номера
func (r *BookingRepository) NextJobCode(ctx context.Context, ext sqlx.QueryerContext) (string, error) {
	if ext == nil {
		ext = r.db
	}
	var code string
	if err := sqlx.GetContext(ctx, ext, &code, "SELECT next_job_code()"); err != nil {
		return "", fmt.Errorf("failed to generate job code: %w", err)
	}
	return code, nil
}

const bookingViewSelect = `
	SELECT b.id, b.job_code, b.booking_date, b.finish_date, b.start_time, b.finish_time,
	       b.status, b.artist_status, b.client_status, b.placeholder,
	       b.sell_fee, b.buy_fee, b.vat_rate, b.deposit_amount,
	       b.deposit_paid, b.artist_paid, b.client_paid, b.invoiced,
	       b.artist_id, b.client_id, b.venue_id, b.location_id, b.supplier_id, b.team_id, b.series_id,
	       b.notes, b.created_at, b.updated_at,
	       a.name AS artist_name, c.name AS client_name, c.email AS client_email,
	       v.name AS venue_name, l.name AS location_name
	FROM bookings b
	LEFT JOIN artists a ON a.id = b.artist_id
	LEFT JOIN clients c ON c.id = b.client_id
	LEFT JOIN venues v ON v.id = b.venue_id
	LEFT JOIN locations l ON l.id = b.location_id`

// buildBookingQuery собирает запрос списка по фильтру
func buildBookingQuery(f models.BookingFilter) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.From != nil {
		add("b.booking_date >= $%d", f.From.String())
	}
	if f.To != nil {
		add("b.booking_date <= $%d", f.To.String())
	}
	if f.Status != "" {
		add("b.status = $%d", f.Status)
	}
	if f.ArtistID != nil {
		add("b.artist_id = $%d", *f.ArtistID)
	}
	if f.ClientID != nil {
		add("b.client_id = $%d", *f.ClientID)
	}
	if f.LocationID != nil {
		add("b.location_id = $%d", *f.LocationID)
	}

	query := bookingViewSelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY b.booking_date, b.start_time NULLS FIRST, b.id"
	return query, args
}

func (r *BookingRepository) ListView(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error) {
	query, args := buildBookingQuery(f)
	bookings := []models.BookingView{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) GetView(ctx context.Context, id int64) (*models.BookingView, error) {
	var booking models.BookingView
	err := r.db.GetContext(ctx, &booking, bookingViewSelect+"\n\tWHERE b.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return &booking, nil
}

// ListViewByIDs возвращает бронирования в порядке дат
func (r *BookingRepository) ListViewByIDs(ctx context.Context, ext sqlx.QueryerContext, ids []int64) ([]models.BookingView, error) {
	if ext == nil {
		ext = r.db
	}
	bookings := []models.BookingView{}
	query := bookingViewSelect + "\n\tWHERE b.id = ANY($1)\n\tORDER BY b.booking_date, b.id"
	if err := sqlx.SelectContext(ctx, ext, &bookings, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list bookings by ids: %w", err)
	}
	return bookings, nil
}

// SetFlag выставляет флаг оплаты/счета на бронированиях
func (r *BookingRepository) SetFlag(ctx context.Context, ext sqlx.ExecerContext, flag string, value bool, ids ...int64) error {
	if !bookingFlags[flag] {
		return fmt.Errorf("unknown booking flag %q", flag)
	}
	if ext == nil {
		ext = r.db
	}
	query := fmt.Sprintf("UPDATE bookings SET %s = $1, updated_at = NOW() WHERE id = ANY($2)", pq.QuoteIdentifier(flag))
	if _, err := ext.ExecContext(ctx, query, value, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to set %s on bookings: %w", flag, err)
	}
	return nil
}

const markInvoicedQuery = `
	UPDATE bookings SET invoiced = TRUE, updated_at = NOW()
	WHERE id = ANY($1) AND NOT invoiced`

// MarkInvoiced отмечает бронирования выставленными в счет. Если какое-то уже
// в счете (параллельный запрос успел раньше), возвращается ErrConflict и
// транзакция вызывающего должна откатиться.
func (r *BookingRepository) MarkInvoiced(ctx context.Context, ext sqlx.ExecerContext, ids ...int64) error {
	if ext == nil {
		ext = r.db
	}
	unique := uniqueIDs(ids)
	res, err := ext.ExecContext(ctx, markInvoicedQuery, pq.Array(unique))
	if err != nil {
		return fmt.Errorf("failed to mark bookings invoiced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(unique) {
		return fmt.Errorf("%w: %d of %d bookings are already invoiced",
			apperrors.ErrConflict, len(unique)-int(n), len(unique))
	}
	return nil
}
