package service

import (
	"context"
	"fmt"
	"time"

	apperrors "showpro/internal/errors"
	"showpro/internal/models"
	"showpro/internal/render"

	"github.com/jmoiron/sqlx"
)

// Форматы печатной формы счета
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

type InvoiceStore interface {
	List(ctx context.Context, q string) ([]models.Invoice, error)
	Get(ctx context.Context, id int64) (*models.Invoice, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, item *models.Invoice) error
	NextNumber(ctx context.Context, ext sqlx.QueryerContext) (string, error)
	MarkPaid(ctx context.Context, id int64, paid bool) error
}

type BatchStore interface {
	List(ctx context.Context, q string) ([]models.InvoiceBatch, error)
	Get(ctx context.Context, id int64) (*models.InvoiceBatch, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, item *models.InvoiceBatch) error
	LinkBookingsTx(ctx context.Context, tx *sqlx.Tx, batchID int64, bookingIDs []int64) error
	BookingIDs(ctx context.Context, batchID int64) ([]int64, error)
}

type PaymentStore interface {
	List(ctx context.Context, q string) ([]models.Payment, error)
	Get(ctx context.Context, id int64) (*models.Payment, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, item *models.Payment) error
	Delete(ctx context.Context, id int64) error
}

type ClientGetter interface {
	Get(ctx context.Context, id int64) (*models.Client, error)
}

type TermsStore interface {
	List(ctx context.Context, q string) ([]models.TermsTemplate, error)
	Get(ctx context.Context, id int64) (*models.TermsTemplate, error)
}

type FinanceStores struct {
	Bookings BookingStore
	Invoices InvoiceStore
	Batches  BatchStore
	Payments PaymentStore
	Clients  ClientGetter
	Terms    TermsStore
}

type FinanceService struct {
	FinanceStores
	tx        TxRunner
	publisher Publisher
	printer   PDFPrinter
	now       func() time.Time
}

func NewFinanceService(stores FinanceStores, tx TxRunner, publisher Publisher, printer PDFPrinter) *FinanceService {
	return &FinanceService{
		FinanceStores: stores,
		tx:            tx,
		publisher:     publisher,
		printer:       printer,
		now:           time.Now,
	}
}

func (s *FinanceService) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.Invoices.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *FinanceService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice, err := s.Invoices.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return nil, apperrors.ErrNotFound
	}
	return invoice, nil
}

// invoiceAmounts - net, НДС и итог по бронированиям; ставка НДС у каждого своя
func invoiceAmounts(bookings []models.BookingView) (net, vat float64) {
	for _, b := range bookings {
		fee := amount(b.SellFee)
		net += fee
		vat += fee * amount(b.VATRate) / 100
	}
	return round2(net), round2(vat)
}

// termsID возвращает выбранный шаблон условий или шаблон по умолчанию
func (s *FinanceService) termsID(ctx context.Context, requested *int64) (*int64, error) {
	if requested != nil {
		terms, err := s.Terms.Get(ctx, *requested)
		if err != nil {
			return nil, fmt.Errorf("failed to get terms template: %w", err)
		}
		if terms == nil {
			return nil, apperrors.Invalid("terms_template_id", "does not exist")
		}
		return requested, nil
	}

	all, err := s.Terms.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list terms templates: %w", err)
	}
	for _, t := range all {
		if t.IsDefault {
			id := t.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (s *FinanceService) issued(ctx context.Context, invoice *models.Invoice) {
	publish(ctx, s.publisher, models.EventInvoiceIssued, models.InvoiceIssuedEvent{
		InvoiceID:   invoice.ID,
		Number:      invoice.Number,
		ClientID:    invoice.ClientID,
		BatchID:     invoice.BatchID,
		TotalAmount: invoice.TotalAmount,
		Timestamp:   s.now(),
	})
}

// CreateInvoice выставляет счет на одно бронирование и отмечает его invoiced
func (s *FinanceService) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	booking, err := s.Bookings.GetView(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.Invalid("booking_id", "does not exist")
	}
	if booking.Invoiced {
		return nil, fmt.Errorf("%w: booking %s is already invoiced", apperrors.ErrConflict, booking.JobCode)
	}

	terms, err := s.termsID(ctx, req.TermsTemplateID)
	if err != nil {
		return nil, err
	}

	net, vat := invoiceAmounts([]models.BookingView{*booking})
	bookingID := booking.ID
	invoice := &models.Invoice{
		ClientID:        booking.ClientID,
		BookingID:       &bookingID,
		NetAmount:       net,
		VATAmount:       vat,
		TotalAmount:     round2(net + vat),
		IssuedOn:        models.DateOf(s.now()),
		DueOn:           req.DueOn,
		TermsTemplateID: terms,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		number, err := s.Invoices.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		invoice.Number = number
		if err := s.Invoices.InsertTx(ctx, tx, invoice); err != nil {
			return err
		}
		return s.Bookings.MarkInvoiced(ctx, tx, bookingID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.issued(ctx, invoice)
	return invoice, nil
}

// CreateBatch выставляет VAR счет клиенту на несколько бронирований.
// Все бронирования должны принадлежать клиенту и быть без счета.
func (s *FinanceService) CreateBatch(ctx context.Context, req *models.CreateBatchRequest) (*models.BatchResponse, error) {
	client, err := s.Clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, apperrors.Invalid("client_id", "does not exist")
	}

	ids := dedupeIDs(req.BookingIDs)
	bookings, err := s.Bookings.ListViewByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	verr := apperrors.NewValidationError()
	if len(bookings) != len(ids) {
		verr.Add("booking_ids", fmt.Sprintf("%d of %d bookings exist", len(bookings), len(ids)))
	}
	for _, b := range bookings {
		switch {
		case b.ClientID == nil || *b.ClientID != req.ClientID:
			verr.Add("booking_ids", fmt.Sprintf("booking %s belongs to another client", b.JobCode))
		case b.Invoiced:
			verr.Add("booking_ids", fmt.Sprintf("booking %s is already invoiced", b.JobCode))
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	terms, err := s.termsID(ctx, req.TermsTemplateID)
	if err != nil {
		return nil, err
	}

	today := models.DateOf(s.now())
	net, vat := invoiceAmounts(bookings)
	clientID := req.ClientID
	batch := &models.InvoiceBatch{ClientID: clientID, IssuedOn: today, Notes: req.Notes}
	invoice := &models.Invoice{
		ClientID:        &clientID,
		NetAmount:       net,
		VATAmount:       vat,
		TotalAmount:     round2(net + vat),
		IssuedOn:        today,
		DueOn:           req.DueOn,
		TermsTemplateID: terms,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		number, err := s.Invoices.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		batch.Reference = "VAR-" + number
		if err := s.Batches.InsertTx(ctx, tx, batch); err != nil {
			return err
		}
		if err := s.Batches.LinkBookingsTx(ctx, tx, batch.ID, ids); err != nil {
			return err
		}

		invoice.Number = number
		invoice.BatchID = &batch.ID
		if err := s.Invoices.InsertTx(ctx, tx, invoice); err != nil {
			return err
		}
		return s.Bookings.MarkInvoiced(ctx, tx, ids...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice batch: %w", err)
	}

	s.issued(ctx, invoice)
	return &models.BatchResponse{Batch: *batch, Invoice: *invoice}, nil
}

func dedupeIDs(ids []int64) []int64 {
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

func (s *FinanceService) ListBatches(ctx context.Context) ([]models.InvoiceBatch, error) {
	batches, err := s.Batches.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice batches: %w", err)
	}
	return batches, nil
}

func (s *FinanceService) GetBatch(ctx context.Context, id int64) (*models.InvoiceBatch, error) {
	batch, err := s.Batches.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice batch: %w", err)
	}
	if batch == nil {
		return nil, apperrors.ErrNotFound
	}
	return batch, nil
}

func (s *FinanceService) MarkPaid(ctx context.Context, id int64, paid bool) (*models.Invoice, error) {
	if err := s.Invoices.MarkPaid(ctx, id, paid); err != nil {
		return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	return s.GetInvoice(ctx, id)
}

// Document собирает данные печатной формы счета
func (s *FinanceService) Document(ctx context.Context, id int64) (*models.InvoiceDocument, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := &models.InvoiceDocument{Invoice: *invoice, Bookings: []models.BookingView{}}

	if invoice.ClientID != nil {
		if doc.Client, err = s.Clients.Get(ctx, *invoice.ClientID); err != nil {
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
	}

	var ids []int64
	switch {
	case invoice.BatchID != nil:
		if ids, err = s.Batches.BookingIDs(ctx, *invoice.BatchID); err != nil {
			return nil, err
		}
	case invoice.BookingID != nil:
		ids = []int64{*invoice.BookingID}
	}
	if len(ids) > 0 {
		if doc.Bookings, err = s.Bookings.ListViewByIDs(ctx, nil, ids); err != nil {
			return nil, err
		}
	}

	if invoice.TermsTemplateID != nil {
		if doc.Terms, err = s.Terms.Get(ctx, *invoice.TermsTemplateID); err != nil {
			return nil, fmt.Errorf("failed to get terms template: %w", err)
		}
	}
	return doc, nil
}

// RenderInvoice возвращает счет в HTML или PDF
func (s *FinanceService) RenderInvoice(ctx context.Context, id int64, format string) (*Document, error) {
	if format == "" {
		format = FormatHTML
	}
	if format != FormatHTML && format != FormatPDF {
		return nil, apperrors.Invalid("format", "must be one of: html, pdf")
	}

	doc, err := s.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := render.InvoiceHTML(*doc)
	if err != nil {
		return nil, err
	}

	if format == FormatHTML {
		return &Document{ContentType: "text/html; charset=utf-8", Filename: doc.Invoice.Number + ".html", Body: html}, nil
	}
	if s.printer == nil {
		return nil, fmt.Errorf("pdf printer is not configured")
	}
	pdf, err := s.printer.Print(ctx, html)
	if err != nil {
		return nil, err
	}
	return &Document{ContentType: "application/pdf", Filename: doc.Invoice.Number + ".pdf", Body: pdf}, nil
}

func (s *FinanceService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.Payments.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *FinanceService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.Payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, apperrors.ErrNotFound
	}
	return payment, nil
}

// RecordPayment сохраняет платеж. Входящий платеж отмечает client_paid,
// исходящий - artist_paid у бронирования.
func (s *FinanceService) RecordPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	var flag string
	switch p.Direction {
	case models.PaymentIn:
		flag = "client_paid"
	case models.PaymentOut:
		flag = "artist_paid"
	default:
		return nil, apperrors.Invalid("direction", "must be one of: in, out")
	}

	if p.BookingID != nil {
		booking, err := s.Bookings.Get(ctx, *p.BookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to get booking: %w", err)
		}
		if booking == nil {
			return nil, apperrors.Invalid("booking_id", "does not exist")
		}
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.Payments.InsertTx(ctx, tx, p); err != nil {
			return err
		}
		if p.BookingID == nil {
			return nil
		}
		return s.Bookings.SetFlag(ctx, tx, flag, true, *p.BookingID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	publish(ctx, s.publisher, models.EventPaymentRecorded, models.PaymentRecordedEvent{
		PaymentID: p.ID,
		BookingID: p.BookingID,
		InvoiceID: p.InvoiceID,
		Direction: p.Direction,
		Amount:    p.Amount,
		Timestamp: s.now(),
	})
	return p, nil
}

func (s *FinanceService) DeletePayment(ctx context.Context, id int64) error {
	if err := s.Payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
