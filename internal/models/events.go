package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventInvoiceIssued    = "invoice.issued"
	EventPaymentRecorded  = "payment.recorded"
	EventEmailQueued      = "email.queued"
)

// BookingEvent is published on booking.created, booking.updated and booking.cancelled
type BookingEvent struct {
	BookingID   int64     `json:"booking_id"`
	JobCode     string    `json:"job_code"`
	Status      string    `json:"status"`
	BookingDate Date      `json:"booking_date"`
	ClientID    *int64    `json:"client_id"`
	ArtistID    *int64    `json:"artist_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// InvoiceIssuedEvent represents a new invoice (single or batch)
type InvoiceIssuedEvent struct {
	InvoiceID   int64     `json:"invoice_id"`
	Number      string    `json:"number"`
	ClientID    *int64    `json:"client_id"`
	BatchID     *int64    `json:"batch_id"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentRecordedEvent represents a remittance or an outgoing payment
type PaymentRecordedEvent struct {
	PaymentID int64     `json:"payment_id"`
	BookingID *int64    `json:"booking_id"`
	InvoiceID *int64    `json:"invoice_id"`
	Direction string    `json:"direction"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// EmailQueuedEvent represents a new email queue item
type EmailQueuedEvent struct {
	EmailID   int64     `json:"email_id"`
	Recipient string    `json:"recipient"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}
