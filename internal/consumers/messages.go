package consumers

import (
	"fmt"
	"strings"

	"showpro/internal/models"
	"showpro/internal/service"
)

const dateLayout = "Monday 2 January 2006"

func describe(b *models.BookingView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job %s on %s", b.JobCode, b.BookingDate.Time().Format(dateLayout))
	if b.ArtistName != nil {
		fmt.Fprintf(&sb, "\nArtist: %s", *b.ArtistName)
	}
	if b.VenueName != nil {
		fmt.Fprintf(&sb, "\nVenue: %s", *b.VenueName)
	}
	if b.StartTime != nil {
		fmt.Fprintf(&sb, "\nStart: %s", *b.StartTime)
	}
	return sb.String()
}

func greeting(b *models.BookingView) string {
	if b.ClientName != nil {
		return "Dear " + *b.ClientName + ",\n\n"
	}
	return "Hello,\n\n"
}

func bookingEmail(b *models.BookingView, kind, subject, lead string) *models.EmailQueueItem {
	id := b.ID
	return &models.EmailQueueItem{
		Recipient: *b.ClientEmail,
		Subject:   subject,
		Body:      greeting(b) + lead + "\n\n" + describe(b) + "\n",
		Kind:      kind,
		BookingID: &id,
	}
}

// ConfirmationEmail - письмо клиенту о новом бронировании
func ConfirmationEmail(b *models.BookingView) *models.EmailQueueItem {
	return bookingEmail(b, service.EmailKindConfirmation,
		"Booking confirmation "+b.JobCode,
		"Thank you for your booking. The details are below.")
}

// CancellationEmail - уведомление об отмене
func CancellationEmail(b *models.BookingView) *models.EmailQueueItem {
	return bookingEmail(b, service.EmailKindCancellation,
		"Booking cancelled "+b.JobCode,
		"The following booking has been cancelled.")
}

// ReminderEmail - напоминание о неподтвержденном (pencilled) бронировании
func ReminderEmail(b *models.BookingView) *models.EmailQueueItem {
	return bookingEmail(b, service.EmailKindReminder,
		"Please confirm booking "+b.JobCode,
		"This date is still pencilled in. Please let us know whether to confirm it.")
}

// InvoiceEmail - письмо со счетом; nil если у клиента нет email
func InvoiceEmail(doc *models.InvoiceDocument) *models.EmailQueueItem {
	if doc.Client == nil || doc.Client.Email == nil || *doc.Client.Email == "" {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\nPlease find invoice %s for %.2f", doc.Client.Name, doc.Invoice.Number, doc.Invoice.TotalAmount)
	if doc.Invoice.DueOn != nil {
		fmt.Fprintf(&sb, ", due on %s", doc.Invoice.DueOn.Time().Format(dateLayout))
	}
	sb.WriteString(".\n")
	for _, b := range doc.Bookings {
		fmt.Fprintf(&sb, "\n%s %s", b.JobCode, b.BookingDate)
	}
	sb.WriteString("\n")

	id := doc.Invoice.ID
	item := &models.EmailQueueItem{
		Recipient: *doc.Client.Email,
		Subject:   "Invoice " + doc.Invoice.Number,
		Body:      sb.String(),
		Kind:      service.EmailKindInvoice,
		InvoiceID: &id,
	}
	if doc.Invoice.BookingID != nil {
		bid := *doc.Invoice.BookingID
		item.BookingID = &bid
	}
	return item
}

func hasEmail(b *models.BookingView) bool {
	return b.ClientEmail != nil && *b.ClientEmail != ""
}
