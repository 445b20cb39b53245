package render

import (
	"testing"

	"showpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestInvoiceHTML(t *testing.T) {
	due := models.NewDate(2024, 4, 9)
	fee := 1250.0
	doc := models.InvoiceDocument{
		Invoice: models.Invoice{
			Number:      "INV-000042",
			NetAmount:   1250,
			VATAmount:   250,
			TotalAmount: 1500,
			IssuedOn:    models.NewDate(2024, 3, 10),
			DueOn:       &due,
		},
		Client: &models.Client{Name: "Acme <Events>", VATNumber: strPtr("GB123")},
		Bookings: []models.BookingView{{
			Booking:    models.Booking{JobCode: "SP24-00001", BookingDate: models.NewDate(2024, 3, 9), SellFee: &fee},
			ArtistName: strPtr("Jazz Trio"),
		}},
		Terms: &models.TermsTemplate{Body: "Payment within 30 days."},
	}

	out, err := InvoiceHTML(doc)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Invoice INV-000042")
	assert.Contains(t, html, "Issued 10 Mar 2024")
	assert.Contains(t, html, "Due 9 Apr 2024")
	assert.Contains(t, html, "Acme &lt;Events&gt;")
	assert.Contains(t, html, "VAT GB123")
	assert.Contains(t, html, "SP24-00001")
	assert.Contains(t, html, "Jazz Trio")
	assert.Contains(t, html, "1250.00")
	assert.Contains(t, html, "1500.00")
	assert.Contains(t, html, "Payment within 30 days.")
	assert.NotContains(t, html, "PAID")
}

func TestInvoiceHTMLWithoutOptionalParts(t *testing.T) {
	out, err := InvoiceHTML(models.InvoiceDocument{
		Invoice: models.Invoice{Number: "INV-000001", Paid: true, IssuedOn: models.NewDate(2024, 1, 2)},
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "PAID")
	assert.NotContains(t, html, "Due ")
	assert.NotContains(t, html, "class=\"terms\"")
}

func TestMoney(t *testing.T) {
	var missing *float64
	v := 12.5
	assert.Equal(t, "0.00", money(missing))
	assert.Equal(t, "12.50", money(&v))
	assert.Equal(t, "3.00", money(3.0))
}
