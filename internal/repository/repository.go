package repository

import (
	"showpro/internal/database"
	"showpro/internal/models"
)

type Repositories struct {
	Artists     *Table[models.Artist]
	Clients     *Table[models.Client]
	Venues      *Table[models.Venue]
	Locations   *Table[models.Location]
	Contacts    *Table[models.Contact]
	Suppliers   *Table[models.Supplier]
	Departments *Table[models.Department]
	Teams       *Table[models.Team]
	Series      *Table[models.Series]
	Terms       *Table[models.TermsTemplate]
	Bookings    *BookingRepository
	Invoices    *InvoiceRepository
	Batches     *BatchRepository
	Payments    *PaymentRepository
	Emails      *EmailRepository
	Roles       *RoleRepository
	Data        *DataRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Artists: NewTable[models.Artist](db, "artists",
			"name", "stage_name", "email", "phone", "agent_name", "default_fee", "notes", "active"),
		Clients: NewTable[models.Client](db, "clients",
			"name", "company", "email", "phone", "address", "vat_number", "notes"),
		Venues: NewTable[models.Venue](db, "venues",
			"name", "address", "city", "postcode", "capacity", "client_id"),
		Locations: NewTable[models.Location](db, "locations",
			"name", "venue_id", "description"),
		Contacts: NewTable[models.Contact](db, "contacts",
			"name", "email", "phone", "position", "client_id", "venue_id"),
		Suppliers: NewTable[models.Supplier](db, "suppliers",
			"name", "email", "phone", "service"),
		Departments: NewTable[models.Department](db, "departments", "name"),
		Teams:       NewTable[models.Team](db, "teams", "name", "department_id"),
		Series:      NewTable[models.Series](db, "series", "name", "client_id", "rrule"),
		Terms:       NewTable[models.TermsTemplate](db, "terms_templates", "name", "body", "is_default"),
		Bookings:    NewBookingRepository(db),
		Invoices:    NewInvoiceRepository(db),
		Batches:     NewBatchRepository(db),
		Payments:    NewPaymentRepository(db),
		Emails:      NewEmailRepository(db),
		Roles:       NewRoleRepository(db),
		Data:        NewDataRepository(db),
	}
}
