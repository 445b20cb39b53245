package models

import (
	"time"
)

// Статусы бронирования
const (
	StatusConfirmed = "confirmed"
	StatusPencilled = "pencilled"
	StatusCancelled = "cancelled"
)

// Направления платежа
const (
	PaymentIn  = "in"
	PaymentOut = "out"
)

// Artist represents a performer managed by the agency
type Artist struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" binding:"required,max=200"`
	StageName  *string   `json:"stage_name" db:"stage_name" binding:"omitempty,max=200"`
	Email      *string   `json:"email" db:"email" binding:"omitempty,email,max=255"`
	Phone      *string   `json:"phone" db:"phone" binding:"omitempty,max=50"`
	AgentName  *string   `json:"agent_name" db:"agent_name" binding:"omitempty,max=200"`
	DefaultFee *float64  `json:"default_fee" db:"default_fee" binding:"omitempty,gte=0"`
	Notes      *string   `json:"notes" db:"notes"`
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Client represents a customer booking artists
type Client struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	Company   *string   `json:"company" db:"company" binding:"omitempty,max=200"`
	Email     *string   `json:"email" db:"email" binding:"omitempty,email,max=255"`
	Phone     *string   `json:"phone" db:"phone" binding:"omitempty,max=50"`
	Address   *string   `json:"address" db:"address"`
	VATNumber *string   `json:"vat_number" db:"vat_number" binding:"omitempty,max=50"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Venue represents a place where bookings happen
type Venue struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	Address   *string   `json:"address" db:"address"`
	City      *string   `json:"city" db:"city" binding:"omitempty,max=100"`
	Postcode  *string   `json:"postcode" db:"postcode" binding:"omitempty,max=20"`
	Capacity  *int64    `json:"capacity" db:"capacity" binding:"omitempty,gte=0"`
	ClientID  *int64    `json:"client_id" db:"client_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Location is a bookable room or stage; rows of the diary day view
type Location struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" binding:"required,max=200"`
	VenueID     *int64    `json:"venue_id" db:"venue_id"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Contact represents a person at a client or venue
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	Email     *string   `json:"email" db:"email" binding:"omitempty,email,max=255"`
	Phone     *string   `json:"phone" db:"phone" binding:"omitempty,max=50"`
	Position  *string   `json:"position" db:"position" binding:"omitempty,max=100"`
	ClientID  *int64    `json:"client_id" db:"client_id"`
	VenueID   *int64    `json:"venue_id" db:"venue_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Supplier provides services (sound, lighting, transport) for bookings
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	Email     *string   `json:"email" db:"email" binding:"omitempty,email,max=255"`
	Phone     *string   `json:"phone" db:"phone" binding:"omitempty,max=50"`
	Service   *string   `json:"service" db:"service" binding:"omitempty,max=200"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Department struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Team struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" binding:"required,max=200"`
	DepartmentID *int64    `json:"department_id" db:"department_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Series groups recurring bookings for one client
type Series struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	ClientID  *int64    `json:"client_id" db:"client_id"`
	RRule     *string   `json:"rrule" db:"rrule"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TermsTemplate - текст условий, прикладываемый к счетам
type TermsTemplate struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required,max=200"`
	Body      string    `json:"body" db:"body"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents a performance engagement
type Booking struct {
	ID            int64     `json:"id" db:"id"`
	JobCode       string    `json:"job_code" db:"job_code" binding:"omitempty,max=32"`
	BookingDate   Date      `json:"booking_date" db:"booking_date" binding:"required"`
	FinishDate    *Date     `json:"finish_date" db:"finish_date"`
	StartTime     *string   `json:"start_time" db:"start_time" binding:"omitempty,len=5"`
	FinishTime    *string   `json:"finish_time" db:"finish_time" binding:"omitempty,len=5"`
	Status        string    `json:"status" db:"status" binding:"omitempty,oneof=confirmed pencilled cancelled"`
	ArtistStatus  string    `json:"artist_status" db:"artist_status" binding:"omitempty,oneof=confirmed pencilled cancelled"`
	ClientStatus  string    `json:"client_status" db:"client_status" binding:"omitempty,oneof=confirmed pencilled cancelled"`
	Placeholder   bool      `json:"placeholder" db:"placeholder"`
	SellFee       *float64  `json:"sell_fee" db:"sell_fee" binding:"omitempty,gte=0"`
	BuyFee        *float64  `json:"buy_fee" db:"buy_fee" binding:"omitempty,gte=0"`
	VATRate       *float64  `json:"vat_rate" db:"vat_rate" binding:"omitempty,gte=0,lte=100"`
	DepositAmount *float64  `json:"deposit_amount" db:"deposit_amount" binding:"omitempty,gte=0"`
	DepositPaid   bool      `json:"deposit_paid" db:"deposit_paid"`
	ArtistPaid    bool      `json:"artist_paid" db:"artist_paid"`
	ClientPaid    bool      `json:"client_paid" db:"client_paid"`
	Invoiced      bool      `json:"invoiced" db:"invoiced"`
	ArtistID      *int64    `json:"artist_id" db:"artist_id"`
	ClientID      *int64    `json:"client_id" db:"client_id"`
	VenueID       *int64    `json:"venue_id" db:"venue_id"`
	LocationID    *int64    `json:"location_id" db:"location_id"`
	SupplierID    *int64    `json:"supplier_id" db:"supplier_id"`
	TeamID        *int64    `json:"team_id" db:"team_id"`
	SeriesID      *int64    `json:"series_id" db:"series_id"`
	Notes         *string   `json:"notes" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// BookingView - бронирование с именами связанных записей
type BookingView struct {
	Booking
	ArtistName   *string `json:"artist_name" db:"artist_name"`
	ClientName   *string `json:"client_name" db:"client_name"`
	ClientEmail  *string `json:"client_email" db:"client_email"`
	VenueName    *string `json:"venue_name" db:"venue_name"`
	LocationName *string `json:"location_name" db:"location_name"`
}

// InvoiceBatch groups several bookings of one client into a VAR invoice
type InvoiceBatch struct {
	ID        int64     `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	IssuedOn  Date      `json:"issued_on" db:"issued_on"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Invoice struct {
	ID              int64     `json:"id" db:"id"`
	Number          string    `json:"number" db:"number"`
	ClientID        *int64    `json:"client_id" db:"client_id"`
	BookingID       *int64    `json:"booking_id" db:"booking_id"`
	BatchID         *int64    `json:"batch_id" db:"batch_id"`
	NetAmount       float64   `json:"net_amount" db:"net_amount"`
	VATAmount       float64   `json:"vat_amount" db:"vat_amount"`
	TotalAmount     float64   `json:"total_amount" db:"total_amount"`
	IssuedOn        Date      `json:"issued_on" db:"issued_on"`
	DueOn           *Date     `json:"due_on" db:"due_on"`
	Paid            bool      `json:"paid" db:"paid"`
	TermsTemplateID *int64    `json:"terms_template_id" db:"terms_template_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type Payment struct {
	ID        int64     `json:"id" db:"id"`
	BookingID *int64    `json:"booking_id" db:"booking_id"`
	InvoiceID *int64    `json:"invoice_id" db:"invoice_id"`
	Direction string    `json:"direction" db:"direction" binding:"required,oneof=in out"`
	Amount    float64   `json:"amount" db:"amount" binding:"required,gt=0"`
	PaidOn    Date      `json:"paid_on" db:"paid_on" binding:"required"`
	Method    *string   `json:"method" db:"method" binding:"omitempty,max=50"`
	Reference *string   `json:"reference" db:"reference" binding:"omitempty,max=100"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmailQueueItem - письмо в очереди на отправку
type EmailQueueItem struct {
	ID        int64      `json:"id" db:"id"`
	Recipient string     `json:"recipient" db:"recipient" binding:"required,email,max=255"`
	Subject   string     `json:"subject" db:"subject" binding:"required,max=255"`
	Body      string     `json:"body" db:"body"`
	Kind      string     `json:"kind" db:"kind" binding:"omitempty,max=32"`
	BookingID *int64     `json:"booking_id" db:"booking_id"`
	InvoiceID *int64     `json:"invoice_id" db:"invoice_id"`
	Approved  bool       `json:"approved" db:"approved"`
	Sent      bool       `json:"sent" db:"sent"`
	SentAt    *time.Time `json:"sent_at" db:"sent_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// UserRole maps an auth-provider user to an application role
type UserRole struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Email     *string   `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SearchDoc - документ справочника для поискового индекса
type SearchDoc struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Info string `json:"info,omitempty"`
}

// Indexable is implemented by directory entities that appear in the sidebar search
type Indexable interface {
	SearchDoc() SearchDoc
}

func (a Artist) SearchDoc() SearchDoc {
	return SearchDoc{Kind: "artist", ID: a.ID, Name: a.Name, Info: deref(a.StageName)}
}

func (c Client) SearchDoc() SearchDoc {
	return SearchDoc{Kind: "client", ID: c.ID, Name: c.Name, Info: deref(c.Company)}
}

func (v Venue) SearchDoc() SearchDoc {
	return SearchDoc{Kind: "venue", ID: v.ID, Name: v.Name, Info: deref(v.City)}
}

func (c Contact) SearchDoc() SearchDoc {
	return SearchDoc{Kind: "contact", ID: c.ID, Name: c.Name, Info: deref(c.Email)}
}

func (s Supplier) SearchDoc() SearchDoc {
	return SearchDoc{Kind: "supplier", ID: s.ID, Name: s.Name, Info: deref(s.Service)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
