package models

import (
	"fmt"
	"strings"
)

// FlexibleBool - гибкий boolean тип, поддерживающий строки и числа
type FlexibleBool bool

// UnmarshalJSON поддерживает парсинг boolean из строки, числа и boolean
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool возвращает bool значение
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// BookingFilter - фильтры списка бронирований
type BookingFilter struct {
	From       *Date
	To         *Date
	Status     string
	ArtistID   *int64
	ClientID   *int64
	LocationID *int64
}

// ProfitResponse - результат расчета прибыли по бронированию
type ProfitResponse struct {
	BookingID     int64   `json:"booking_id"`
	SellFee       float64 `json:"sell_fee"`
	BuyFee        float64 `json:"buy_fee"`
	NetProfit     float64 `json:"net_profit"`
	VATRate       float64 `json:"vat_rate"`
	VATAmount     float64 `json:"vat_amount"`
	GrossTotal    float64 `json:"gross_total"`
	MarginPercent float64 `json:"margin_percent"`
}

// ExpandSeriesRequest - создание бронирований серии по правилу повторения
type ExpandSeriesRequest struct {
	Template Booking `json:"template"`
	RRule    string  `json:"rrule"`
	Until    Date    `json:"until" binding:"required"`
	Limit    int     `json:"limit" binding:"omitempty,gte=1,lte=366"`
}

// ExpandSeriesResponse - созданные бронирования серии
type ExpandSeriesResponse struct {
	SeriesID int64     `json:"series_id"`
	Bookings []Booking `json:"bookings"`
}

// NavigateResponse - результат навигации по дневнику
type NavigateResponse struct {
	Date   Date   `json:"date"`
	View   string `json:"view"`
	Anchor int    `json:"anchor"`
}

// CreateInvoiceRequest - счет на одно бронирование
type CreateInvoiceRequest struct {
	BookingID       int64  `json:"booking_id" binding:"required"`
	DueOn           *Date  `json:"due_on"`
	TermsTemplateID *int64 `json:"terms_template_id"`
}

// CreateBatchRequest - VAR счет на несколько бронирований одного клиента
type CreateBatchRequest struct {
	ClientID        int64   `json:"client_id" binding:"required"`
	BookingIDs      []int64 `json:"booking_ids" binding:"required,min=1"`
	DueOn           *Date   `json:"due_on"`
	TermsTemplateID *int64  `json:"terms_template_id"`
	Notes           *string `json:"notes"`
}

// BatchResponse - созданный пакет и его счет
type BatchResponse struct {
	Batch   InvoiceBatch `json:"batch"`
	Invoice Invoice      `json:"invoice"`
}

// InvoiceDocument - данные для печатной формы счета
type InvoiceDocument struct {
	Invoice  Invoice
	Client   *Client
	Bookings []BookingView
	Terms    *TermsTemplate
}

// EmailFilter - фильтры очереди писем
type EmailFilter struct {
	Approved *bool
	Sent     *bool
}

// ApproveEmailRequest - одобрение письма
type ApproveEmailRequest struct {
	Approved FlexibleBool `json:"approved"`
}

// MarkSentRequest - пакетная отметка писем отправленными
type MarkSentRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// MarkSentResponse - количество отмеченных писем
type MarkSentResponse struct {
	Updated int `json:"updated"`
}

// AssignRoleRequest - назначение роли пользователю
type AssignRoleRequest struct {
	Role  string  `json:"role" binding:"required,oneof=admin manager staff viewer"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// MeResponse - текущий пользователь, его роль и права
type MeResponse struct {
	UserID      string              `json:"user_id"`
	Email       string              `json:"email,omitempty"`
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
}

// RowError - ошибка строки импорта (нумерация с 1, без заголовка)
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult - итог импорта CSV
type ImportResult struct {
	Table    string     `json:"table"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// ImportPreview - заголовки, предлагаемое сопоставление и первые строки
type ImportPreview struct {
	Table   string            `json:"table"`
	Headers []string          `json:"headers"`
	Mapping map[string]string `json:"mapping"`
	Rows    [][]string        `json:"rows"`
	Total   int               `json:"total"`
}
