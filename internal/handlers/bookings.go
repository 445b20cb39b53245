package handlers

import (
	"net/http"

	"showpro/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// ListBookings - GET /api/bookings
// Список бронирований с фильтрами from, to, status, artist_id, client_id, location_id
func (h *Handlers) ListBookings(c *gin.Context) {
	var f models.BookingFilter
	var ok bool
	if f.From, ok = dateQuery(c, "from"); !ok {
		return
	}
	if f.To, ok = dateQuery(c, "to"); !ok {
		return
	}
	if f.ArtistID, ok = int64Query(c, "artist_id"); !ok {
		return
	}
	if f.ClientID, ok = int64Query(c, "client_id"); !ok {
		return
	}
	if f.LocationID, ok = int64Query(c, "location_id"); !ok {
		return
	}
	f.Status = c.Query("status")

	bookings, err := h.bookings.List(c.Request.Context(), f)
	if err != nil {
		handleServiceError(c, err, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreateBooking - POST /api/bookings
// Создать бронирование; пустой job_code генерируется
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.Booking
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// UpdateBooking - PUT /api/bookings/:id
func (h *Handlers) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.Booking
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "Failed to update booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking - DELETE /api/bookings/:id
func (h *Handlers) DeleteBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete booking")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfit - GET /api/bookings/:id/profit
// Расчет прибыли по бронированию
func (h *Handlers) GetProfit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profit, err := h.bookings.Profit(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to calculate profit")
		return
	}
	c.JSON(http.StatusOK, profit)
}

// ExpandSeries - POST /api/series/:id/bookings
// Создать бронирования серии по правилу повторения
func (h *Handlers) ExpandSeries(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ExpandSeriesRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.bookings.ExpandSeries(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "Failed to expand series")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
