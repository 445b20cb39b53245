package handlers

import (
	"net/http"
	"strconv"

	"showpro/internal/calendar"
	apperrors "showpro/internal/errors"
	"showpro/internal/logger"
	"showpro/internal/models"

	"github.com/gin-gonic/gin"
)

func viewQuery(c *gin.Context) (calendar.View, bool) {
	view, err := calendar.ParseView(c.Query("view"))
	if err != nil {
		handleServiceError(c, apperrors.Invalid("view", "must be one of: month, week, day"), "")
		return "", false
	}
	return view, true
}

// GetDiary - GET /api/diary?date=&view=
// Сетка дневника: ячейки по датам (month, week) или группы по локациям (day)
func (h *Handlers) GetDiary(c *gin.Context) {
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}
	view, ok := viewQuery(c)
	if !ok {
		return
	}

	grid, err := h.diary.Grid(c.Request.Context(), date, view)
	if err != nil {
		handleServiceError(c, err, "Failed to build diary")
		return
	}
	c.JSON(http.StatusOK, grid)
}

// NavigateDiary - GET /api/diary/navigate?date=&view=&dir=&anchor=
// Следующая, предыдущая или сегодняшняя дата курсора
func (h *Handlers) NavigateDiary(c *gin.Context) {
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}
	view, ok := viewQuery(c)
	if !ok {
		return
	}

	anchor := 0
	if raw := c.Query("anchor"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 31 {
			handleServiceError(c, apperrors.Invalid("anchor", "must be a day of month"), "")
			return
		}
		anchor = n
	}

	var ref models.Date
	if date != nil {
		ref = *date
	}
	resp, err := h.diary.Navigate(ref, view, c.Query("dir"), anchor)
	if err != nil {
		handleServiceError(c, err, "Failed to navigate diary")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DiaryFeed - GET /api/diary.ics?from=&to=
// Лента iCalendar; по умолчанию от начала прошлого месяца на год
func (h *Handlers) DiaryFeed(c *gin.Context) {
	from, to := h.diary.DefaultFeedRange()
	f, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	t, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	if f != nil {
		from = *f
	}
	if t != nil {
		to = *t
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", `inline; filename="showpro.ics"`)
	if err := h.diary.WriteICal(c.Request.Context(), c.Writer, from, to); err != nil {
		if c.Writer.Written() {
			logger.WithContext(c.Request.Context()).Error("Failed to write diary feed", "error", err)
			return
		}
		c.Header("Content-Type", "")
		c.Header("Content-Disposition", "")
		handleServiceError(c, err, "Failed to build diary feed")
	}
}
