package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"showpro/internal/calendar"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"
)

type BookingLister interface {
	ListView(ctx context.Context, f models.BookingFilter) ([]models.BookingView, error)
}

type LocationLister interface {
	List(ctx context.Context, q string) ([]models.Location, error)
}

// Направления навигации по дневнику
const (
	DirNext  = "next"
	DirPrev  = "prev"
	DirToday = "today"
)

// максимальный период ленты iCal
const maxFeedDays = 366

type DiaryService struct {
	bookings  BookingLister
	locations LocationLister
	weekStart time.Weekday
	loc       *time.Location
	now       func() time.Time
}

func NewDiaryService(bookings BookingLister, locations LocationLister, weekStart time.Weekday, loc *time.Location) *DiaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &DiaryService{
		bookings:  bookings,
		locations: locations,
		weekStart: weekStart,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *DiaryService) today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

// Grid возвращает сетку дневника для даты и вида. Пустая дата - сегодня.
func (s *DiaryService) Grid(ctx context.Context, date *models.Date, view calendar.View) (*calendar.Grid, error) {
	ref := s.today()
	if date != nil && !date.IsZero() {
		ref = *date
	}

	rng := calendar.ComputeRange(ref.Time(), view, s.weekStart)
	from, to := models.DateOf(rng.Start), models.DateOf(rng.End)

	bookings, err := s.bookings.ListView(ctx, models.BookingFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to load diary bookings: %w", err)
	}

	var locations []calendar.Location
	if view == calendar.Day {
		rows, err := s.locations.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load locations: %w", err)
		}
		locations = make([]calendar.Location, len(rows))
		for i, l := range rows {
			locations[i] = calendar.Location{ID: l.ID, Name: l.Name}
		}
	}

	grid := calendar.Bucket(ref.Time(), view, s.weekStart, toEntries(bookings), locations)
	return &grid, nil
}

// Navigate сдвигает курсор дневника. anchor - день месяца, выбранный
// пользователем; 0 означает день из date.
func (s *DiaryService) Navigate(date models.Date, view calendar.View, dir string, anchor int) (*models.NavigateResponse, error) {
	if date.IsZero() {
		date = s.today()
	}
	cursor := calendar.NewCursor(date.Time(), view)
	if anchor > 0 {
		cursor.Anchor = anchor
	}

	switch dir {
	case DirNext:
		cursor = cursor.Next()
	case DirPrev:
		cursor = cursor.Prev()
	case DirToday:
		cursor = cursor.Today(s.now(), s.loc)
	default:
		return nil, apperrors.Invalid("dir", "must be one of: next, prev, today")
	}

	return &models.NavigateResponse{
		Date:   models.DateOf(cursor.Date),
		View:   string(cursor.View),
		Anchor: cursor.Anchor,
	}, nil
}

// WriteICal пишет ленту iCalendar за период [from, to]
func (s *DiaryService) WriteICal(ctx context.Context, w io.Writer, from, to models.Date) error {
	if to.Time().Before(from.Time()) {
		return apperrors.Invalid("to", "must not be before from")
	}
	if to.Time().Sub(from.Time()) > maxFeedDays*24*time.Hour {
		return apperrors.Invalid("to", fmt.Sprintf("period must not exceed %d days", maxFeedDays))
	}

	bookings, err := s.bookings.ListView(ctx, models.BookingFilter{From: &from, To: &to})
	if err != nil {
		return fmt.Errorf("failed to load feed bookings: %w", err)
	}
	return calendar.WriteICal(w, "ShowPro diary", toEntries(bookings), s.now())
}

// DefaultFeedRange - от начала прошлого месяца на год вперед
func (s *DiaryService) DefaultFeedRange() (models.Date, models.Date) {
	t := s.today().Time()
	first := time.Date(t.Year(), t.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	return models.DateOf(first), models.DateOf(first.AddDate(1, 0, -1))
}

func toEntries(bookings []models.BookingView) []calendar.Entry {
	entries := make([]calendar.Entry, len(bookings))
	for i, b := range bookings {
		entries[i] = calendar.Entry{
			ID:           b.ID,
			Date:         b.BookingDate,
			JobCode:      b.JobCode,
			Title:        entryTitle(b),
			StartTime:    str(b.StartTime),
			FinishTime:   str(b.FinishTime),
			Status:       b.Status,
			Placeholder:  b.Placeholder,
			Class:        calendar.StatusClass(b.Status, b.Placeholder),
			LocationID:   b.LocationID,
			LocationName: str(b.LocationName),
			VenueName:    str(b.VenueName),
			ClientName:   str(b.ClientName),
		}
	}
	return entries
}

func entryTitle(b models.BookingView) string {
	switch {
	case b.ArtistName != nil && *b.ArtistName != "":
		return *b.ArtistName
	case b.ClientName != nil && *b.ClientName != "":
		return *b.ClientName
	default:
		return b.JobCode
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
