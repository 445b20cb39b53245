package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"showpro/internal/calendar"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiary(views ...models.BookingView) *DiaryService {
	locations := &fakeTable[models.Location]{
		rows: []models.Location{{ID: 1, Name: "Main Hall"}, {ID: 2, Name: "Garden"}},
		id:   func(l *models.Location) *int64 { return &l.ID },
	}
	svc := NewDiaryService(newFakeBookings(views...), locations, time.Sunday, time.UTC)
	svc.now = fixedNow
	return svc
}

func diaryBooking(id int64, date models.Date, location *int64, artist string) models.BookingView {
	return models.BookingView{
		Booking:    models.Booking{ID: id, JobCode: fmt.Sprintf("SP24-%05d", id), BookingDate: date, Status: models.StatusConfirmed, LocationID: location},
		ArtistName: ptr(artist),
	}
}

func TestDiaryMonthGrid(t *testing.T) {
	svc := newDiary(
		diaryBooking(1, models.NewDate(2024, 2, 26), nil, "Early"),
		diaryBooking(2, models.NewDate(2024, 3, 10), nil, "The Trio"),
		diaryBooking(3, models.NewDate(2024, 4, 20), nil, "Too Late"),
	)

	grid, err := svc.Grid(context.Background(), nil, calendar.Month)
	require.NoError(t, err)

	require.Len(t, grid.Cells, 42)
	assert.Equal(t, "2024-02-25", grid.Start.String())
	assert.Equal(t, "2024-04-06", grid.End.String())
	assert.Equal(t, "2024-03-15", grid.Reference.String())

	assert.False(t, grid.Cells[1].InMonth)
	require.Len(t, grid.Cells[1].Entries, 1)
	assert.Equal(t, "Early", grid.Cells[1].Entries[0].Title)

	march10 := grid.Cells[14]
	assert.Equal(t, "2024-03-10", march10.Date.String())
	require.Len(t, march10.Entries, 1)
	assert.Equal(t, calendar.ClassConfirmed, march10.Entries[0].Class)
	assert.Nil(t, grid.Groups)
}

func TestDiaryDayGroups(t *testing.T) {
	day := models.NewDate(2024, 3, 10)
	svc := newDiary(
		diaryBooking(1, day, ptr(int64(2)), "Garden Band"),
		diaryBooking(2, day, nil, "Nowhere"),
		diaryBooking(3, models.NewDate(2024, 3, 11), ptr(int64(1)), "Tomorrow"),
	)

	grid, err := svc.Grid(context.Background(), &day, calendar.Day)
	require.NoError(t, err)

	require.Len(t, grid.Groups, 3)
	assert.Equal(t, "Main Hall", grid.Groups[0].Name)
	assert.Empty(t, grid.Groups[0].Entries)
	assert.Equal(t, "Garden", grid.Groups[1].Name)
	assert.Equal(t, "Garden Band", grid.Groups[1].Entries[0].Title)
	assert.Equal(t, calendar.UnassignedName, grid.Groups[2].Name)
	assert.Nil(t, grid.Groups[2].LocationID)
}

func TestDiaryNavigateKeepsAnchor(t *testing.T) {
	svc := newDiary()

	next, err := svc.Navigate(models.NewDate(2024, 1, 31), calendar.Month, DirNext, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", next.Date.String())
	assert.Equal(t, 31, next.Anchor)

	back, err := svc.Navigate(next.Date, calendar.Month, DirPrev, next.Anchor)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", back.Date.String())

	today, err := svc.Navigate(models.NewDate(2020, 5, 5), calendar.Week, DirToday, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", today.Date.String())
	assert.Equal(t, "week", today.View)

	_, err = svc.Navigate(models.NewDate(2024, 1, 31), calendar.Month, "sideways", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDiaryICal(t *testing.T) {
	svc := newDiary(diaryBooking(1, models.NewDate(2024, 3, 10), nil, "The Trio"))

	var buf bytes.Buffer
	from, to := svc.DefaultFeedRange()
	assert.Equal(t, "2024-02-01", from.String())
	assert.Equal(t, "2025-01-31", to.String())

	require.NoError(t, svc.WriteICal(context.Background(), &buf, from, to))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, buf.String(), "booking-1@showpro")
	assert.Contains(t, buf.String(), "The Trio")

	err := svc.WriteICal(context.Background(), &buf, to, from)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = svc.WriteICal(context.Background(), &buf, from, models.NewDate(2026, 1, 1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
