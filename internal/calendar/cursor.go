package calendar

import "time"

// Cursor is the diary's reference date. Anchor is the day-of-month the user
// last picked; month steps clamp to the target month's length but keep the
// anchor, so stepping forward then back returns to the same date.
type Cursor struct {
	Date   time.Time
	View   View
	Anchor int
}

func NewCursor(d time.Time, view View) Cursor {
	d = dateOnly(d)
	return Cursor{Date: d, View: view, Anchor: d.Day()}
}

func (c Cursor) Next() Cursor {
	return c.step(1)
}

func (c Cursor) Prev() Cursor {
	return c.step(-1)
}

// Today jumps to now's date in loc.
func (c Cursor) Today(now time.Time, loc *time.Location) Cursor {
	if loc != nil {
		now = now.In(loc)
	}
	return NewCursor(now, c.View)
}

// Select overrides the reference date, as the date picker does.
func (c Cursor) Select(d time.Time) Cursor {
	return NewCursor(d, c.View)
}

func (c Cursor) step(n int) Cursor {
	d := dateOnly(c.Date)
	switch c.View {
	case Week:
		return NewCursor(d.AddDate(0, 0, 7*n), c.View)
	case Day:
		return NewCursor(d.AddDate(0, 0, n), c.View)
	default:
		anchor := c.Anchor
		if anchor < 1 || anchor > 31 {
			anchor = d.Day()
		}
		first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
		day := min(anchor, daysIn(first.Year(), first.Month()))
		return Cursor{
			Date:   time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC),
			View:   c.View,
			Anchor: anchor,
		}
	}
}
