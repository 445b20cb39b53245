// Package calendar buckets bookings into the diary's month, week and day grids.
//
// All dates are calendar dates: time-of-day is dropped and values are
// normalised to midnight UTC before comparison.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"showpro/internal/models"
)

type View string

const (
	Month View = "month"
	Week  View = "week"
	Day   View = "day"
)

// UnassignedName labels the day-view group for bookings without a known location.
const UnassignedName = "Unassigned"

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case Month, Week, Day:
		return v, nil
	case "":
		return Month, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Range is an inclusive span of dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of dates in the range.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r Range) Contains(d time.Time) bool {
	d = dateOnly(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the first day of the week containing d.
func StartOfWeek(d time.Time, weekStart time.Weekday) time.Time {
	d = dateOnly(d)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// EndOfWeek returns the last day of the week containing d.
func EndOfWeek(d time.Time, weekStart time.Weekday) time.Time {
	return StartOfWeek(d, weekStart).AddDate(0, 0, 6)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComputeRange returns the dates shown for ref in the given view.
// Month ranges are padded to whole weeks on both ends.
func ComputeRange(ref time.Time, view View, weekStart time.Weekday) Range {
	ref = dateOnly(ref)
	switch view {
	case Week:
		return Range{Start: StartOfWeek(ref, weekStart), End: EndOfWeek(ref, weekStart)}
	case Day:
		return Range{Start: ref, End: ref}
	default:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(ref.Year(), ref.Month(), daysIn(ref.Year(), ref.Month()), 0, 0, 0, 0, time.UTC)
		return Range{Start: StartOfWeek(first, weekStart), End: EndOfWeek(last, weekStart)}
	}
}

// Entry is the diary projection of a booking.
type Entry struct {
	ID           int64       `json:"id"`
	Date         models.Date `json:"date"`
	JobCode      string      `json:"job_code"`
	Title        string      `json:"title"`
	StartTime    string      `json:"start_time,omitempty"`
	FinishTime   string      `json:"finish_time,omitempty"`
	Status       string      `json:"status"`
	Placeholder  bool        `json:"placeholder"`
	Class        Class       `json:"class"`
	LocationID   *int64      `json:"location_id"`
	LocationName string      `json:"location_name,omitempty"`
	VenueName    string      `json:"venue_name,omitempty"`
	ClientName   string      `json:"client_name,omitempty"`
}

// Location is a day-view row.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Cell struct {
	Date    models.Date `json:"date"`
	InMonth bool        `json:"in_month"`
	Entries []Entry     `json:"entries"`
}

type LocationGroup struct {
	LocationID *int64  `json:"location_id"`
	Name       string  `json:"name"`
	Entries    []Entry `json:"entries"`
}

type Grid struct {
	View      View            `json:"view"`
	Reference models.Date     `json:"reference"`
	Start     models.Date     `json:"start"`
	End       models.Date     `json:"end"`
	Cells     []Cell          `json:"cells,omitempty"`
	Groups    []LocationGroup `json:"groups,omitempty"`
}

// MarshalJSON всегда пишет поле активного вида, пустое как [].
func (g Grid) MarshalJSON() ([]byte, error) {
	type grid Grid
	if g.View == Day {
		groups := g.Groups
		if groups == nil {
			groups = []LocationGroup{}
		}
		return json.Marshal(struct {
			grid
			Groups []LocationGroup `json:"groups"`
		}{grid(g), groups})
	}
	cells := g.Cells
	if cells == nil {
		cells = []Cell{}
	}
	return json.Marshal(struct {
		grid
		Cells []Cell `json:"cells"`
	}{grid(g), cells})
}

// Bucket builds the grid for ref. Month and week views get one cell per date
// in range, in order. The day view gets one group per location in the order
// given, empty ones included, plus an unassigned group only when some entry
// on that day has no known location. Entries keep their input order.
func Bucket(ref time.Time, view View, weekStart time.Weekday, entries []Entry, locations []Location) Grid {
	ref = dateOnly(ref)
	rng := ComputeRange(ref, view, weekStart)
	grid := Grid{
		View:      view,
		Reference: models.DateOf(ref),
		Start:     models.DateOf(rng.Start),
		End:       models.DateOf(rng.End),
	}

	if view == Day {
		grid.Groups = groupByLocation(ref, entries, locations)
		return grid
	}

	byDate := make(map[time.Time][]Entry)
	for _, e := range entries {
		d := dateOnly(e.Date.Time())
		if rng.Contains(d) {
			byDate[d] = append(byDate[d], e)
		}
	}

	grid.Cells = make([]Cell, 0, rng.Days())
	for d := rng.Start; !d.After(rng.End); d = d.AddDate(0, 0, 1) {
		cell := Cell{
			Date:    models.DateOf(d),
			InMonth: view != Month || d.Month() == ref.Month(),
			Entries: byDate[d],
		}
		if cell.Entries == nil {
			cell.Entries = []Entry{}
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid
}

func groupByLocation(day time.Time, entries []Entry, locations []Location) []LocationGroup {
	groups := make([]LocationGroup, len(locations))
	index := make(map[int64]int, len(locations))
	for i, loc := range locations {
		id := loc.ID
		groups[i] = LocationGroup{LocationID: &id, Name: loc.Name, Entries: []Entry{}}
		index[loc.ID] = i
	}

	var unassigned []Entry
	for _, e := range entries {
		if !dateOnly(e.Date.Time()).Equal(day) {
			continue
		}
		if e.LocationID != nil {
			if i, ok := index[*e.LocationID]; ok {
				groups[i].Entries = append(groups[i].Entries, e)
				continue
			}
		}
		unassigned = append(unassigned, e)
	}

	if len(unassigned) > 0 {
		groups = append(groups, LocationGroup{Name: UnassignedName, Entries: unassigned})
	}
	return groups
}
