package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

var icalStatus = map[Class]ics.ObjectStatus{
	ClassConfirmed:   ics.ObjectStatusConfirmed,
	ClassPencilled:   ics.ObjectStatusTentative,
	ClassPlaceholder: ics.ObjectStatusTentative,
	ClassCancelled:   ics.ObjectStatusCancelled,
}

// WriteICal writes entries as an iCalendar feed of all-day events.
func WriteICal(w io.Writer, name string, entries []Entry, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ShowPro//Diary//EN")
	cal.SetXWRCalName(name)

	for _, e := range entries {
		event := cal.AddEvent(fmt.Sprintf("booking-%d@showpro", e.ID))
		event.SetDtStampTime(stamp.UTC())

		day := dateOnly(e.Date.Time())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))

		summary := e.Title
		if e.JobCode != "" {
			summary = e.JobCode + " " + summary
		}
		event.SetSummary(strings.TrimSpace(summary))

		if loc := locationLabel(e); loc != "" {
			event.SetLocation(loc)
		}
		if e.StartTime != "" {
			event.SetDescription("Start " + e.StartTime)
		}

		class := e.Class
		if class == "" {
			class = StatusClass(e.Status, e.Placeholder)
		}
		event.SetStatus(icalStatus[class])
	}

	return cal.SerializeTo(w)
}

func locationLabel(e Entry) string {
	switch {
	case e.VenueName != "" && e.LocationName != "":
		return e.LocationName + ", " + e.VenueName
	case e.VenueName != "":
		return e.VenueName
	default:
		return e.LocationName
	}
}
