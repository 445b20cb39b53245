package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultSeriesLimit caps expansion when the caller gives no limit.
const DefaultSeriesLimit = 52

// MaxSeriesYears bounds the distance between the first date and until.
const MaxSeriesYears = 3

var (
	ErrEmptyRule    = errors.New("empty recurrence rule")
	ErrSubDailyRule = errors.New("recurrence rule repeats more than once a day")
)

// ExpandSeries returns the distinct dates of rule (an RRULE value such as
// "FREQ=WEEKLY;BYDAY=FR") from start through until, both inclusive,
// at most limit of them. Occurrences are generated lazily and generation
// stops at limit.
func ExpandSeries(rule string, start, until time.Time, limit int) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	if rule == "" {
		return nil, ErrEmptyRule
	}
	if limit <= 0 {
		limit = DefaultSeriesLimit
	}

	start = dateOnly(start)
	until = dateOnly(until)
	if until.Before(start) {
		return nil, fmt.Errorf("series end %s is before start %s",
			until.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	if until.After(start.AddDate(MaxSeriesYears, 0, 0)) {
		return nil, fmt.Errorf("series end %s is more than %d years after start",
			until.Format(time.DateOnly), MaxSeriesYears)
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}
	if r.OrigOptions.Freq > rrule.DAILY {
		return nil, ErrSubDailyRule
	}
	r.DTStart(start)
	// последний момент дня until
	r.Until(until.AddDate(0, 0, 1).Add(-time.Second))

	next := r.Iterator()
	dates := make([]time.Time, 0, min(limit, DefaultSeriesLimit))
	for len(dates) < limit {
		occ, ok := next()
		if !ok {
			break
		}
		day := dateOnly(occ)
		if n := len(dates); n > 0 && dates[n-1].Equal(day) {
			continue
		}
		dates = append(dates, day)
	}
	return dates, nil
}
