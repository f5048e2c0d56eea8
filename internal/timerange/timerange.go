// Package timerange turns reporting query parameters into a half-open time window.
package timerange

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/tripoffice/internal/apperror"
)

// Query is satisfied by url.Values.
type Query interface {
	Get(key string) string
}

// Range is [Start, End). A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

var (
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

// zone-less layouts are read in the reference location.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000",
}

// MaxLastDays keeps lastDays windows within time.Duration range.
const MaxLastDays = 36500

type Builder struct {
	loc *time.Location
	now func() time.Time
}

func NewBuilder(loc *time.Location) *Builder {
	return &Builder{loc: loc, now: time.Now}
}

// Build evaluates the first matching branch of lastDays, day, month, year, from/to.
// It returns a nil Range when none of them is present.
func (b *Builder) Build(q Query) (*Range, error) {
	if raw := strings.TrimSpace(q.Get("lastDays")); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
			return nil, apperror.Validation("lastDays must be a positive number")
		}
		if n > MaxLastDays {
			return nil, apperror.Validation("lastDays must be at most %d", MaxLastDays)
		}
		end := b.now().In(b.loc)
		var start time.Time
		if n == math.Trunc(n) {
			start = end.AddDate(0, 0, -int(n))
		} else {
			start = end.Add(-time.Duration(n * float64(24*time.Hour)))
		}
		return bounded(start, end), nil
	}

	if day := q.Get("day"); dayPattern.MatchString(day) {
		start, err := time.ParseInLocation("2006-01-02", day, b.loc)
		if err != nil {
			return nil, apperror.Validation("day is not a valid date")
		}
		return bounded(start, start.AddDate(0, 0, 1)), nil
	}

	if month := q.Get("month"); monthPattern.MatchString(month) {
		start, err := time.ParseInLocation("2006-01", month, b.loc)
		if err != nil {
			return nil, apperror.Validation("month is not a valid month")
		}
		return bounded(start, start.AddDate(0, 1, 0)), nil
	}

	if year := q.Get("year"); yearPattern.MatchString(year) {
		start, err := time.ParseInLocation("2006", year, b.loc)
		if err != nil {
			return nil, apperror.Validation("year is not a valid year")
		}
		return bounded(start, start.AddDate(1, 0, 0)), nil
	}

	from, to := strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if from == "" && to == "" {
		return nil, nil
	}

	r := &Range{}
	if from != "" {
		start, _, ok := b.parse(from)
		if !ok {
			return nil, apperror.Validation("from is not a valid date or timestamp")
		}
		r.Start = &start
	}
	if to != "" {
		end, dateOnly, ok := b.parse(to)
		if !ok {
			return nil, apperror.Validation("to is not a valid date or timestamp")
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		r.End = &end
	}
	return r, nil
}

// parse reads a bare date as start of day, or a full timestamp as-is.
func (b *Builder) parse(s string) (time.Time, bool, bool) {
	if dayPattern.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, b.loc)
		return t, true, err == nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}

func bounded(start, end time.Time) *Range {
	return &Range{Start: &start, End: &end}
}

// Contains reports whether t falls inside the window. A nil Range contains everything.
func (r *Range) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && !t.Before(*r.End) {
		return false
	}
	return true
}
