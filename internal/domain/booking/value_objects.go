package booking

import (
	"errors"
	"time"
)

var ErrInvalidDateRange = errors.New("start must be before end and in the future")

type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end, now time.Time) (DateRange, error) {
	if !start.Before(end) {
		return DateRange{}, ErrInvalidDateRange
	}
	if !start.After(now) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{start: start.UTC(), end: end.UTC()}, nil
}

func ReconstructDateRange(start, end time.Time) DateRange {
	return DateRange{start: start, end: end}
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time   { return r.end }

// Days counts started days; a 25 hour trip is billed as two.
func (r DateRange) Days() int64 {
	d := r.end.Sub(r.start)
	days := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Overlaps treats ranges as half-open, so back-to-back trips do not conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}
