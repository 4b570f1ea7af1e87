package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates in criteria and chart
// period keys. MonthKeyLayout is the derived month tag stored on each order.
const (
	DateLayout     = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// Granularity selects the time bucket for the revenue-over-time series.
type Granularity string

const (
	Daily     Granularity = "daily"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
)

// DefaultGranularity is the dashboard's initial selection.
const DefaultGranularity = Daily

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Monthly:
		return Monthly, nil
	case Quarterly:
		return Quarterly, nil
	case "":
		return DefaultGranularity, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

func (g Granularity) valid() bool {
	switch g {
	case Daily, Monthly, Quarterly, "":
		return true
	}
	return false
}

// BucketOf maps a timestamp to the start of its bucket: the calendar date,
// the first of the month, or the first day of the calendar quarter
// (January, April, July, October). The zero Granularity buckets daily.
func (g Granularity) BucketOf(t time.Time) time.Time {
	y, m, d := t.Date()
	switch g {
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}
