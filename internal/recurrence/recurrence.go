package recurrence

import (
	"errors"
	"strings"
	"time"
)

// MaxOccurrences bounds every generated series, whatever the stop condition.
const MaxOccurrences = 52

// MinSessions is the smallest session count the booking form accepts.
const MinSessions = 2

const dateLayout = "2006-01-02"

var (
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrUnknownLimitType = errors.New("unknown limit type")
	ErrNotRecurring     = errors.New("recurrence not enabled")
)

type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

type LimitType string

const (
	LimitSessions LimitType = "sessions"
	LimitDate     LimitType = "date"
)

// Config describes how a single start date expands into a series.
// Sessions is used when LimitType is LimitSessions, EndDate (YYYY-MM-DD) when it is LimitDate.
type Config struct {
	Enabled   bool      `json:"enabled"`
	Frequency Frequency `json:"frequency"`
	LimitType LimitType `json:"limit_type"`
	Sessions  int       `json:"sessions"`
	EndDate   string    `json:"end_date"`
}

// ParseFrequency accepts weekly, biweekly or monthly (case-insensitive).
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Weekly, Biweekly, Monthly:
		return f, nil
	}
	return "", ErrUnknownFrequency
}

// ParseLimitType accepts sessions or date (case-insensitive).
func ParseLimitType(s string) (LimitType, error) {
	switch l := LimitType(strings.ToLower(strings.TrimSpace(s))); l {
	case LimitSessions, LimitDate:
		return l, nil
	}
	return "", ErrUnknownLimitType
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// ClampSessions limits n to [MinSessions, MaxOccurrences].
func ClampSessions(n int) int {
	if n < MinSessions {
		return MinSessions
	}
	if n > MaxOccurrences {
		return MaxOccurrences
	}
	return n
}

// Step returns the date one frequency unit after d.
// Monthly steps use AddDate, so a day missing from the next month spills over
// (2025-01-31 -> 2025-03-03).
func Step(d time.Time, f Frequency) (time.Time, bool) {
	switch f {
	case Weekly:
		return d.AddDate(0, 0, 7), true
	case Biweekly:
		return d.AddDate(0, 0, 14), true
	case Monthly:
		return d.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}

// CalculateDates expands startDate into the ordered list of appointment dates described by cfg.
// The result always starts with startDate (time of day dropped) and never holds more than
// MaxOccurrences dates. Inputs that make no sense yield just the start date.
func CalculateDates(startDate time.Time, cfg Config) []time.Time {
	start := truncateDay(startDate)
	dates := []time.Time{start}
	if !cfg.Enabled {
		return dates
	}

	switch cfg.LimitType {
	case LimitSessions:
		cur := start
		for i := 1; i < cfg.Sessions && len(dates) < MaxOccurrences; i++ {
			next, ok := Step(cur, cfg.Frequency)
			if !ok {
				break
			}
			dates = append(dates, next)
			cur = next
		}
	case LimitDate:
		end, err := ParseDate(cfg.EndDate)
		if err != nil {
			return dates
		}
		// inclusive: any date on the end day is allowed
		limit := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, start.Location())
		cur := start
		for len(dates) < MaxOccurrences {
			next, ok := Step(cur, cfg.Frequency)
			if !ok || next.After(limit) {
				break
			}
			dates = append(dates, next)
			cur = next
		}
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
