package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// RuleString describes cfg as an RFC 5545 RRULE value (without the "RRULE:" prefix).
//
// The rule always yields the same number of occurrences as CalculateDates: a date-limited
// series that hit MaxOccurrences is written with COUNT instead of UNTIL. Monthly rules follow
// RFC 5545, which skips months without the start day, so for start days 29-31 the rule is
// only a description and the stored appointment dates remain authoritative.
func RuleString(startDate time.Time, cfg Config) (string, error) {
	if !cfg.Enabled {
		return "", ErrNotRecurring
	}
	opt := rrule.ROption{}
	switch cfg.Frequency {
	case Weekly:
		opt.Freq, opt.Interval = rrule.WEEKLY, 1
	case Biweekly:
		opt.Freq, opt.Interval = rrule.WEEKLY, 2
	case Monthly:
		opt.Freq, opt.Interval = rrule.MONTHLY, 1
	default:
		return "", ErrUnknownFrequency
	}

	dates := CalculateDates(startDate, cfg)
	switch cfg.LimitType {
	case LimitSessions:
		opt.Count = len(dates)
	case LimitDate:
		if len(dates) >= MaxOccurrences {
			opt.Count = len(dates)
			break
		}
		end, err := ParseDate(cfg.EndDate)
		if err != nil {
			return "", fmt.Errorf("end date: %w", err)
		}
		opt.Until = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	default:
		return "", ErrUnknownLimitType
	}

	// validates the option set the same way a consumer parsing the rule would
	withStart := opt
	withStart.Dtstart = dates[0].UTC()
	if _, err := rrule.NewRRule(withStart); err != nil {
		return "", fmt.Errorf("build rrule: %w", err)
	}
	return opt.String(), nil
}
