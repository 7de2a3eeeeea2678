package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
)

const productID = "-//sisvida//Agenda//PT-BR"

// Export holds what goes into one .ics file.
type Export struct {
	Name         string
	Appointments []repo.Appointment
	Location     *time.Location
	Stamp        time.Time
}

// Encode writes one VEVENT per appointment. Times are local to e.Location (UTC when nil).
// The series RRULE is not emitted: stored dates may differ from what RFC 5545 would expand.
func Encode(w io.Writer, e Export) error {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := e.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	if e.Name != "" {
		cal.Props.SetText("X-WR-CALNAME", e.Name)
	}

	for _, a := range e.Appointments {
		start, err := at(a.AppointmentDate, a.StartTime, loc)
		if err != nil {
			return fmt.Errorf("appointment %s: start: %w", a.ID, err)
		}
		end, err := at(a.AppointmentDate, a.EndTime, loc)
		if err != nil {
			return fmt.Errorf("appointment %s: end: %w", a.ID, err)
		}
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, a.ID.String())
		ev.Props.SetText(ical.PropSummary, summary(a))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeStart, start)
		ev.Props.SetDateTime(ical.PropDateTimeEnd, end)
		ev.Props.SetText(ical.PropStatus, eventStatus(a.Status))
		if a.Notes != nil && *a.Notes != "" {
			ev.Props.SetText(ical.PropDescription, *a.Notes)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

func summary(a repo.Appointment) string {
	if a.Procedure != "" {
		return a.Procedure
	}
	return "Atendimento"
}

func eventStatus(s string) string {
	switch s {
	case repo.StatusCancelled, repo.StatusSeriesEnded:
		return "CANCELLED"
	case repo.StatusPreAgendado:
		return "TENTATIVE"
	}
	return "CONFIRMED"
}

// at combines a DATE with a TIME string ("HH:MM" or "HH:MM:SS") in loc.
func at(date time.Time, tod string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", repo.TimeStringToHHMM(tod))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
