package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
)

func TestEncode_OneEventPerAppointment(t *testing.T) {
	notes := "trazer exames"
	appts := []repo.Appointment{
		{ID: uuid.New(), AppointmentDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), StartTime: "09:00:00", EndTime: "09:50:00", Procedure: "Fisioterapia", Status: repo.StatusAgendado, Notes: &notes},
		{ID: uuid.New(), AppointmentDate: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), StartTime: "09:00:00", EndTime: "09:50:00", Status: repo.StatusSeriesEnded},
	}
	var buf bytes.Buffer
	err := Encode(&buf, Export{Name: "Série", Appointments: appts, Stamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	prodID, err := cal.Props.Text(ical.PropProductID)
	require.NoError(t, err)
	assert.Equal(t, productID, prodID)

	events := cal.Events()
	require.Len(t, events, 2)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), start)
	end, err := events[0].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 50, 0, 0, time.UTC), end)

	uid, _ := events[0].Props.Text(ical.PropUID)
	assert.Equal(t, appts[0].ID.String(), uid)
	summary, _ := events[0].Props.Text(ical.PropSummary)
	assert.Equal(t, "Fisioterapia", summary)
	desc, _ := events[0].Props.Text(ical.PropDescription)
	assert.Equal(t, notes, desc)

	summary, _ = events[1].Props.Text(ical.PropSummary)
	assert.Equal(t, "Atendimento", summary)
	status, _ := events[1].Props.Text(ical.PropStatus)
	assert.Equal(t, "CANCELLED", status)
}

func TestEncode_BadTime(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, Export{Appointments: []repo.Appointment{{ID: uuid.New(), StartTime: "xx", EndTime: "10:00"}}})
	assert.Error(t, err)
}

func TestEventStatus(t *testing.T) {
	assert.Equal(t, "TENTATIVE", eventStatus(repo.StatusPreAgendado))
	assert.Equal(t, "CONFIRMED", eventStatus(repo.StatusConfirmado))
	assert.Equal(t, "CANCELLED", eventStatus(repo.StatusCancelled))
}
