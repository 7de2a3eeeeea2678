package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPreAgendado  = "PRE_AGENDADO"
	StatusAgendado     = "AGENDADO"
	StatusConfirmado   = "CONFIRMADO"
	StatusCancelled    = "CANCELLED"
	StatusCompleted    = "COMPLETED"
	StatusSeriesEnded  = "SERIES_ENDED"
	timeOfDayLayout    = "15:04:05"
	appointmentColumns = "a.id, a.clinic_id, a.professional_id, a.patient_id, a.series_id, a.appointment_date, a.start_time, a.end_time, a.procedure, a.status, a.notes"
)

// ValidStatus reports whether s is one of the appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPreAgendado, StatusAgendado, StatusConfirmado, StatusCancelled, StatusCompleted, StatusSeriesEnded:
		return true
	}
	return false
}

// Appointment is an agenda appointment.
// StartTime and EndTime are string (e.g. "09:00:00"); PostgreSQL TIME is returned as string by the driver.
type Appointment struct {
	ID              uuid.UUID
	ClinicID        uuid.UUID
	ProfessionalID  uuid.UUID
	PatientID       uuid.UUID
	SeriesID        *uuid.UUID
	AppointmentDate time.Time
	StartTime       string `gorm:"column:start_time;type:time"`
	EndTime         string `gorm:"column:end_time;type:time"`
	Procedure       string
	Status          string
	Notes           *string
}

// NewAppointment is one row to insert. Start and End only carry the time of day.
type NewAppointment struct {
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	SeriesID       *uuid.UUID
	Date           time.Time
	Start          time.Time
	End            time.Time
	Procedure      string
	Status         string
	Notes          string
}

// TimeStringToHHMM returns "HH:MM" from a DB time string ("HH:MM:SS" or "HH:MM").
func TimeStringToHHMM(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

func CreateAppointment(ctx context.Context, db *gorm.DB, a NewAppointment) (uuid.UUID, error) {
	var notes *string
	if a.Notes != "" {
		notes = &a.Notes
	}
	status := a.Status
	if status == "" {
		status = StatusAgendado
	}
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO appointments (clinic_id, professional_id, patient_id, series_id, appointment_date, start_time, end_time, procedure, status, notes)
		VALUES (?, ?, ?, ?, ?::date, ?, ?, ?, ?, ?) RETURNING id
	`, a.ClinicID, a.ProfessionalID, a.PatientID, a.SeriesID, a.Date.Format("2006-01-02"),
		a.Start.Format(timeOfDayLayout), a.End.Format(timeOfDayLayout), a.Procedure, status, notes).Scan(&res).Error
	return res.ID, err
}

// AppointmentView is an appointment with patient and professional names (for agenda display).
type AppointmentView struct {
	Appointment
	PatientName      string
	ProfessionalName string
}

// ListAppointmentsByClinicAndDateRange returns active appointments in [from, to] ordered by date and start time.
func ListAppointmentsByClinicAndDateRange(ctx context.Context, db *gorm.DB, clinicID uuid.UUID, from, to time.Time) ([]AppointmentView, error) {
	var list []AppointmentView
	err := db.WithContext(ctx).Raw(`
		SELECT `+appointmentColumns+`, COALESCE(p.full_name, '') AS patient_name, COALESCE(pr.full_name, '') AS professional_name
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id AND p.deleted_at IS NULL
		LEFT JOIN professionals pr ON pr.id = a.professional_id
		WHERE a.clinic_id = ? AND a.appointment_date >= ?::date AND a.appointment_date <= ?::date AND a.status NOT IN ('CANCELLED', 'SERIES_ENDED')
		ORDER BY a.appointment_date, a.start_time
	`, clinicID, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&list).Error
	return list, err
}

func AppointmentByIDAndClinic(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := db.WithContext(ctx).Table("appointments").Where("id = ? AND clinic_id = ?", id, clinicID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AppointmentPatch holds the fields of a partial update; nil fields are left untouched.
type AppointmentPatch struct {
	Date      *time.Time
	StartTime *time.Time
	EndTime   *time.Time
	Status    *string
	Notes     *string
}

// UpdateAppointment applies p and reports gorm.ErrRecordNotFound when no row of the clinic matched.
func UpdateAppointment(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID, p AppointmentPatch) error {
	updates := map[string]interface{}{"updated_at": gorm.Expr("now()")}
	if p.Date != nil {
		updates["appointment_date"] = p.Date.Format("2006-01-02")
	}
	if p.StartTime != nil {
		updates["start_time"] = p.StartTime.Format(timeOfDayLayout)
	}
	if p.EndTime != nil {
		updates["end_time"] = p.EndTime.Format(timeOfDayLayout)
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.Notes != nil {
		updates["notes"] = *p.Notes
	}
	res := db.WithContext(ctx).Table("appointments").Where("id = ? AND clinic_id = ?", id, clinicID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
