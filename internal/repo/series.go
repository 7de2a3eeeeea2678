package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentSeries groups the appointments generated by one recurring booking.
// Sessions is set for limit_type=sessions, EndDate for limit_type=date.
type AppointmentSeries struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ClinicID       uuid.UUID `gorm:"type:uuid"`
	ProfessionalID uuid.UUID `gorm:"type:uuid"`
	PatientID      uuid.UUID `gorm:"type:uuid"`
	Frequency      string
	LimitType      string
	Sessions       *int
	EndDate        *time.Time `gorm:"type:date"`
	RRule          *string    `gorm:"column:rrule"`
	EndedAt        *time.Time `gorm:"type:date"`
	CreatedAt      time.Time  `gorm:"->"`
}

// TableName overrides GORM table name.
func (AppointmentSeries) TableName() string { return "appointment_series" }

func CreateSeries(ctx context.Context, db *gorm.DB, s AppointmentSeries) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO appointment_series (clinic_id, professional_id, patient_id, frequency, limit_type, sessions, end_date, rrule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id
	`, s.ClinicID, s.ProfessionalID, s.PatientID, s.Frequency, s.LimitType, s.Sessions, dateOrNil(s.EndDate), s.RRule).Scan(&res).Error
	return res.ID, err
}

func SeriesByIDAndClinic(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID) (*AppointmentSeries, error) {
	var s AppointmentSeries
	err := db.WithContext(ctx).Where("id = ? AND clinic_id = ?", id, clinicID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListAppointmentsBySeries returns every appointment of the series, whatever its status.
func ListAppointmentsBySeries(ctx context.Context, db *gorm.DB, seriesID uuid.UUID) ([]Appointment, error) {
	var list []Appointment
	err := db.WithContext(ctx).Raw(`
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE a.series_id = ?
		ORDER BY a.appointment_date, a.start_time
	`, seriesID).Scan(&list).Error
	return list, err
}

// DeleteSeries removes a series that holds no appointment. A series with appointments is kept
// and reported as deleted=false.
func DeleteSeries(ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	res := db.WithContext(ctx).Exec(`
		DELETE FROM appointment_series
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM appointments WHERE series_id = ?)
	`, id, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EndSeriesFromDate marks as SERIES_ENDED the appointments dated after endDate and returns their IDs.
// E.g. end on 15/02 keeps 14/02 and 15/02, ends 16/02 onward. Completed and cancelled rows are kept.
func EndSeriesFromDate(ctx context.Context, db *gorm.DB, seriesID uuid.UUID, endDate time.Time) ([]uuid.UUID, error) {
	endDateStr := endDate.Format("2006-01-02")
	var ids []uuid.UUID
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []struct{ ID uuid.UUID }
		if err := tx.Raw(`
			UPDATE appointments
			SET status = 'SERIES_ENDED', updated_at = now()
			WHERE series_id = ? AND appointment_date > ?::date AND status NOT IN ('CANCELLED', 'SERIES_ENDED', 'COMPLETED')
			RETURNING id
		`, seriesID, endDateStr).Scan(&rows).Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE appointment_series SET ended_at = ?::date WHERE id = ?", endDateStr, seriesID).Error; err != nil {
			return err
		}
		ids = make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func dateOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
