//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tecmax-dev/sisvida-sub017/internal/testutil"
	"gorm.io/gorm"
)

func seedClinic(t *testing.T, db *gorm.DB) (clinicID, profID, patientID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	var row struct{ ID uuid.UUID }
	require.NoError(t, db.WithContext(ctx).Raw("INSERT INTO clinics (name) VALUES ('Clínica Teste') RETURNING id").Scan(&row).Error)
	clinicID = row.ID
	require.NoError(t, db.WithContext(ctx).Raw("INSERT INTO professionals (clinic_id, full_name) VALUES (?, 'Dra. Teste') RETURNING id", clinicID).Scan(&row).Error)
	profID = row.ID
	require.NoError(t, db.WithContext(ctx).Raw("INSERT INTO patients (clinic_id, full_name) VALUES (?, 'Paciente Teste') RETURNING id", clinicID).Scan(&row).Error)
	patientID = row.ID
	return
}

func TestIntegration_SeriesLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	clinicID, profID, patientID := seedClinic(t, db)

	sessions := 3
	seriesID, err := CreateSeries(ctx, db, AppointmentSeries{
		ClinicID: clinicID, ProfessionalID: profID, PatientID: patientID,
		Frequency: "weekly", LimitType: "sessions", Sessions: &sessions,
	})
	require.NoError(t, err)

	start := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{
		time.Date(2030, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 4, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 4, 15, 0, 0, 0, 0, time.UTC),
	} {
		_, err := CreateAppointment(ctx, db, NewAppointment{
			ClinicID: clinicID, ProfessionalID: profID, PatientID: patientID, SeriesID: &seriesID,
			Date: d, Start: start, End: start.Add(50 * time.Minute),
		})
		require.NoError(t, err)
	}

	// mesmo profissional, mesmo horário
	_, err = CreateAppointment(ctx, db, NewAppointment{
		ClinicID: clinicID, ProfessionalID: profID, PatientID: patientID,
		Date: time.Date(2030, 4, 8, 0, 0, 0, 0, time.UTC), Start: start, End: start.Add(50 * time.Minute),
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	ended, err := EndSeriesFromDate(ctx, db, seriesID, time.Date(2030, 4, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, ended, 1)

	list, err := ListAppointmentsByClinicAndDateRange(ctx, db, clinicID,
		time.Date(2030, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	all, err := ListAppointmentsBySeries(ctx, db, seriesID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, StatusSeriesEnded, all[2].Status)

	// tenant isolation
	otherClinic, _, _ := seedClinic(t, db)
	_, err = SeriesByIDAndClinic(ctx, db, seriesID, otherClinic)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	ok, err := PatientInClinic(ctx, db, patientID, otherClinic)
	require.NoError(t, err)
	assert.False(t, ok)
}
