package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStore exposes the series and appointment inserts over a *gorm.DB.
type AppointmentStore struct {
	DB *gorm.DB
}

func (s AppointmentStore) CreateSeries(ctx context.Context, series AppointmentSeries) (uuid.UUID, error) {
	return CreateSeries(ctx, s.DB, series)
}

func (s AppointmentStore) CreateAppointment(ctx context.Context, a NewAppointment) (uuid.UUID, error) {
	return CreateAppointment(ctx, s.DB, a)
}

func (s AppointmentStore) DeleteSeries(ctx context.Context, id uuid.UUID) error {
	_, err := DeleteSeries(ctx, s.DB, id)
	return err
}
