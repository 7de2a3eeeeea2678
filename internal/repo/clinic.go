package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Clinic struct {
	ID   uuid.UUID
	Name string
}

func ClinicByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Clinic, error) {
	var c Clinic
	err := db.WithContext(ctx).Table("clinics").Select("id, name").Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PatientInClinic reports whether the (non-deleted) patient belongs to the clinic.
func PatientInClinic(ctx context.Context, db *gorm.DB, patientID, clinicID uuid.UUID) (bool, error) {
	return existsInClinic(ctx, db, "patients", patientID, clinicID)
}

// ProfessionalInClinic reports whether the (non-deleted) professional belongs to the clinic.
func ProfessionalInClinic(ctx context.Context, db *gorm.DB, professionalID, clinicID uuid.UUID) (bool, error) {
	return existsInClinic(ctx, db, "professionals", professionalID, clinicID)
}

func existsInClinic(ctx context.Context, db *gorm.DB, table string, id, clinicID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Table(table).
		Where("id = ? AND clinic_id = ? AND deleted_at IS NULL", id, clinicID).
		Count(&n).Error
	return n > 0, err
}
