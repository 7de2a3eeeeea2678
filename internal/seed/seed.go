package seed

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Row is one seeded professional with the patients of the same clinic.
type Row struct {
	ClinicID       uuid.UUID
	ClinicName     string
	ProfessionalID uuid.UUID
	PatientIDs     []uuid.UUID
}

var demoClinics = []struct {
	name         string
	professional string
	email        string
	patients     []string
}{
	{"Clínica A", "Prof A", "profa@clinica-a.local", []string{"Ana Souza", "Bruno Lima", "Carla Dias"}},
	{"Clínica B", "Prof B", "profb@clinica-b.local", []string{"Diego Alves", "Elisa Rocha"}},
}

// Run creates two demo clinics, each with one professional and a few patients.
// It does nothing (and returns nil rows) when any clinic already exists.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger) ([]Row, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var n int64
	if err := db.WithContext(ctx).Table("clinics").Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		log.Debug("seed: clinics already present, skipping", zap.Int64("clinics", n))
		return nil, nil
	}

	var rows []Row
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range demoClinics {
			row := Row{ClinicID: uuid.New(), ClinicName: c.name, ProfessionalID: uuid.New()}
			if err := tx.Exec(`INSERT INTO clinics (id, name) VALUES (?, ?)`, row.ClinicID, c.name).Error; err != nil {
				return err
			}
			if err := tx.Exec(`INSERT INTO professionals (id, clinic_id, full_name, email) VALUES (?, ?, ?, ?)`,
				row.ProfessionalID, row.ClinicID, c.professional, c.email).Error; err != nil {
				return err
			}
			for _, name := range c.patients {
				id := uuid.New()
				if err := tx.Exec(`INSERT INTO patients (id, clinic_id, full_name) VALUES (?, ?, ?)`, id, row.ClinicID, name).Error; err != nil {
					return err
				}
				row.PatientIDs = append(row.PatientIDs, id)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("seed: demo clinics created", zap.Int("clinics", len(rows)))
	return rows, nil
}
