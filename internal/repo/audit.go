package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuditAppointmentsCreatedBatch     = "APPOINTMENTS_CREATED_BATCH"
	AuditAppointmentUpdated           = "APPOINTMENT_UPDATED"
	AuditAppointmentsSeriesEndedBatch = "APPOINTMENTS_SERIES_ENDED_BATCH"
)

type AuditEvent struct {
	Action       string
	ActorType    string
	ActorID      *uuid.UUID
	ClinicID     *uuid.UUID
	RequestID    string
	IP           string
	UserAgent    string
	ResourceType *string
	ResourceID   *uuid.UUID
	PatientID    *uuid.UUID
	Source       *string // USER|SYSTEM
	Severity     *string // INFO|WARN|ERROR
	Metadata     interface{}
}

func CreateAuditEvent(ctx context.Context, db *gorm.DB, ev AuditEvent) error {
	var meta *string
	if ev.Metadata != nil {
		b, err := json.Marshal(ev.Metadata)
		if err != nil {
			return err
		}
		s := string(b)
		meta = &s
	}
	return db.WithContext(ctx).Exec(`
		INSERT INTO audit_events (
			action, actor_type, actor_id, clinic_id, request_id, ip, user_agent,
			resource_type, resource_id, patient_id, source, severity, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?::jsonb)
	`,
		ev.Action, ev.ActorType, ev.ActorID, ev.ClinicID, nullIfEmptyText(ev.RequestID), nullIfEmptyText(ev.IP), nullIfEmptyText(ev.UserAgent),
		ev.ResourceType, ev.ResourceID, ev.PatientID, ev.Source, ev.Severity, meta,
	).Error
}

func nullIfEmptyText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
