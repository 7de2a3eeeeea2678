package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tecmax-dev/sisvida-sub017/internal/auth"
	"github.com/tecmax-dev/sisvida-sub017/internal/booking"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createAppointmentRequest struct {
	PatientID       string           `json:"patient_id" validate:"required,uuid"`
	ProfessionalID  string           `json:"professional_id" validate:"omitempty,uuid"`
	Procedure       string           `json:"procedure" validate:"max=200"`
	AppointmentDate string           `json:"appointment_date" validate:"required,ymd"`
	StartTime       string           `json:"start_time" validate:"required,hhmm"`
	DurationMinutes int              `json:"duration_minutes" validate:"omitempty,min=5,max=720"`
	Status          string           `json:"status" validate:"omitempty,oneof=PRE_AGENDADO AGENDADO CONFIRMADO"`
	Notes           string           `json:"notes" validate:"max=2000"`
	Recurrence      *RecurrenceInput `json:"recurrence"`
}

// CreateAppointment agenda um atendimento, ou uma série quando recurrence.enabled=true.
// Datas que colidem com outro atendimento do profissional voltam em "failed" com reason=conflict.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFrom(w, r)
	if !ok {
		return
	}
	var req createAppointmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	patientID, _ := uuid.Parse(req.PatientID)
	var professionalID uuid.UUID
	if req.ProfessionalID != "" {
		professionalID, _ = uuid.Parse(req.ProfessionalID)
	} else if auth.RoleFrom(r.Context()) == auth.RoleProfessional {
		if id := auth.ActorID(r.Context()); id != nil {
			professionalID = *id
		}
	}
	if professionalID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "professional_id required")
		return
	}

	log := h.logger(r).With(zap.String("clinic_id", clinicID.String()))
	if ok, err := repo.PatientInClinic(r.Context(), h.DB, patientID, clinicID); err != nil {
		log.Error("patient lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	} else if !ok {
		writeError(w, http.StatusBadRequest, "patient not found")
		return
	}
	if ok, err := repo.ProfessionalInClinic(r.Context(), h.DB, professionalID, clinicID); err != nil {
		log.Error("professional lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	} else if !ok {
		writeError(w, http.StatusBadRequest, "professional not found")
		return
	}

	date, _ := time.Parse(dateLayout, req.AppointmentDate)
	res, err := h.Booker.Book(r.Context(), booking.Request{
		ClinicID:        clinicID,
		ProfessionalID:  professionalID,
		PatientID:       patientID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Procedure:       req.Procedure,
		Status:          req.Status,
		Notes:           req.Notes,
		Recurrence:      req.Recurrence.Config(),
	})
	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, booking.ErrNothingCreated):
		if res.Conflicts() {
			writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "conflict", "failed": failuresJSON(res.Failed)})
			return
		}
		log.Error("no appointment created", zap.Int("failed", len(res.Failed)))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	case err != nil:
		log.Error("booking failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.invalidateAppointments(r, clinicID)
	meta := map[string]interface{}{"count": len(res.Created), "failed": len(res.Failed)}
	var seriesID interface{}
	if res.SeriesID != nil {
		meta["series_id"] = res.SeriesID.String()
		seriesID = res.SeriesID.String()
	}
	h.audit(r, clinicID, repo.AuditAppointmentsCreatedBatch, "APPOINTMENT", nil, &patientID, meta)
	log.Info("appointments created", zap.Int("created", len(res.Created)), zap.Int("failed", len(res.Failed)))

	created := make([]map[string]string, len(res.Created))
	for i, c := range res.Created {
		created[i] = map[string]string{"id": c.ID.String(), "appointment_date": c.Date.Format(dateLayout)}
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"series_id": seriesID,
		"dates":     formatDates(res.Dates),
		"created":   created,
		"failed":    failuresJSON(res.Failed),
	})
}

func failuresJSON(fs []booking.Failure) []map[string]string {
	out := make([]map[string]string, len(fs))
	for i, f := range fs {
		out[i] = map[string]string{"appointment_date": f.Date.Format(dateLayout), "reason": f.Reason}
	}
	return out
}

func appointmentJSON(a repo.Appointment) map[string]interface{} {
	seriesID := ""
	if a.SeriesID != nil {
		seriesID = a.SeriesID.String()
	}
	notes := ""
	if a.Notes != nil {
		notes = *a.Notes
	}
	return map[string]interface{}{
		"id":               a.ID.String(),
		"patient_id":       a.PatientID.String(),
		"professional_id":  a.ProfessionalID.String(),
		"series_id":        seriesID,
		"appointment_date": a.AppointmentDate.Format(dateLayout),
		"start_time":       repo.TimeStringToHHMM(a.StartTime),
		"end_time":         repo.TimeStringToHHMM(a.EndTime),
		"procedure":        a.Procedure,
		"status":           a.Status,
		"notes":            notes,
	}
}

// ListAppointments lista a agenda da clínica no intervalo [from, to]. A resposta fica em cache até a próxima escrita.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFrom(w, r)
	if !ok {
		return
	}
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		writeError(w, http.StatusBadRequest, "from and to required (YYYY-MM-DD)")
		return
	}
	from, err1 := time.Parse(dateLayout, fromStr)
	to, err2 := time.Parse(dateLayout, toStr)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	key := appointmentsCachePrefix(clinicID) + fromStr + ":" + toStr
	if h.Cache != nil {
		if b := h.Cache.Get(r.Context(), key); b != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(b)
			return
		}
	}

	list, err := repo.ListAppointmentsByClinicAndDateRange(r.Context(), h.DB, clinicID, from, to)
	if err != nil {
		h.logger(r).Error("list appointments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	out := make([]map[string]interface{}, len(list))
	for i, a := range list {
		m := appointmentJSON(a.Appointment)
		m["patient_name"] = a.PatientName
		m["professional_name"] = a.ProfessionalName
		out[i] = m
	}
	body, err := json.Marshal(map[string]interface{}{"appointments": out})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	if h.Cache != nil {
		h.Cache.Set(r.Context(), key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

type patchAppointmentRequest struct {
	AppointmentDate *string `json:"appointment_date" validate:"omitempty,ymd"`
	StartTime       *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime         *string `json:"end_time" validate:"omitempty,hhmm"`
	Status          *string `json:"status" validate:"omitempty,oneof=PRE_AGENDADO AGENDADO CONFIRMADO CANCELLED COMPLETED"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

// PatchAppointment altera um compromisso (data, horário, status, notas).
func (h *Handler) PatchAppointment(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicFrom(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req patchAppointmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var p repo.AppointmentPatch
	var fields []string
	if req.AppointmentDate != nil {
		d, _ := time.Parse(dateLayout, *req.AppointmentDate)
		p.Date = &d
		fields = append(fields, "appointment_date")
	}
	if req.StartTime != nil {
		t, _ := time.Parse(hhmmLayout, *req.StartTime)
		p.StartTime = &t
		fields = append(fields, "start_time")
	}
	if req.EndTime != nil {
		t, _ := time.Parse(hhmmLayout, *req.EndTime)
		p.EndTime = &t
		fields = append(fields, "end_time")
	}
	if p.StartTime != nil && p.EndTime != nil && !p.EndTime.After(*p.StartTime) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}
	if req.Status != nil {
		p.Status = req.Status
		fields = append(fields, "status")
	}
	if req.Notes != nil {
		p.Notes = req.Notes
		fields = append(fields, "notes")
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	err = repo.UpdateAppointment(r.Context(), h.DB, id, clinicID, p)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	case repo.IsUniqueViolation(err):
		writeError(w, http.StatusConflict, "conflict")
		return
	case err != nil:
		h.logger(r).Error("update appointment", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.invalidateAppointments(r, clinicID)
	h.audit(r, clinicID, repo.AuditAppointmentUpdated, "APPOINTMENT", &id, nil, map[string]interface{}{"fields": fields})
	w.WriteHeader(http.StatusNoContent)
}
