package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tecmax-dev/sisvida-sub017/internal/calendar"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seriesFrom loads the series named in the path, scoped to the clinic of the token.
func (h *Handler) seriesFrom(w http.ResponseWriter, r *http.Request) (*repo.AppointmentSeries, bool) {
	clinicID, ok := clinicFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	s, err := repo.SeriesByIDAndClinic(r.Context(), h.DB, id, clinicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "series not found")
		return nil, false
	}
	if err != nil {
		h.logger(r).Error("load series", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return nil, false
	}
	return s, true
}

func seriesJSON(s *repo.AppointmentSeries) map[string]interface{} {
	m := map[string]interface{}{
		"id":              s.ID.String(),
		"professional_id": s.ProfessionalID.String(),
		"patient_id":      s.PatientID.String(),
		"frequency":       s.Frequency,
		"limit_type":      s.LimitType,
	}
	if s.Sessions != nil {
		m["sessions"] = *s.Sessions
	}
	if s.EndDate != nil {
		m["end_date"] = s.EndDate.Format(dateLayout)
	}
	if s.RRule != nil {
		m["rrule"] = *s.RRule
	}
	if s.EndedAt != nil {
		m["ended_at"] = s.EndedAt.Format(dateLayout)
	}
	return m
}

func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.seriesFrom(w, r)
	if !ok {
		return
	}
	list, err := repo.ListAppointmentsBySeries(r.Context(), h.DB, s.ID)
	if err != nil {
		h.logger(r).Error("list series appointments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	out := make([]map[string]interface{}, len(list))
	for i, a := range list {
		out[i] = appointmentJSON(a)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"series": seriesJSON(s), "appointments": out})
}

// SeriesCalendar exporta a série em iCalendar (um VEVENT por atendimento).
func (h *Handler) SeriesCalendar(w http.ResponseWriter, r *http.Request) {
	s, ok := h.seriesFrom(w, r)
	if !ok {
		return
	}
	list, err := repo.ListAppointmentsBySeries(r.Context(), h.DB, s.ID)
	if err != nil {
		h.logger(r).Error("list series appointments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	if len(list) == 0 {
		writeError(w, http.StatusNotFound, "series has no appointments")
		return
	}
	name := "Série " + s.ID.String()[:8]
	if c, err := repo.ClinicByID(r.Context(), h.DB, s.ClinicID); err == nil {
		name = c.Name + " - " + name
	}
	loc := time.UTC
	if h.Cfg != nil {
		loc = h.Cfg.Location()
	}
	var buf bytes.Buffer
	err = calendar.Encode(&buf, calendar.Export{
		Name:         name,
		Appointments: list,
		Location:     loc,
	})
	if err != nil {
		h.logger(r).Error("encode calendar", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="serie-`+s.ID.String()+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type endSeriesRequest struct {
	EndDate string `json:"end_date" validate:"required,ymd"`
}

// EndSeries encerra a série: atendimentos depois de end_date passam a SERIES_ENDED.
func (h *Handler) EndSeries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.seriesFrom(w, r)
	if !ok {
		return
	}
	var req endSeriesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	endDate, _ := time.Parse(dateLayout, req.EndDate)
	ids, err := repo.EndSeriesFromDate(r.Context(), h.DB, s.ID, endDate)
	if err != nil {
		h.logger(r).Error("end series", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.invalidateAppointments(r, s.ClinicID)
	h.audit(r, s.ClinicID, repo.AuditAppointmentsSeriesEndedBatch, "APPOINTMENT_SERIES", &s.ID, &s.PatientID,
		map[string]interface{}{"end_date": req.EndDate, "count": len(ids)})

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ended": len(ids), "appointment_ids": idStrs})
}
