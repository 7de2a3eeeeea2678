package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tecmax-dev/sisvida-sub017/internal/recurrence"
)

// RecurrenceInput is the recurrence block of the booking form.
// Its fields are checked by validateRecurrence and only when Enabled is true.
type RecurrenceInput struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency"`
	LimitType string `json:"limit_type"`
	Sessions  int    `json:"sessions"`
	EndDate   string `json:"end_date"`
}

// validateRecurrence ignores a disabled block, whatever stale values the form still carries.
func validateRecurrence(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(RecurrenceInput)
	if !ok || !in.Enabled {
		return
	}
	switch recurrence.Frequency(in.Frequency) {
	case recurrence.Weekly, recurrence.Biweekly, recurrence.Monthly:
	case "":
		sl.ReportError(in.Frequency, "frequency", "Frequency", "required", "")
	default:
		sl.ReportError(in.Frequency, "frequency", "Frequency", "oneof", "weekly biweekly monthly")
	}
	switch recurrence.LimitType(in.LimitType) {
	case recurrence.LimitSessions:
		switch {
		case in.Sessions == 0:
			sl.ReportError(in.Sessions, "sessions", "Sessions", "required", "")
		case in.Sessions < recurrence.MinSessions:
			sl.ReportError(in.Sessions, "sessions", "Sessions", "min", "2")
		case in.Sessions > recurrence.MaxOccurrences:
			sl.ReportError(in.Sessions, "sessions", "Sessions", "max", "52")
		}
	case recurrence.LimitDate:
		if in.EndDate == "" {
			sl.ReportError(in.EndDate, "end_date", "EndDate", "required", "")
		} else if _, err := time.Parse(dateLayout, in.EndDate); err != nil {
			sl.ReportError(in.EndDate, "end_date", "EndDate", "ymd", "")
		}
	case "":
		sl.ReportError(in.LimitType, "limit_type", "LimitType", "required", "")
	default:
		sl.ReportError(in.LimitType, "limit_type", "LimitType", "oneof", "sessions date")
	}
}

func (in *RecurrenceInput) Config() recurrence.Config {
	if in == nil {
		return recurrence.Config{}
	}
	return recurrence.Config{
		Enabled:   in.Enabled,
		Frequency: recurrence.Frequency(in.Frequency),
		LimitType: recurrence.LimitType(in.LimitType),
		Sessions:  in.Sessions,
		EndDate:   in.EndDate,
	}
}

type previewRequest struct {
	StartDate  string          `json:"start_date" validate:"required,ymd"`
	Recurrence RecurrenceInput `json:"recurrence"`
}

func formatDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Format(dateLayout)
	}
	return out
}

// PreviewRecurrence devolve as datas que o agendamento geraria, sem gravar nada.
func (h *Handler) PreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	cfg := req.Recurrence.Config()
	dates := h.Booker.Preview(start, cfg)

	resp := map[string]interface{}{
		"dates": formatDates(dates),
		"count": len(dates),
	}
	if rule, err := recurrence.RuleString(start, cfg); err == nil {
		resp["rrule"] = rule
	}
	writeJSON(w, http.StatusOK, resp)
}
