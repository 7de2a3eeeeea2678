package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tecmax-dev/sisvida-sub017/internal/auth"
	"github.com/tecmax-dev/sisvida-sub017/internal/middleware"
)

// Register mounts the agenda API under /api. Every route requires a token of a professional or super admin.
func (h *Handler) Register(r *mux.Router, secret []byte) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(secret), middleware.RequireRole(auth.RoleProfessional, auth.RoleSuperAdmin))

	api.HandleFunc("/appointments/recurrence/preview", h.PreviewRecurrence).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.CreateAppointment).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.ListAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", h.PatchAppointment).Methods(http.MethodPatch)
	api.HandleFunc("/appointment-series/{id}", h.GetSeries).Methods(http.MethodGet)
	api.HandleFunc("/appointment-series/{id}/calendar.ics", h.SeriesCalendar).Methods(http.MethodGet)
	api.HandleFunc("/appointment-series/{id}/end", h.EndSeries).Methods(http.MethodPost)
}
