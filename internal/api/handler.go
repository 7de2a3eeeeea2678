package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tecmax-dev/sisvida-sub017/internal/auth"
	"github.com/tecmax-dev/sisvida-sub017/internal/booking"
	"github.com/tecmax-dev/sisvida-sub017/internal/cache"
	"github.com/tecmax-dev/sisvida-sub017/internal/config"
	"github.com/tecmax-dev/sisvida-sub017/internal/middleware"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Cache    cache.Store
	Log      *zap.Logger
	Booker   *booking.Service
	validate *validator.Validate
}

func NewHandler(db *gorm.DB, cfg *config.Config, store cache.Store, log *zap.Logger, booker *booking.Service) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		DB:       db,
		Cfg:      cfg,
		Cache:    store,
		Log:      log,
		Booker:   booker,
		validate: newValidator(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clinicFrom resolves the clinic of the token; it writes the error response when there is none.
func clinicFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	clinicID, err := auth.ClinicIDFrom(r.Context())
	if err != nil {
		writeError(w, http.StatusForbidden, "no clinic")
		return uuid.Nil, false
	}
	return clinicID, true
}

func (h *Handler) logger(r *http.Request) *zap.Logger {
	return h.Log.With(zap.String("request_id", middleware.RequestIDFromContext(r.Context())))
}

// audit grava o evento; falha de auditoria não derruba a requisição.
func (h *Handler) audit(r *http.Request, clinicID uuid.UUID, action string, resourceType string, resourceID, patientID *uuid.UUID, metadata interface{}) {
	src := "USER"
	sev := "INFO"
	err := repo.CreateAuditEvent(r.Context(), h.DB, repo.AuditEvent{
		Action:       action,
		ActorType:    auth.RoleFrom(r.Context()),
		ActorID:      auth.ActorID(r.Context()),
		ClinicID:     &clinicID,
		RequestID:    middleware.RequestIDFromContext(r.Context()),
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
		ResourceType: &resourceType,
		ResourceID:   resourceID,
		PatientID:    patientID,
		Source:       &src,
		Severity:     &sev,
		Metadata:     metadata,
	})
	if err != nil {
		h.logger(r).Warn("audit event not recorded", zap.String("action", action), zap.Error(err))
	}
}

func (h *Handler) invalidateAppointments(r *http.Request, clinicID uuid.UUID) {
	if h.Cache != nil {
		h.Cache.DeletePrefix(r.Context(), appointmentsCachePrefix(clinicID))
	}
}

func appointmentsCachePrefix(clinicID uuid.UUID) string {
	return "appointments:" + clinicID.String() + ":"
}
