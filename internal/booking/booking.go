package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tecmax-dev/sisvida-sub017/internal/metrics"
	"github.com/tecmax-dev/sisvida-sub017/internal/recurrence"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("invalid booking request")
	ErrNothingCreated = errors.New("no appointment created")
)

const (
	ReasonConflict = "conflict"
	ReasonInternal = "internal"
)

// Store persists series and appointments. repo.AppointmentStore is the PostgreSQL implementation.
type Store interface {
	CreateSeries(ctx context.Context, s repo.AppointmentSeries) (uuid.UUID, error)
	CreateAppointment(ctx context.Context, a repo.NewAppointment) (uuid.UUID, error)
	DeleteSeries(ctx context.Context, id uuid.UUID) error
}

// Request is one booking: a first appointment plus an optional recurrence.
// StartTime is "HH:MM"; DurationMinutes <= 0 means the service default.
type Request struct {
	ClinicID        uuid.UUID
	ProfessionalID  uuid.UUID
	PatientID       uuid.UUID
	Date            time.Time
	StartTime       string
	DurationMinutes int
	Procedure       string
	Status          string
	Notes           string
	Recurrence      recurrence.Config
}

type Created struct {
	ID   uuid.UUID `json:"id"`
	Date time.Time `json:"date"`
}

type Failure struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

type Result struct {
	SeriesID *uuid.UUID
	Dates    []time.Time
	Created  []Created
	Failed   []Failure
}

// Conflicts reports whether every failure was a slot conflict.
func (r *Result) Conflicts() bool {
	if len(r.Failed) == 0 {
		return false
	}
	for _, f := range r.Failed {
		if f.Reason != ReasonConflict {
			return false
		}
	}
	return true
}

type Service struct {
	Store           Store
	DefaultDuration time.Duration
	Log             *zap.Logger
}

func NewService(store Store, defaultDuration time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, DefaultDuration: defaultDuration, Log: log}
}

// Preview returns the dates a booking with this recurrence would create.
func (s *Service) Preview(start time.Time, cfg recurrence.Config) []time.Time {
	return recurrence.CalculateDates(start, cfg)
}

// Book creates the series (when more than one date) and one appointment per date, in order.
// Appointments already created stay when a later one fails; failures are reported in Result.Failed.
// When nothing could be created the series row is removed again and the result comes back
// together with ErrNothingCreated.
func (s *Service) Book(ctx context.Context, req Request) (*Result, error) {
	startTOD, duration, status, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	dates := recurrence.CalculateDates(req.Date, req.Recurrence)
	metrics.ObserveRecurrence(len(dates))
	res := &Result{Dates: dates}

	if len(dates) > 1 {
		series := seriesFor(req)
		if rule, err := recurrence.RuleString(req.Date, req.Recurrence); err == nil {
			series.RRule = &rule
		}
		id, err := s.Store.CreateSeries(ctx, series)
		if err != nil {
			return nil, fmt.Errorf("create series: %w", err)
		}
		res.SeriesID = &id
	}

	endTOD := startTOD.Add(duration)
	for _, d := range dates {
		id, err := s.Store.CreateAppointment(ctx, repo.NewAppointment{
			ClinicID:       req.ClinicID,
			ProfessionalID: req.ProfessionalID,
			PatientID:      req.PatientID,
			SeriesID:       res.SeriesID,
			Date:           d,
			Start:          startTOD,
			End:            endTOD,
			Procedure:      req.Procedure,
			Status:         status,
			Notes:          req.Notes,
		})
		if err != nil {
			reason := ReasonInternal
			if repo.IsUniqueViolation(err) {
				reason = ReasonConflict
			} else {
				s.Log.Warn("create appointment failed", zap.String("date", d.Format("2006-01-02")), zap.Error(err))
			}
			metrics.IncAppointmentInsert(reason)
			res.Failed = append(res.Failed, Failure{Date: d, Reason: reason})
			continue
		}
		metrics.IncAppointmentInsert("created")
		res.Created = append(res.Created, Created{ID: id, Date: d})
	}

	if len(res.Created) == 0 {
		// uma série sem nenhum agendamento não é alcançável pelo cliente
		if res.SeriesID != nil {
			if err := s.Store.DeleteSeries(ctx, *res.SeriesID); err != nil {
				s.Log.Warn("delete empty series failed", zap.String("series_id", res.SeriesID.String()), zap.Error(err))
			}
			res.SeriesID = nil
		}
		return res, ErrNothingCreated
	}
	return res, nil
}

func (s *Service) validate(req Request) (startTOD time.Time, duration time.Duration, status string, err error) {
	if req.ClinicID == uuid.Nil || req.ProfessionalID == uuid.Nil || req.PatientID == uuid.Nil {
		return time.Time{}, 0, "", fmt.Errorf("%w: clinic, professional and patient are required", ErrInvalidRequest)
	}
	if req.Date.IsZero() {
		return time.Time{}, 0, "", fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	startTOD, err = time.Parse("15:04", req.StartTime)
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("%w: start_time must be HH:MM", ErrInvalidRequest)
	}
	duration = s.DefaultDuration
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}
	if duration <= 0 {
		return time.Time{}, 0, "", fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	// o horário de término precisa cair no mesmo dia
	if startTOD.Add(duration).Day() != startTOD.Day() {
		return time.Time{}, 0, "", fmt.Errorf("%w: appointment must end on the same day", ErrInvalidRequest)
	}
	status = req.Status
	if status == "" {
		status = repo.StatusAgendado
	}
	if !repo.ValidStatus(status) || status == repo.StatusSeriesEnded {
		return time.Time{}, 0, "", fmt.Errorf("%w: invalid status %q", ErrInvalidRequest, status)
	}
	return startTOD, duration, status, nil
}

func seriesFor(req Request) repo.AppointmentSeries {
	s := repo.AppointmentSeries{
		ClinicID:       req.ClinicID,
		ProfessionalID: req.ProfessionalID,
		PatientID:      req.PatientID,
		Frequency:      string(req.Recurrence.Frequency),
		LimitType:      string(req.Recurrence.LimitType),
	}
	switch req.Recurrence.LimitType {
	case recurrence.LimitSessions:
		n := req.Recurrence.Sessions
		s.Sessions = &n
	case recurrence.LimitDate:
		if end, err := recurrence.ParseDate(req.Recurrence.EndDate); err == nil {
			s.EndDate = &end
		}
	}
	return s
}
