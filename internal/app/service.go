// Package app wires the preference store, the on-call and daily-timetable
// engines, the HTTP surface, and the Slack notifier into one runnable
// service, and implements the "generate" CLI mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filippietrz/grafik-urologia/internal/notify"
	"github.com/filippietrz/grafik-urologia/internal/telemetry"
	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
	"github.com/filippietrz/grafik-urologia/pkg/roster"
	"github.com/filippietrz/grafik-urologia/pkg/timetable"
)

// GenerateRequest is the request shape for POST /schedule/generate.
type GenerateRequest struct {
	Year           int            `json:"year" validate:"required,gte=2000"`
	StartMonth     int            `json:"start_month" validate:"required,gte=1,lte=12"`
	TargetLimits   map[string]int `json:"target_limits" validate:"required"`
	PreviousTail   string         `json:"previous_tail"`
	Trials         int            `json:"trials"`
	RescueAttempts int            `json:"rescue_attempts"`
}

// ScheduleResult bundles the on-call roster, the daily timetable, and the
// run identity returned to HTTP and CLI callers alike.
type ScheduleResult struct {
	RunID       string             `json:"run_id"`
	PeriodStart time.Time          `json:"period_start"`
	Dates       []time.Time        `json:"dates"`
	Roster      roster.GenerateOutput `json:"roster"`
	Timetable   timetable.Matrix   `json:"timetable"`
}

// Service is the application's central dependency bundle: the preference
// store, the fixed team roster, and everything the HTTP/CLI shells need to
// run a generation request.
type Service struct {
	Store    preference.Store
	Team     roster.Team
	Notifier *notify.Notifier
	Logger   *slog.Logger

	mu      sync.RWMutex
	lastRun map[string]ScheduleResult // keyed by period-start date (YYYY-MM-DD)
}

// NewService constructs a Service.
func NewService(store preference.Store, team roster.Team, notifier *notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		Store:    store,
		Team:     team,
		Notifier: notifier,
		Logger:   logger,
		lastRun:  make(map[string]ScheduleResult),
	}
}

// GetPreferences loads the full preference record set (spec §4.2, §6).
func (s *Service) GetPreferences(ctx context.Context) ([]preference.Record, error) {
	return s.Store.Load(ctx)
}

// PutPreferences overwrites the full preference record set.
func (s *Service) PutPreferences(ctx context.Context, records []preference.Record) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %s", roster.ErrInvalidInput, err)
		}
	}
	if err := s.Store.Save(ctx, records); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// GenerateSchedule runs one full generation pass: on-call engine then
// daily-timetable engine, in that order (the timetable engine consumes
// the finalized roster, spec §4.5), and caches the result in memory keyed
// by period start so a later GET can re-serve it.
func (s *Service) GenerateSchedule(ctx context.Context, req GenerateRequest) (ScheduleResult, error) {
	startMonth := time.Month(req.StartMonth)
	if err := calendar.ValidateStartMonth(startMonth); err != nil {
		return ScheduleResult{}, fmt.Errorf("%w: %s", roster.ErrInvalidInput, err)
	}

	dates, err := calendar.PeriodDates(req.Year, startMonth)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("%w: %s", roster.ErrInvalidInput, err)
	}
	periodStart := calendar.PeriodStart(req.Year, startMonth)

	records, err := s.Store.Load(ctx)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("loading preferences: %w", err)
	}
	prefs := preference.Project(records)

	rosterOut, err := roster.Generate(ctx, roster.GenerateInput{
		Dates:          dates,
		PeriodStart:    periodStart,
		Team:           s.Team,
		Prefs:          prefs,
		TargetLimits:   req.TargetLimits,
		PreviousTail:   req.PreviousTail,
		Trials:         req.Trials,
		RescueAttempts: req.RescueAttempts,
		Seed:           int64(req.Year)*100 + int64(req.StartMonth),
	})
	if err != nil {
		telemetry.ScheduleRunsTotal.WithLabelValues("invalid_input").Inc()
		return ScheduleResult{}, err
	}

	matrix := timetable.Generate(timetable.GenerateInput{
		Dates:        dates,
		PeriodStart:  periodStart,
		Roster:       rosterOut.Roster,
		Team:         s.Team,
		Prefs:        prefs,
		PreviousTail: req.PreviousTail,
	})

	unfilled := len(dates) - rosterOut.Roster.FilledCount()
	outcome := "complete"
	if unfilled > 0 {
		outcome = "partial"
	}
	telemetry.ScheduleRunsTotal.WithLabelValues(outcome).Inc()
	telemetry.ScheduleBestScore.WithLabelValues(startMonth.String()).Observe(float64(rosterOut.Score))
	telemetry.ScheduleUnfilledDays.WithLabelValues(startMonth.String()).Observe(float64(unfilled))
	if len(rosterOut.DeniedFixed) > 0 {
		telemetry.ScheduleDeniedFixedClaims.Add(float64(len(rosterOut.DeniedFixed)))
	}

	result := ScheduleResult{
		RunID:       uuid.NewString(),
		PeriodStart: periodStart,
		Dates:       dates,
		Roster:      rosterOut,
		Timetable:   matrix,
	}

	s.mu.Lock()
	s.lastRun[periodStart.Format("2006-01-02")] = result
	s.mu.Unlock()

	if s.Notifier != nil {
		if err := s.Notifier.PostScheduleSummary(ctx, result.RunID, periodStart, rosterOut); err != nil {
			s.Logger.Error("posting schedule summary", "error", err, "run_id", result.RunID)
		}
	}

	return result, nil
}

// GetSchedule returns the most recently generated result for the
// settlement period starting on periodStart, if one has been generated
// since this process started (there is no historical audit log — spec's
// explicit non-goal).
func (s *Service) GetSchedule(periodStart time.Time) (ScheduleResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.lastRun[periodStart.Format("2006-01-02")]
	return result, ok
}
