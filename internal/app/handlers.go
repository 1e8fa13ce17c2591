package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/filippietrz/grafik-urologia/internal/httpserver"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
	"github.com/filippietrz/grafik-urologia/pkg/roster"
)

// Routes mounts the three operations spec.md §6 requires — read
// preferences, write preferences, run schedule — onto r.
func (s *Service) Routes(r chi.Router) {
	r.Get("/preferences", s.handleGetPreferences)
	r.Put("/preferences", s.handlePutPreferences)
	r.Post("/schedule/generate", s.handleGenerateSchedule)
	r.Get("/schedule/{periodStart}", s.handleGetSchedule)
}

func (s *Service) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	records, err := s.GetPreferences(r.Context())
	if err != nil {
		httpserver.RespondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, records)
}

func (s *Service) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	// The body is a JSON array, which struct-tag validation cannot take;
	// each record is checked by PutPreferences instead.
	var records []preference.Record
	if err := httpserver.Decode(r, &records); err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := s.PutPreferences(r.Context(), records); err != nil {
		if errors.Is(err, roster.ErrInvalidInput) {
			httpserver.RespondError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		httpserver.RespondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Service) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.GenerateSchedule(r.Context(), req)
	if err != nil {
		if errors.Is(err, roster.ErrInvalidInput) {
			httpserver.RespondError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		httpserver.RespondError(w, http.StatusInternalServerError, "generation_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}

func (s *Service) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "periodStart")
	periodStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "invalid_input", "periodStart must be YYYY-MM-DD")
		return
	}

	result, ok := s.GetSchedule(periodStart)
	if !ok {
		httpserver.RespondError(w, http.StatusNotFound, "not_found", "no schedule has been generated for this period in this process")
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}
