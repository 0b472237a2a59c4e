package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eyerest/internal/core/model"
)

const defaultHistoryLimit = 50

type demoBreakResponse struct {
	Started bool             `json:"started"`
	State   model.TimerState `json:"state"`
}

type tooltipsResponse struct {
	TooltipsSeen []string `json:"tooltips_seen"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.TimerState())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.PauseTimer(r.Context()))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ResumeTimer(r.Context()))
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.SkipBreak(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ResetTimer(r.Context()))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	requested := s.service.Settings()
	if err := decodeJSON(w, r, &requested); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.service.UpdateSettings(r.Context(), requested)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.AnalyticsSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stats, err := s.service.DailyStatsRange(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	if stats == nil {
		stats = []model.DailyStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBreakHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.service.BreakHistory(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []model.BreakRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearAllData(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.OnboardingState())
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.CompleteOnboarding(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleMarkTooltip(w http.ResponseWriter, r *http.Request) {
	seen, err := s.service.MarkTooltipSeen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tooltipsResponse{TooltipsSeen: seen})
}

func (s *Server) handleResetOnboarding(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.ResetOnboarding(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDemoBreak(w http.ResponseWriter, r *http.Request) {
	state, started := s.service.TriggerDemoBreak(r.Context())
	writeJSON(w, http.StatusOK, demoBreakResponse{Started: started, State: state})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return value, nil
}
