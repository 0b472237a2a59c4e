// Package api exposes the timer commands, analytics queries and the event
// stream over HTTP for presentation layers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
	"eyerest/internal/core/timekeeper"
)

const shutdownTimeout = 5 * time.Second

// Service is the command surface served over HTTP.
type Service interface {
	TimerState() model.TimerState
	PauseTimer(ctx context.Context) model.TimerState
	ResumeTimer(ctx context.Context) model.TimerState
	SkipBreak(ctx context.Context) model.TimerState
	ResetTimer(ctx context.Context) model.TimerState

	Settings() model.Settings
	UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error)

	AnalyticsSummary(ctx context.Context) (model.AnalyticsSummary, error)
	DailyStatsRange(ctx context.Context, from, to string) ([]model.DailyStats, error)
	BreakHistory(ctx context.Context, limit, offset int) ([]model.BreakRecord, error)
	ClearAllData(ctx context.Context) error

	OnboardingState() model.OnboardingState
	CompleteOnboarding(ctx context.Context) (model.OnboardingState, error)
	MarkTooltipSeen(ctx context.Context, id string) ([]string, error)
	ResetOnboarding(ctx context.Context) (model.OnboardingState, error)
	TriggerDemoBreak(ctx context.Context) (model.TimerState, bool)
}

// EventSource is the timer's observer registry.
type EventSource interface {
	Subscribe(buffer int) <-chan timekeeper.Event
	Unsubscribe(ch <-chan timekeeper.Event)
}

// Server routes requests to the Service and streams events.
type Server struct {
	service     Service
	events      EventSource
	broadcaster *Broadcaster
	router      chi.Router
}

// NewServer creates a Server with all routes registered.
func NewServer(service Service, events EventSource) *Server {
	server := &Server{
		service:     service,
		events:      events,
		broadcaster: NewBroadcaster(),
		router:      chi.NewRouter(),
	}
	server.setupRoutes()
	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Broadcaster returns the SSE fan-out.
func (s *Server) Broadcaster() *Broadcaster {
	return s.broadcaster
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/timer", func(r chi.Router) {
			r.Get("/", s.handleGetTimer)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/skip", s.handleSkip)
			r.Post("/reset", s.handleReset)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/analytics/summary", s.handleAnalyticsSummary)
		r.Get("/analytics/daily", s.handleDailyStats)
		r.Get("/breaks", s.handleBreakHistory)
		r.Delete("/data", s.handleClearData)

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/", s.handleGetOnboarding)
			r.Post("/complete", s.handleCompleteOnboarding)
			r.Post("/tooltips/{id}", s.handleMarkTooltip)
			r.Post("/reset", s.handleResetOnboarding)
			r.Post("/demo-break", s.handleDemoBreak)
		})

		r.Get("/events", s.broadcaster.HandleSSE)
	})
}

// Run serves on addr and pumps timer events to SSE clients until ctx is
// done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	events := s.events.Subscribe(64)
	defer s.events.Unsubscribe(events)
	go s.broadcaster.Pump(ctx, events)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.broadcaster.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info().Msg("HTTP API stopped")
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
