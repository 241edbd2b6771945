// Package api exposes the session engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/logging"
)

// Options configures the HTTP handler.
type Options struct {
	// Secret verifies bearer tokens.
	Secret []byte

	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
}

// Handler serves the engine's operations.
type Handler struct {
	engine   *assessment.Engine
	validate *validator.Validate
}

// New returns the HTTP handler for engine.
func New(engine *assessment.Engine, opts Options) http.Handler {
	h := &Handler{
		engine:   engine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(opts.Secret))

		r.Get("/tests", h.ListTests)
		r.Get("/tests/{id}", h.GetTest)
		r.Post("/tests/{id}/start", h.Start)
		r.With(requireRole(RoleTeacher, RoleAdmin)).Get("/tests/{id}/stats", h.Stats)

		r.Post("/sessions/{id}/answer", h.Answer)
		r.Post("/sessions/{id}/finish", h.Finish)
		r.Get("/sessions/{id}/result", h.Result)
	})
	return r
}

// requestLogger attaches a request-scoped logrus entry and logs each
// completed request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithFields(r.Context(), logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.WithContext(ctx).WithFields(logrus.Fields{
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).String(),
			"remote":   r.RemoteAddr,
		}).Info("request")
	})
}
