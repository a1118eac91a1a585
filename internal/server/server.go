// Package server exposes a session and submission store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/attrition-cli/internal/logging"
	"github.com/KaramelBytes/attrition-cli/internal/session"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

// formOverhead is the room left for multipart headers and text fields on top of
// the file size limit.
const formOverhead = 1 << 20

// Server serves one session.
type Server struct {
	session   *session.Session
	store     *submission.Store
	logger    *slog.Logger
	maxUpload int64
}

// New builds a server. maxUpload bounds the uploaded file size in bytes.
func New(sess *session.Session, store *submission.Store, maxUpload int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		session:   sess,
		store:     store,
		logger:    logger.With(slog.String("component", "server")),
		maxUpload: maxUpload,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.health)
	r.Get("/dashboard", s.dashboardHTML)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/submissions", s.createSubmission)
		r.Get("/submissions", s.listSubmissions)
		r.Get("/dashboard", s.dashboard)
		r.Get("/dimensions", s.dimensions)
		r.Put("/filters", s.applyFilters)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	} else {
		s.logger.InfoContext(r.Context(), "request rejected", slog.String("path", r.URL.Path), slog.String("code", apiErr.ErrorCode))
	}
	_ = render.Render(w, r, apiErr)
}
