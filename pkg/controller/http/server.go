// Package http exposes the REST surface: chat, ingestion and the
// project catalog.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aethon-lab/mnemosyne/pkg/usecase"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// maxUploadSize bounds multipart uploads on /api/embed/file.
const maxUploadSize = 32 << 20

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	allowedOrigins []string
}

type Options func(*Server)

// WithAllowedOrigins sets the CORS allow-list. Empty means no CORS
// headers are emitted at all.
func WithAllowedOrigins(origins []string) Options {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler(uc))

		r.Route("/embed", func(r chi.Router) {
			r.Post("/text", embedTextHandler(uc))
			r.Post("/file", embedFileHandler(uc))
			r.Get("/status", embedStatusHandler(uc))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", listProjectsHandler(uc))
			r.Post("/", createProjectHandler(uc))
			r.Get("/search", searchProjectsHandler(uc))
			r.Get("/{projectID}", getProjectHandler(uc))
			r.Put("/{projectID}", updateProjectHandler(uc))
			r.Delete("/{projectID}", deleteProjectHandler(uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
