// Package web exposes the store over a JSON HTTP API. Every request runs under one
// mutex, so at most one operation uses the store at a time.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/conorfennell/knoldeck/internal/clock"
	"github.com/conorfennell/knoldeck/internal/exchange"
	"github.com/conorfennell/knoldeck/internal/fsrs"
	"github.com/conorfennell/knoldeck/internal/hierarchy"
	"github.com/conorfennell/knoldeck/internal/logging"
	"github.com/conorfennell/knoldeck/internal/repetition"
	"github.com/conorfennell/knoldeck/internal/sequencer"
)

//go:generate mockgen -destination=mocks/mock_web.go -package=mocks github.com/conorfennell/knoldeck/internal/web Exchanger,SettingsManager

// Exchanger exports and imports subtrees.
type Exchanger interface {
	Export(ctx context.Context, id int64) (exchange.ExportedItem, error)
	Import(ctx context.Context, item exchange.ExportedItem, destinationID int64) (int64, error)
}

// Settings are the user-editable parts of the configuration.
type Settings struct {
	Theme        string `json:"theme" validate:"oneof=FollowSystem Light Dark"`
	DatabasePath string `json:"databasePath" validate:"required"`
}

// SettingsManager persists settings. Apply reopens the store when needed and returns the
// services bound to it.
type SettingsManager interface {
	Current() Settings
	Apply(ctx context.Context, s Settings) (Deps, error)
}

// Deps are the services the handlers call.
type Deps struct {
	Files     hierarchy.Store
	Cells     sequencer.Sequencer
	Units     repetition.Lifecycle
	Exchange  Exchanger
	Settings  SettingsManager
	Scheduler *fsrs.Scheduler
	Clock     clock.Clock
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	mu     sync.Mutex
	deps   Deps
	router chi.Router
}

// NewServer creates and configures a new server.
func NewServer(deps Deps) *Server {
	if deps.Scheduler == nil {
		deps.Scheduler = fsrs.NewScheduler(nil)
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	s := &Server{deps: deps, router: chi.NewRouter()}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.serialize)

		r.Get("/files", s.handleListFiles())
		r.Post("/files", s.handleCreateFile())
		r.Post("/folders", s.handleCreateFolder())
		r.Delete("/files/{id}", s.handleDeleteFile())
		r.Delete("/folders/{id}", s.handleDeleteFolder())
		r.Post("/files/{id}/move", s.handleMoveFile())
		r.Post("/folders/{id}/move", s.handleMoveFolder())
		r.Post("/files/{id}/rename", s.handleRenameFile())
		r.Post("/folders/{id}/rename", s.handleRenameFolder())

		r.Get("/files/{id}/cells", s.handleListCells())
		r.Post("/cells", s.handleCreateCell())
		r.Delete("/cells/{id}", s.handleDeleteCell())
		r.Post("/cells/{id}/move", s.handleMoveCell())
		r.Put("/cells/{id}/content", s.handleUpdateCellContent())
		r.Put("/cells/contents", s.handleUpdateCellsContents())
		r.Post("/cells/{id}/reset", s.handleResetUnits())

		r.Get("/files/{id}/study-counts", s.handleStudyCounts())
		r.Get("/files/{id}/units", s.handleFileUnits())
		r.Post("/units/query", s.handleUnitsForFiles())
		r.Post("/units/{id}/grade", s.handleGrade())
		r.Post("/reviews", s.handleRegisterReview())

		r.Get("/statistics/today", s.handleTodayStatistics())
		r.Get("/statistics/home", s.handleHomeStatistics())

		r.Get("/export/{id}", s.handleExport())
		r.Post("/import", s.handleImport())

		r.Get("/settings", s.handleGetSettings())
		r.Put("/settings", s.handlePutSettings())
	})
}

// serialize holds the server mutex for the whole request.
func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// requestLogger tags the request context with a logger carrying a fresh request id and
// logs the outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		log := slog.Default().With("request_id", id)
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), log)))

		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
