package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"atlaskv/internal/platform/obs"
	"atlaskv/internal/platform/server/handler/admin"
	"atlaskv/internal/platform/server/handler/dbentry"
	"atlaskv/internal/platform/server/middleware"
)

// Server is the admin/operational HTTP surface: health, stats, and a
// debug get/put/delete surface over the engine. It is not a binary
// wire protocol server; this repository has no network client of its
// own to speak one to.
type Server struct {
	httpAddr string
	router   *chi.Mux
}

func NewServer(port int, adminHandler *admin.Handler, dbEntryHandler *dbentry.Handler) Server {
	srv := Server{
		router:   chi.NewRouter(),
		httpAddr: fmt.Sprintf(":%d", port),
	}
	srv.router.Use(chimw.Logger)
	srv.router.Use(middleware.RequestID)
	srv.registerRoutes(adminHandler, dbEntryHandler)
	return srv
}

func (s *Server) Run() error {
	obs.Info.Printf("admin server listening on %s", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.router)
}

func (s *Server) registerRoutes(adminHandler *admin.Handler, dbEntryHandler *dbentry.Handler) {
	s.router.Get("/healthz", adminHandler.Healthz)
	s.router.Get("/stats", adminHandler.Stats)
	s.router.Get("/db/{key}", dbEntryHandler.Get)
	s.router.Put("/db/{key}", dbEntryHandler.Put)
	s.router.Delete("/db/{key}", dbEntryHandler.Delete)
}
