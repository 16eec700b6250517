package handler

import (
	"net/http"

	"lendex/core"
	"lendex/handler/hc"
	"lendex/handler/rest"
	"lendex/pkg/metrics"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Server server
type Server struct {
	version  string
	cursors  core.EntityStore
	consumer string
	stores   rest.Stores
	services rest.Services
}

// New new server function
func New(
	version string,
	cursors core.EntityStore,
	consumer string,
	stores rest.Stores,
	services rest.Services,
) Server {
	return Server{
		version:  version,
		cursors:  cursors,
		consumer: consumer,
		stores:   stores,
		services: services,
	}
}

// Handler mount health check, metrics and the restful api
func (s Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Mount("/hc", hc.Handle(s.version, s.cursors, s.consumer))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Mount("/api", s.HandleRestAPI())
	return r
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Mount("/", rest.Handle(s.stores, s.services))
	return r
}
