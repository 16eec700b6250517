package hc

import (
	"net/http"
	"time"

	"lendex/core"
	"lendex/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request, reports the indexer cursor when cursors is set
func Handle(ver string, cursors core.EntityStore, consumer string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, cursors, consumer))
	return r
}

func handle(version string, cursors core.EntityStore, consumer string) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(b).Truncate(time.Millisecond)
		resp := render.H{
			"uptime":  uptime.String(),
			"version": version,
		}

		if cursors != nil {
			cursor, err := cursors.Cursor(r.Context(), consumer)
			if err != nil {
				render.InternalError(w, r, err)
				return
			}

			resp["indexed_block"] = cursor.BlockNumber
		}

		render.JSON(w, resp)
	}
}
