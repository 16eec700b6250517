package rest

import (
	"errors"
	"net/http"

	"lendex/core"
	"lendex/handler/render"
)

func seniorPoolHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, err := stores.SeniorPool.Find(r.Context())
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrSeniorPoolNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, pool, r.URL.Query().Get("fields"))
	}
}

func protocolHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		protocol, err := stores.Protocol.Find(r.Context())
		if errors.Is(err, core.ErrNotFound) {
			protocol = &core.Protocol{ID: core.ProtocolID}
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, protocol, r.URL.Query().Get("fields"))
	}
}
