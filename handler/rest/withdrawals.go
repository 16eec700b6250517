package rest

import (
	"errors"
	"net/http"

	"lendex/core"
	"lendex/handler/param"
	"lendex/handler/render"
	"lendex/handler/views"

	"github.com/go-chi/chi"
)

func listWithdrawalRequestsHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			User   string `json:"user"`
			Fields string `json:"fields"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		requests, err := stores.Withdrawals.ListRequests(r.Context(), core.NormalizeAddress(params.User))
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, requests, params.Fields)
	}
}

func findWithdrawalRequestHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		request, err := stores.Withdrawals.FindRequest(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrWithdrawalRequestNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		disbursements, err := stores.Withdrawals.ListDisbursements(ctx, request.ID)
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		if disbursements == nil {
			disbursements = []*core.WithdrawalDisbursement{}
		}

		render.JSON(w, &views.WithdrawalRequest{
			WithdrawalRequest: request,
			Disbursements:     disbursements,
		})
	}
}

func listEpochsHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params pageParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		epochs, err := stores.Withdrawals.ListEpochs(r.Context(), params.Offset, pageLimit(params.Limit))
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, epochs, params.Fields)
	}
}
