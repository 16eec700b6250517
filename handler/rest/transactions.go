package rest

import (
	"errors"
	"net/http"

	"lendex/core"
	"lendex/handler/param"
	"lendex/handler/render"
)

type transactionParams struct {
	Offset   int    `json:"offset" valid:"range(0|1000000)"`
	Limit    int    `json:"limit" valid:"range(0|500)"`
	Fields   string `json:"fields"`
	User     string `json:"user"`
	Loan     string `json:"loan"`
	Category string `json:"category"`
}

func (p *transactionParams) query() core.ListTransactionsQuery {
	return core.ListTransactionsQuery{
		User:     core.NormalizeAddress(p.User),
		Loan:     core.NormalizeAddress(p.Loan),
		Category: core.TransactionCategory(p.Category),
		Offset:   p.Offset,
		Limit:    pageLimit(p.Limit),
	}
}

func listTransactionsHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params transactionParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		transactions, err := stores.Transactions.List(r.Context(), params.query())
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, transactions, params.Fields)
	}
}

func findUserHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := stores.Users.Find(r.Context(), idParam(r))
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrUserNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.JSON(w, user)
	}
}

func listUserTransactionsHandler(stores Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params transactionParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		query := params.query()
		query.User = idParam(r)

		transactions, err := stores.Transactions.List(r.Context(), query)
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, transactions, params.Fields)
	}
}
