package rest

import (
	"context"
	"errors"
	"net/http"

	"lendex/core"
	"lendex/handler/render"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
)

// Stores read side of the entity store
type Stores struct {
	Pools         core.TranchedPoolStore
	CallableLoans core.CallableLoanStore
	CreditLines   core.CreditLineStore
	SeniorPool    core.SeniorPoolStore
	Withdrawals   core.WithdrawalStore
	Transactions  core.TransactionStore
	Protocol      core.ProtocolStore
	Users         core.UserStore
}

// Services query time computations
type Services struct {
	CreditLines core.CreditLineService
	Metadata    core.MetadataService
}

// Handle handle rest api request
func Handle(stores Stores, services Services) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFound(w, core.ErrUnknown, errors.New("not found"))
	})

	router.Route("/pools", func(r chi.Router) {
		r.Get("/", listPoolsHandler(stores, services))
		r.Get("/{id}", findPoolHandler(stores, services))
	})

	router.Get("/callable-loans/{id}", findCallableLoanHandler(stores, services))
	router.Get("/credit-lines/{id}", findCreditLineHandler(stores, services))
	router.Get("/senior-pool", seniorPoolHandler(stores))
	router.Get("/protocol", protocolHandler(stores))

	router.Route("/withdrawal-requests", func(r chi.Router) {
		r.Get("/", listWithdrawalRequestsHandler(stores))
		r.Get("/{id}", findWithdrawalRequestHandler(stores))
	})

	router.Get("/withdrawal-epochs", listEpochsHandler(stores))
	router.Get("/transactions", listTransactionsHandler(stores))
	router.Get("/users/{id}", findUserHandler(stores))
	router.Get("/users/{id}/transactions", listUserTransactionsHandler(stores))

	return router
}

// metadata cms decoration, failures only drop the decoration
func metadata(ctx context.Context, services Services, id string) *core.DealMetadata {
	if services.Metadata == nil {
		return nil
	}

	m, err := services.Metadata.Find(ctx, id)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			logger.FromContext(ctx).WithError(err).Warnln("metadata.Find", id)
		}

		return nil
	}

	return m
}

func idParam(r *http.Request) string {
	return core.NormalizeAddress(chi.URLParam(r, "id"))
}
