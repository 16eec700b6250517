package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lendex/core"
	"lendex/handler/param"
	"lendex/handler/render"
	"lendex/handler/views"

	"github.com/fox-one/pkg/logger"
)

type pageParams struct {
	Offset int    `json:"offset" valid:"range(0|1000000)"`
	Limit  int    `json:"limit" valid:"range(0|500)"`
	Fields string `json:"fields"`
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return 50
	}

	return limit
}

func creditLineView(ctx context.Context, stores Stores, services Services, id string) (*views.CreditLine, error) {
	line, err := stores.CreditLines.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	lateness, err := services.CreditLines.Lateness(ctx, line, time.Now())
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warnln("creditlines.Lateness", id)
	}

	return views.NewCreditLine(line, lateness), nil
}

func poolView(ctx context.Context, stores Stores, services Services, pool *core.TranchedPool, detail bool) (*views.Pool, error) {
	view := &views.Pool{
		TranchedPool: pool,
		Metadata:     views.NewMetadata(metadata(ctx, services, pool.ID)),
	}

	if !detail {
		return view, nil
	}

	line, err := creditLineView(ctx, stores, services, pool.CreditLine)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	view.CreditLineView = line
	if view.Tranches, err = stores.Pools.ListTranches(ctx, pool.ID); err != nil {
		return nil, err
	}

	if view.Schedule, err = stores.Pools.ListSchedule(ctx, pool.ID); err != nil {
		return nil, err
	}

	return view, nil
}

func listPoolsHandler(stores Stores, services Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Borrower string `json:"borrower"`
			Offset   int    `json:"offset" valid:"range(0|1000000)"`
			Limit    int    `json:"limit" valid:"range(0|500)"`
			Fields   string `json:"fields"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		pools, err := stores.Pools.List(ctx, core.ListPoolsQuery{
			Borrower: core.NormalizeAddress(params.Borrower),
			Offset:   params.Offset,
			Limit:    pageLimit(params.Limit),
		})
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		items := make([]*views.Pool, 0, len(pools))
		for _, pool := range pools {
			view, err := poolView(ctx, stores, services, pool, false)
			if err != nil {
				render.InternalError(w, r, err)
				return
			}

			items = append(items, view)
		}

		render.Fields(w, items, params.Fields)
	}
}

func findPoolHandler(stores Stores, services Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pool, err := stores.Pools.Find(ctx, idParam(r))
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrPoolNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		view, err := poolView(ctx, stores, services, pool, true)
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, view, r.URL.Query().Get("fields"))
	}
}

func findCallableLoanHandler(stores Stores, services Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		loan, err := stores.CallableLoans.Find(ctx, idParam(r))
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrCallableLoanNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		schedule, err := stores.Pools.ListSchedule(ctx, loan.ID)
		if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, &views.CallableLoan{
			CallableLoan: loan,
			Metadata:     views.NewMetadata(metadata(ctx, services, loan.ID)),
			Schedule:     schedule,
		}, r.URL.Query().Get("fields"))
	}
}

func findCreditLineHandler(stores Stores, services Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := creditLineView(r.Context(), stores, services, idParam(r))
		if errors.Is(err, core.ErrNotFound) {
			render.NotFound(w, core.ErrCreditLineNotFound, err)
			return
		} else if err != nil {
			render.InternalError(w, r, err)
			return
		}

		render.Fields(w, view, r.URL.Query().Get("fields"))
	}
}
