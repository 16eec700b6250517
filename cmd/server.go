package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lendex/handler"
	"lendex/handler/rest"
	"lendex/worker/indexer"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run lendex query server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		stores := provideStores(db)
		contracts := provideContractService(provideChainClient(ctx))
		services := rest.Services{
			CreditLines: provideCreditLineService(contracts, stores.Protocol),
			Metadata:    provideMetadataService(),
		}

		svr := handler.New(rootCmd.Version, provideEntityStore(db), indexer.DefaultConsumer, stores, services)

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		return serve(ctx, fmt.Sprintf(":%d", port), newMux(svr.Handler()))
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 0, "server port, overrides server.port")
}

func newMux(api http.Handler) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)
	mux.Mount("/", api)
	return mux
}

// serve until a termination signal, then shut down gracefully
func serve(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	signal.WithContextFunc(ctx, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("graceful shutdown server failed")
		}

		close(done)
	})

	logrus.Infoln("serve at", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
