package cmd

import (
	"context"
	"errors"

	"lendex/worker"
	"lendex/worker/indexer"
	metadataworker "lendex/worker/metadata"
	"lendex/worker/syncer"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run the log syncer, the indexer and the metadata warmer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signal.WithContext(cmd.Context())
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		db := provideDatabase()
		defer db.Close()

		client := provideChainClient(ctx)
		eventStore := provideEventStore(db)
		entityStore := provideEntityStore(db)
		contractService := provideContractService(client)

		workers := []worker.Worker{
			syncer.New(syncer.Config{
				StartBlock:    cfg.Chain.StartBlock,
				Confirmations: cfg.Chain.Confirmations,
				BatchSize:     cfg.Chain.BatchSize,
			}, client, eventStore, provideCheckpoint(db)),
			indexer.New(indexer.Config{
				Contracts: cfg.Contracts,
				Protocol:  cfg.Protocol,
			}, eventStore, entityStore, contractService),
		}

		if metadataService := provideMetadataService(); metadataService != nil {
			workers = append(workers, metadataworker.New(cfg.CMS.WarmSchedule, metadataService))
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
