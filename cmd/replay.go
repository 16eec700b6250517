package cmd

import (
	"encoding/json"
	"fmt"

	"lendex/core"
	"lendex/store/memory"
	"lendex/worker/indexer"

	"github.com/spf13/cobra"
)

// replay stored events into an in-memory entity store, nothing is written to the database
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "dry run the indexer over a block range of stored events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, _ := cmd.Flags().GetUint64("from")
		to, _ := cmd.Flags().GetUint64("to")
		if to < from {
			return fmt.Errorf("invalid block range %d-%d", from, to)
		}

		db := provideDatabase()
		defer db.Close()

		events, err := provideEventStore(db).ListRange(ctx, from, to)
		if err != nil {
			return err
		}

		entities := memory.New()
		w := indexer.New(indexer.Config{
			Consumer:  "replay",
			Contracts: cfg.Contracts,
			Protocol:  cfg.Protocol,
		}, memory.NewEventLog(), entities, provideContractService(provideChainClient(ctx)))

		if err := w.Process(ctx, events); err != nil {
			return err
		}

		protocol := &core.Protocol{ID: core.ProtocolID}
		if _, err := entities.Load(ctx, protocol); err != nil {
			return err
		}

		data, _ := json.MarshalIndent(protocol, "", "  ")
		cmd.Printf("replayed %d events in %d commits\n", len(events), entities.Commits())
		cmd.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Uint64("from", 0, "first block")
	replayCmd.Flags().Uint64("to", 0, "last block")
}
