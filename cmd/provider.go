package cmd

import (
	"context"

	"lendex/core"
	"lendex/handler/rest"
	"lendex/service/chain"
	"lendex/service/contract"
	"lendex/service/creditline"
	"lendex/service/metadata"
	creditlinestore "lendex/store/creditline"
	"lendex/store/entity"
	"lendex/store/event"
	"lendex/store/pool"
	"lendex/store/protocol"
	"lendex/store/seniorpool"
	"lendex/store/transaction"
	"lendex/store/user"
	"lendex/store/withdrawal"
	"lendex/worker/syncer"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideCheckpoint(db *db.DB) syncer.Checkpoint {
	return syncer.PropertyCheckpoint(providePropertyStore(db))
}

func provideEventStore(db *db.DB) core.EventStore {
	return event.New(db)
}

func provideEntityStore(db *db.DB) core.EntityStore {
	return entity.New(db)
}

func provideStores(db *db.DB) rest.Stores {
	return rest.Stores{
		Pools:         pool.New(db),
		CallableLoans: pool.NewCallableLoans(db),
		CreditLines:   creditlinestore.New(db),
		SeniorPool:    seniorpool.New(db, cfg.Contracts.SeniorPool),
		Withdrawals:   withdrawal.New(db),
		Transactions:  transaction.New(db),
		Protocol:      protocol.New(db),
		Users:         user.Cache(user.New(db), cfg.CMS.CacheTTL),
	}
}

// ------------------service------------------------------------

func provideChainClient(ctx context.Context) *chain.Client {
	backend, err := chain.Dial(ctx, cfg.Chain.Endpoint)
	if err != nil {
		panic(err)
	}

	client, err := chain.New(backend, chain.Config{
		CallTimeout: cfg.Chain.CallTimeout,
		MaxRetries:  cfg.Chain.MaxRetries,
		Contracts:   cfg.Contracts,
	})
	if err != nil {
		panic(err)
	}

	return client
}

func provideContractService(reader core.ChainReader) core.ContractService {
	return contract.New(reader, cfg.Contracts)
}

func provideCreditLineService(contracts core.ContractService, protocols core.ProtocolStore) core.CreditLineService {
	return creditline.New(contracts, protocols, cfg.Protocol.DefaultLatenessGraceDays)
}

func provideMetadataService() core.MetadataService {
	if cfg.CMS.Endpoint == "" {
		return nil
	}

	return metadata.New(cfg.CMS)
}
