package indexer

import (
	"context"
	"errors"
	"time"

	"lendex/core"
	"lendex/pkg/metrics"
	"lendex/worker"

	"github.com/fox-one/pkg/logger"
)

// DefaultConsumer cursor name of the indexer
const DefaultConsumer = "indexer"

type (
	// Config indexer config
	Config struct {
		Consumer  string
		Limit     int
		Contracts core.Contracts
		Protocol  core.ProtocolConfig
	}

	handlerFunc func(ctx context.Context, b *Batch, e *core.Event) error

	// Indexer applies stored events to the entity store, one block at a time
	Indexer struct {
		cfg       Config
		events    core.EventStore
		entities  core.EntityStore
		contracts core.ContractService

		handlers     map[core.ContractKind]map[string]handlerFunc
		loanHandlers map[core.ContractKind]map[string]handlerFunc
	}
)

// New new indexer
func New(
	cfg Config,
	events core.EventStore,
	entities core.EntityStore,
	contracts core.ContractService,
) *Indexer {
	if cfg.Consumer == "" {
		cfg.Consumer = DefaultConsumer
	}

	if cfg.Limit <= 0 {
		cfg.Limit = 500
	}

	cfg.Contracts.Normalize()

	w := &Indexer{
		cfg:       cfg,
		events:    events,
		entities:  entities,
		contracts: contracts,
	}

	w.handlers = map[core.ContractKind]map[string]handlerFunc{
		core.ContractSeniorPool: {
			"DepositMade":            w.handleSeniorPoolDeposit,
			"WithdrawalMade":         w.handleSeniorPoolWithdrawal,
			"InterestCollected":      w.handleInterestCollected,
			"PrincipalCollected":     w.handlePrincipalCollected,
			"ReserveFundsCollected":  w.handleReserveFundsCollected,
			"PrincipalWrittenDown":   w.handlePrincipalWrittenDown,
			"InvestmentMadeInSenior": w.handleInvestmentMade,
			"InvestmentMadeInJunior": w.handleInvestmentMade,
			"WithdrawalRequested":    w.handleWithdrawalRequested,
			"WithdrawalAddedTo":      w.handleWithdrawalAddedTo,
			"WithdrawalCanceled":     w.handleWithdrawalCanceled,
			"EpochEnded":             w.handleEpochEnded,
			"EpochExtended":          w.handleEpochExtended,
		},
		core.ContractStakingRewards: {
			"DepositedAndStaked": w.handleDepositedAndStaked,
		},
		core.ContractConfig: {
			"NumberUpdated": w.handleNumberUpdated,
		},
		core.ContractFactory: {
			"PoolCreated":         w.handlePoolCreated,
			"CallableLoanCreated": w.handleCallableLoanCreated,
			"BorrowerCreated":     w.handleBorrowerCreated,
		},
	}

	w.loanHandlers = map[core.ContractKind]map[string]handlerFunc{
		core.ContractTranchedPool: {
			"DepositMade":        w.handlePoolDeposit,
			"WithdrawalMade":     w.handlePoolWithdrawal,
			"DrawdownMade":       w.handlePoolDrawdown,
			"PaymentApplied":     w.handlePoolPayment,
			"TrancheLocked":      w.handleTrancheLocked,
			"SliceCreated":       w.handleSliceCreated,
			"DrawdownsPaused":    w.handleDrawdownsPaused,
			"DrawdownsUnpaused":  w.handleDrawdownsUnpaused,
			"CreditLineMigrated": w.handleCreditLineMigrated,
			"Paused":             w.handlePoolPaused,
			"Unpaused":           w.handlePoolUnpaused,
		},
		core.ContractCallableLoan: {
			"DepositMade":    w.handleLoanDeposit,
			"WithdrawalMade": w.handleLoanWithdrawal,
			"DrawdownMade":   w.handleLoanDrawdown,
			"PaymentApplied": w.handleLoanPayment,
			"Paused":         w.handleLoanPaused,
			"Unpaused":       w.handleLoanUnpaused,
		},
	}

	return w
}

// Run run worker
func (w *Indexer) Run(ctx context.Context) error {
	return worker.Loop(ctx, "indexer", 100*time.Millisecond, time.Second, w.run)
}

func (w *Indexer) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	cursor, err := w.entities.Cursor(ctx, w.cfg.Consumer)
	if err != nil {
		log.WithError(err).Errorln("entities.Cursor")
		return err
	}

	events, err := w.events.ListAfter(ctx, cursor.BlockNumber, cursor.LogIndex, w.cfg.Limit)
	if err != nil {
		log.WithError(err).Errorln("events.ListAfter")
		return err
	}

	if len(events) == 0 {
		return errors.New("no more events")
	}

	// a full page may end in the middle of a block
	if len(events) == w.cfg.Limit {
		last := events[len(events)-1].BlockNumber
		for len(events) > 0 && events[len(events)-1].BlockNumber == last {
			events = events[:len(events)-1]
		}

		tail, err := w.events.ListBlock(ctx, last)
		if err != nil {
			log.WithError(err).Errorln("events.ListBlock", last)
			return err
		}

		events = append(events, tail...)
	}

	return w.Process(ctx, events)
}

// Process apply events ordered by (block, logIndex), one commit per block.
// ctx is only checked between blocks
func (w *Indexer) Process(ctx context.Context, events []*core.Event) error {
	for len(events) > 0 {
		n := 1
		for n < len(events) && events[n].BlockNumber == events[0].BlockNumber {
			n++
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.ApplyBlock(ctx, events[:n]); err != nil {
			return err
		}

		events = events[n:]
	}

	return nil
}

// ApplyBlock apply the events of one block atomically. Events already
// covered by the cursor are skipped
func (w *Indexer) ApplyBlock(ctx context.Context, events []*core.Event) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	block := events[0].BlockNumber
	log := logger.FromContext(ctx).WithField("block", block)
	ctx = logger.WithContext(ctx, log)

	cursor, err := w.entities.Cursor(ctx, w.cfg.Consumer)
	if err != nil {
		log.WithError(err).Errorln("entities.Cursor")
		return err
	}

	b := newBatch(ctx, w.entities, &w.cfg, block, events[0].BlockTimestamp)
	var last *core.Event
	for _, e := range events {
		if cursor.Covers(e) {
			continue
		}

		if err := w.handle(ctx, b, e); err != nil {
			log.WithError(err).Errorln("handle", e.Name, e.Position())
			return err
		}

		metrics.ObserveEvent(e.Name)
		last = e
	}

	if last == nil {
		return nil
	}

	changes := b.Changeset()
	changes.Cursor = b.cursor(last)
	if err := w.entities.Commit(ctx, changes); err != nil {
		log.WithError(err).Errorln("entities.Commit")
		return err
	}

	metrics.ObserveBlock(block, time.Since(start))
	return nil
}

func (w *Indexer) handle(ctx context.Context, b *Batch, e *core.Event) error {
	kind := e.Contract
	if kind == core.ContractLoan {
		resolved, err := w.resolveLoan(b, e.Address)
		if err != nil {
			return err
		}

		if resolved == "" {
			logger.FromContext(ctx).Debugln("skip event of unknown loan", e.Address, e.Name)
			return nil
		}

		if fn, ok := w.loanHandlers[resolved][e.Name]; ok {
			return fn(ctx, b, e)
		}

		return nil
	}

	if fn, ok := w.handlers[kind][e.Name]; ok {
		return fn(ctx, b, e)
	}

	return nil
}

// resolveLoan kind of a loan address, empty when the factory never created it
func (w *Indexer) resolveLoan(b *Batch, address string) (core.ContractKind, error) {
	protocol, err := b.Protocol()
	if err != nil {
		return "", err
	}

	switch {
	case protocol.TranchedPools.Contains(address):
		return core.ContractTranchedPool, nil
	case protocol.CallableLoans.Contains(address):
		return core.ContractCallableLoan, nil
	default:
		return "", nil
	}
}
