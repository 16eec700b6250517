package creditline

import (
	"context"
	"errors"
	"time"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/fox-one/pkg/logger"
)

type creditLineService struct {
	contracts core.ContractService
	protocols core.ProtocolStore
	graceDays int64
}

// New new credit line service, graceDays is used until the protocol
// lateness grace period has been indexed
func New(contracts core.ContractService, protocols core.ProtocolStore, graceDays int64) core.CreditLineService {
	return &creditLineService{
		contracts: contracts,
		protocols: protocols,
		graceDays: graceDays,
	}
}

func (s *creditLineService) grace(ctx context.Context) int64 {
	protocol, err := s.protocols.Find(ctx)
	if err == nil && protocol.LatenessGraceDays > 0 {
		return protocol.LatenessGraceDays
	}

	return s.graceDays
}

func (s *creditLineService) Lateness(ctx context.Context, line *core.CreditLine, now time.Time) (*core.Lateness, error) {
	grace := s.grace(ctx)
	lateness := &core.Lateness{
		IsLate:      finance.IsLate(line, now),
		IsInDefault: finance.IsInDefault(line, now, grace),
	}

	if line.Version != core.ContractVersionV2_2 || s.contracts == nil {
		return lateness, nil
	}

	late, err := s.contracts.IsLate(ctx, line.ID, 0)
	if err != nil {
		logCallError(ctx, err, "contracts.IsLate")
		return lateness, nil
	}

	lateness.IsLate = late
	within, err := s.contracts.WithinPrincipalGracePeriod(ctx, line.ID, 0)
	if err != nil {
		logCallError(ctx, err, "contracts.WithinPrincipalGracePeriod")
		lateness.IsInDefault = late && lateness.IsInDefault
		return lateness, nil
	}

	lateness.IsInDefault = late && !within
	return lateness, nil
}

// logCallError reverts are expected on lines without the accessor
func logCallError(ctx context.Context, err error, msg string) {
	if !errors.Is(err, core.ErrCallReverted) {
		logger.FromContext(ctx).WithError(err).Errorln(msg)
	}
}
