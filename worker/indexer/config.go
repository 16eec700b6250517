package indexer

import (
	"context"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/fox-one/pkg/logger"
)

// handleNumberUpdated track the governance numbers the calculators depend on
func (w *Indexer) handleNumberUpdated(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	index := core.ConfigIndex(r.Int64("index"))
	value := r.Decimal("newValue")
	if err := r.Err(); err != nil {
		return err
	}

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	switch index {
	case core.ConfigLeverageRatio:
		protocol.DefaultLeverageRatio = value.DivRound(finance.FiduMantissa, finance.Precision)
	case core.ConfigReserveDenominator:
		protocol.ReserveDenominator = value.IntPart()
	case core.ConfigLatenessGracePeriodInDays:
		protocol.LatenessGraceDays = value.IntPart()
	default:
		return nil
	}

	logger.FromContext(ctx).Infof("config number %d updated to %s", index, value)
	b.Save(protocol)
	return nil
}
