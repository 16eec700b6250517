package number

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FromBig integer decimal of b, zero for nil
func FromBig(b *big.Int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(b, 0)
}

// Block block number argument, nil for latest
func Block(n uint64) *big.Int {
	if n == 0 {
		return nil
	}

	return new(big.Int).SetUint64(n)
}
