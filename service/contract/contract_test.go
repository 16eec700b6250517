package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"lendex/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	contract, method string
	block            *big.Int
}

type fakeReader struct {
	calls   []call
	outputs map[string][]interface{}
	errs    map[string]error
}

func (f *fakeReader) Call(ctx context.Context, contract, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	f.calls = append(f.calls, call{contract: contract, method: method, block: block})
	if err, ok := f.errs[method]; ok {
		return nil, err
	}

	return f.outputs[method], nil
}

func TestCreditLine(t *testing.T) {
	reader := &fakeReader{outputs: map[string][]interface{}{
		"borrower":            {common.HexToAddress("0x00000000000000000000000000000000000000AB")},
		"balance":             {big.NewInt(5000)},
		"interestApr":         {big.NewInt(130000000000000000)},
		"interestAccruedAsOf": {big.NewInt(1)},
		"paymentPeriodInDays": {big.NewInt(30)},
		"termInDays":          {big.NewInt(365)},
		"nextDueTime":         {big.NewInt(2)},
		"limit":               {big.NewInt(10000)},
		"interestOwed":        {big.NewInt(3)},
		"termEndTime":         {big.NewInt(4)},
		"lastFullPaymentTime": {big.NewInt(5)},
		"lateFeeApr":          {big.NewInt(0)},
	}}

	s := New(reader, core.Contracts{})
	state, err := s.CreditLine(context.Background(), "0xline", 77)
	require.Nil(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000ab", state.Borrower)
	assert.Equal(t, "5000", state.Balance.String())
	assert.Equal(t, "130000000000000000", state.InterestApr.String())
	assert.Equal(t, int64(30), state.PaymentPeriodInDays)
	assert.Equal(t, "10000", state.Limit.String())

	for _, c := range reader.calls {
		assert.Equal(t, "0xline", c.contract)
		assert.Equal(t, int64(77), c.block.Int64())
	}
}

func TestMaxLimitRevert(t *testing.T) {
	reader := &fakeReader{errs: map[string]error{"maxLimit": core.ErrCallReverted}}
	_, err := New(reader, core.Contracts{}).MaxLimit(context.Background(), "0xline", 0)
	assert.True(t, errors.Is(err, core.ErrCallReverted))
	assert.Nil(t, reader.calls[0].block)
}

func TestTranche(t *testing.T) {
	reader := &fakeReader{outputs: map[string][]interface{}{
		"getTranche": {big.NewInt(2), big.NewInt(1000), big.NewInt(1), big.NewInt(2), big.NewInt(99)},
	}}

	s := New(reader, core.Contracts{})
	tranche, err := s.Tranche(context.Background(), "0xpool", 2, 10)
	require.Nil(t, err)
	assert.Equal(t, "1000", tranche.PrincipalDeposited.String())
	assert.Equal(t, int64(99), tranche.LockedUntil)

	_, err = s.Tranche(context.Background(), "0xpool", 3, 10)
	assert.True(t, errors.Is(err, core.ErrMalformedEvent))
}

func TestReserveFeePercent(t *testing.T) {
	reader := &fakeReader{outputs: map[string][]interface{}{"getNumber": {big.NewInt(10)}}}
	s := New(reader, core.Contracts{Config: "0xconfig"})
	fee, err := s.ReserveFeePercent(context.Background(), 1)
	require.Nil(t, err)
	assert.Equal(t, "10", fee.String())
	assert.Equal(t, "0xconfig", reader.calls[0].contract)
}

func TestSeniorPool(t *testing.T) {
	reader := &fakeReader{outputs: map[string][]interface{}{
		"sharePrice":            {big.NewInt(1000000000000000000)},
		"assets":                {big.NewInt(500)},
		"totalLoansOutstanding": {big.NewInt(400)},
		"totalSupply":           {big.NewInt(450)},
	}}

	s := New(reader, core.Contracts{SeniorPool: "0xsenior", Fidu: "0xfidu"})
	state, err := s.SeniorPool(context.Background(), 5)
	require.Nil(t, err)
	assert.Equal(t, "500", state.Assets.String())
	assert.Equal(t, "450", state.TotalShares.String())
	assert.Equal(t, "0xfidu", reader.calls[len(reader.calls)-1].contract)

	t.Run("without fidu", func(t *testing.T) {
		_, err := New(reader, core.Contracts{SeniorPool: "0xsenior"}).SeniorPool(context.Background(), 5)
		assert.NotNil(t, err)
	})
}
