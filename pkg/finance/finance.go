package finance

import (
	"github.com/shopspring/decimal"
)

const (
	// Precision of ratios
	Precision int32 = 18
	// SecondsPerDay seconds per day
	SecondsPerDay int64 = 86400
)

var (
	// SecondsPerYear seconds per 365 days year
	SecondsPerYear = decimal.NewFromInt(365 * SecondsPerDay)
	// FiduMantissa 1e18, fidu and apr scale
	FiduMantissa = decimal.New(1, 18)
	// UsdcToFidu 1e12, usdc (6 decimals) to fidu (18 decimals)
	UsdcToFidu = decimal.New(1, 12)
	// DustThreshold fidu remainders at or below are swept to zero
	DustThreshold = decimal.New(1, 12)

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// AprDecimal apr scaled by 1e18 as a plain ratio
func AprDecimal(apr decimal.Decimal) decimal.Decimal {
	return apr.Shift(-18)
}

// EstimatedLeverageRatio (totalAssets - juniorContribution) / juniorContribution,
// defaultRatio when there is no junior contribution
func EstimatedLeverageRatio(juniorContribution, totalAssets, defaultRatio decimal.Decimal) decimal.Decimal {
	if !juniorContribution.IsPositive() {
		return defaultRatio
	}

	return totalAssets.Sub(juniorContribution).DivRound(juniorContribution, Precision)
}

// JuniorAPYInput inputs of the junior apy estimate.
// Percent fields are scaled by 100, 20 means 20%
type JuniorAPYInput struct {
	IsV1StyleDeal      bool
	Balance            decimal.Decimal
	Limit              decimal.Decimal
	MaxLimit           decimal.Decimal
	InterestAprDecimal decimal.Decimal
	LeverageRatio      decimal.Decimal
	JuniorFeePercent   decimal.Decimal
	ReserveFeePercent  decimal.Decimal
}

// EstimateJuniorAPY estimated junior tranche apy, in percent.
// v1 style deals earn the flat credit line apr
func EstimateJuniorAPY(in JuniorAPYInput) decimal.Decimal {
	if in.IsV1StyleDeal {
		return in.InterestAprDecimal
	}

	balance := in.Balance
	if !balance.IsPositive() {
		balance = in.Limit
	}

	if !balance.IsPositive() {
		balance = in.MaxLimit
	}

	if !balance.IsPositive() {
		return decimal.Zero
	}

	leverage := in.LeverageRatio
	seniorFraction := leverage.DivRound(one.Add(leverage), Precision)
	juniorFraction := one.DivRound(one.Add(leverage), Precision)
	if !juniorFraction.IsPositive() {
		return decimal.Zero
	}

	interest := balance.Mul(in.InterestAprDecimal)
	grossSeniorInterest := interest.Mul(seniorFraction)
	grossJuniorInterest := interest.Mul(juniorFraction)
	juniorFee := grossSeniorInterest.Mul(in.JuniorFeePercent).Div(hundred)
	juniorReserveFeeOwed := grossJuniorInterest.Mul(in.ReserveFeePercent).Div(hundred)
	netJuniorInterest := grossJuniorInterest.Add(juniorFee).Sub(juniorReserveFeeOwed)

	return netJuniorInterest.DivRound(balance.Mul(juniorFraction), Precision).Mul(hundred)
}

// ProRata total * part / whole, truncated to an integer, zero when whole is zero
func ProRata(total, part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}

	q, _ := total.Mul(part).QuoRem(whole, 0)
	return q
}

// SweepDust remaining fidu at or below the dust threshold becomes zero
func SweepDust(remaining decimal.Decimal) decimal.Decimal {
	if remaining.LessThanOrEqual(DustThreshold) {
		return decimal.Zero
	}

	return remaining
}

// FiduPrice usdc amount * 1e12 * 1e18 / shares, false when shares is zero
func FiduPrice(usdcAmount, shares decimal.Decimal) (decimal.Decimal, bool) {
	if !shares.IsPositive() {
		return decimal.Zero, false
	}

	q, _ := usdcAmount.Mul(UsdcToFidu).Mul(FiduMantissa).QuoRem(shares, 0)
	return q, true
}

// ReserveFeePercent 100 / denominator, zero when the denominator is unset
func ReserveFeePercent(denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}

	return hundred.DivRound(denominator, Precision)
}
