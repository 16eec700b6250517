package finance

import (
	"time"

	"lendex/core"

	"github.com/shopspring/decimal"
)

func paymentReference(line *core.CreditLine) int64 {
	if line.LastFullPaymentTime > 0 {
		return line.LastFullPaymentTime
	}

	return line.InterestAccruedAsOf
}

// IsLate a line with an outstanding balance and no full payment for more than a payment period
func IsLate(line *core.CreditLine, now time.Time) bool {
	if !line.Balance.IsPositive() || line.PaymentPeriodInDays <= 0 {
		return false
	}

	ref := paymentReference(line)
	if ref <= 0 {
		return false
	}

	return now.Unix()-ref > line.PaymentPeriodInDays*SecondsPerDay
}

// IsInDefault late for more than the payment period plus the grace period
func IsInDefault(line *core.CreditLine, now time.Time, graceDays int64) bool {
	if !IsLate(line, now) {
		return false
	}

	return now.Unix()-paymentReference(line) > (line.PaymentPeriodInDays+graceDays)*SecondsPerDay
}

// Repayment one scheduled period
type Repayment struct {
	Period    int64
	Date      int64
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// RepaymentSchedule interest only periods every periodDays from termStart until
// termEnd, the whole principal is due with the last period
func RepaymentSchedule(principal, aprDecimal decimal.Decimal, termStart, termEnd, periodDays int64) []Repayment {
	if periodDays <= 0 || termEnd <= termStart || !principal.IsPositive() {
		return nil
	}

	step := periodDays * SecondsPerDay
	var (
		schedule []Repayment
		prev     = termStart
	)

	for period := int64(0); prev < termEnd; period++ {
		date := prev + step
		if date > termEnd {
			date = termEnd
		}

		dt := decimal.NewFromInt(date - prev)
		interest := principal.Mul(aprDecimal).Mul(dt).DivRound(SecondsPerYear, Precision).Truncate(0)
		schedule = append(schedule, Repayment{
			Period:    period,
			Date:      date,
			Interest:  interest,
			Principal: decimal.Zero,
		})

		prev = date
	}

	schedule[len(schedule)-1].Principal = principal
	return schedule
}
