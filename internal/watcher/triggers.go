package watcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/models"
)

// TriggerThresholdPct is the engine-wide percentage threshold for the
// intraday, gap, and generic price-change triggers.
const TriggerThresholdPct = 5

var triggerThreshold = decimal.NewFromInt(TriggerThresholdPct)

// StopLossTriggered uses a non-strict boundary: a price exactly equal to
// the stop loss fires.
func StopLossTriggered(price, stopLoss decimal.Decimal) bool {
	return price.LessThanOrEqual(stopLoss)
}

// ChangePercent returns (newPrice - oldPrice) / oldPrice * 100.
// The caller guarantees oldPrice is non-zero.
func ChangePercent(newPrice, oldPrice decimal.Decimal) decimal.Decimal {
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100))
}

// ExceedsThreshold compares the absolute percentage against the engine
// threshold, non-strict.
func ExceedsThreshold(pct decimal.Decimal) bool {
	return pct.Abs().GreaterThanOrEqual(triggerThreshold)
}

func intradayReason(pct decimal.Decimal) string {
	return fmt.Sprintf("Intraday price changed by %s%%", pct.StringFixed(2))
}

func gapReason(pct decimal.Decimal) string {
	return fmt.Sprintf("Open vs previous close gap: %s%%", pct.StringFixed(2))
}

func changeReason(pct decimal.Decimal) string {
	return fmt.Sprintf("Price changed by %s%%", pct.StringFixed(2))
}

// volatilityEval is the outcome of one volatility-sweep evaluation for a
// single (user, symbol).
type volatilityEval struct {
	// Seeded means this observation only recorded day context; no
	// triggers were evaluated.
	Seeded bool

	// Snapshot to store back into the tracker.
	Snapshot models.PriceSnapshot

	DailyChange  decimal.Decimal
	GapChange    decimal.Decimal
	FireIntraday bool
	FireGap      bool
}

// evaluateVolatility applies the seeding/day-boundary rules to one fresh
// risk quote.
//
// The fetch is a seed when there is no prior snapshot, the prior lacks day
// context (including the zero-denominator case, where open or previous
// close is zero), or the prior was observed on a different calendar day.
// Otherwise daily and gap changes are computed against the carried-forward
// open/previous close, which stay fixed intra-day.
func evaluateVolatility(prior models.PriceSnapshot, hadPrior bool, q models.RiskQuote, now time.Time) volatilityEval {
	if !hadPrior || !prior.HasDayContext() || !models.SameCalendarDay(now, prior.Time) {
		return volatilityEval{
			Seeded: true,
			Snapshot: models.PriceSnapshot{
				Price:         q.LastPrice,
				OpenPrice:     q.OpenPrice,
				PreviousClose: q.PreviousClose,
				Time:          now,
			},
		}
	}

	daily := ChangePercent(q.LastPrice, prior.OpenPrice)
	gap := ChangePercent(prior.OpenPrice, prior.PreviousClose)

	return volatilityEval{
		Snapshot: models.PriceSnapshot{
			Price:         q.LastPrice,
			OpenPrice:     prior.OpenPrice,
			PreviousClose: prior.PreviousClose,
			Time:          now,
		},
		DailyChange:  daily,
		GapChange:    gap,
		FireIntraday: ExceedsThreshold(daily),
		FireGap:      ExceedsThreshold(gap),
	}
}
