package watcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"portfolio_sentinel/internal/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestStopLossBoundary(t *testing.T) {
	stop := d(150)

	assert.True(t, StopLossTriggered(d(149), stop))
	assert.True(t, StopLossTriggered(d(150), stop), "price exactly equal to stop loss must fire")
	assert.False(t, StopLossTriggered(d(150.01), stop))
}

func TestChangePercent(t *testing.T) {
	pct := ChangePercent(d(106), d(100))
	assert.Equal(t, "6.00", pct.StringFixed(2))

	pct = ChangePercent(d(94), d(100))
	assert.Equal(t, "-6.00", pct.StringFixed(2))

	pct = ChangePercent(d(100), d(100))
	assert.True(t, pct.IsZero())
}

func TestExceedsThreshold(t *testing.T) {
	assert.True(t, ExceedsThreshold(d(5)), "threshold comparison is non-strict")
	assert.True(t, ExceedsThreshold(d(-5)))
	assert.True(t, ExceedsThreshold(d(12.3)))
	assert.False(t, ExceedsThreshold(d(4.99)))
	assert.False(t, ExceedsThreshold(d(-4.99)))
}

func TestReasonFormatting(t *testing.T) {
	assert.Equal(t, "Intraday price changed by 6.00%", intradayReason(d(6)))
	assert.Equal(t, "Open vs previous close gap: 4.17%", gapReason(ChangePercent(d(100), d(96))))
	assert.Equal(t, "Price changed by -5.50%", changeReason(d(-5.5)))
}

func TestEvaluateVolatilitySeedsFirstObservation(t *testing.T) {
	q := models.RiskQuote{LastPrice: d(106), OpenPrice: d(100), PreviousClose: d(96)}

	eval := evaluateVolatility(models.PriceSnapshot{}, false, q, time.Now())

	assert.True(t, eval.Seeded)
	assert.Equal(t, "106", eval.Snapshot.Price.String())
	assert.Equal(t, "100", eval.Snapshot.OpenPrice.String())
	assert.Equal(t, "96", eval.Snapshot.PreviousClose.String())
	assert.False(t, eval.FireIntraday)
	assert.False(t, eval.FireGap)
}

func TestEvaluateVolatilityDayBoundaryReseeds(t *testing.T) {
	now := time.Now()
	prior := models.PriceSnapshot{
		Price:         d(100),
		OpenPrice:     d(90),
		PreviousClose: d(88),
		Time:          now.AddDate(0, 0, -1),
	}
	q := models.RiskQuote{LastPrice: d(106), OpenPrice: d(100), PreviousClose: d(96)}

	eval := evaluateVolatility(prior, true, q, now)

	assert.True(t, eval.Seeded, "a snapshot from yesterday must re-seed, not compare")
	assert.Equal(t, "100", eval.Snapshot.OpenPrice.String(), "day context comes from the fresh quote")
}

func TestEvaluateVolatilityIntradayFires(t *testing.T) {
	now := time.Now()
	prior := models.PriceSnapshot{
		Price:         d(100),
		OpenPrice:     d(100),
		PreviousClose: d(96),
		Time:          now.Add(-time.Hour),
	}
	q := models.RiskQuote{LastPrice: d(106), OpenPrice: d(101), PreviousClose: d(97)}

	eval := evaluateVolatility(prior, true, q, now)

	assert.False(t, eval.Seeded)
	assert.True(t, eval.FireIntraday)
	assert.Equal(t, "6.00", eval.DailyChange.StringFixed(2))
	// Gap is 100 vs 96: about 4.17%, below threshold.
	assert.False(t, eval.FireGap)
	assert.Equal(t, "4.17", eval.GapChange.StringFixed(2))

	// Open and previous close are carried forward, not refreshed intra-day.
	assert.Equal(t, "100", eval.Snapshot.OpenPrice.String())
	assert.Equal(t, "96", eval.Snapshot.PreviousClose.String())
	assert.Equal(t, "106", eval.Snapshot.Price.String())
}

func TestEvaluateVolatilityGapFires(t *testing.T) {
	now := time.Now()
	prior := models.PriceSnapshot{
		Price:         d(106),
		OpenPrice:     d(106),
		PreviousClose: d(100),
		Time:          now.Add(-time.Hour),
	}
	q := models.RiskQuote{LastPrice: d(106), OpenPrice: d(106), PreviousClose: d(100)}

	eval := evaluateVolatility(prior, true, q, now)

	assert.False(t, eval.Seeded)
	assert.False(t, eval.FireIntraday)
	assert.True(t, eval.FireGap)
	assert.Equal(t, "6.00", eval.GapChange.StringFixed(2))
}

func TestEvaluateVolatilityZeroDenominatorSeeds(t *testing.T) {
	now := time.Now()
	prior := models.PriceSnapshot{
		Price:         d(100),
		OpenPrice:     decimal.Zero,
		PreviousClose: d(96),
		Time:          now.Add(-time.Hour),
	}
	q := models.RiskQuote{LastPrice: d(106), OpenPrice: d(100), PreviousClose: d(96)}

	eval := evaluateVolatility(prior, true, q, now)

	assert.True(t, eval.Seeded, "zero open must never be divided by")
}
