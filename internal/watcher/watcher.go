// Package watcher is the portfolio monitoring and trigger engine: three
// periodic sweeps over every portfolio, trigger evaluation per symbol, and
// dispatch of sells and risk signals.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"portfolio_sentinel/internal/config"
	"portfolio_sentinel/internal/market"
	"portfolio_sentinel/internal/market/alpaca"
	"portfolio_sentinel/internal/market/finnhub"
	"portfolio_sentinel/internal/models"
	"portfolio_sentinel/internal/notify"
	"portfolio_sentinel/internal/risk"
	"portfolio_sentinel/internal/store"
)

// QuoteSourceFactory resolves the quote source for a portfolio's backend.
// It returns nil when no source is available (quote-only portfolio with no
// provider token configured).
type QuoteSourceFactory func(backend *models.ExecutionBackend) market.QuoteSource

type Watcher struct {
	cfg        *config.Config
	portfolios *store.PortfolioStore
	prices     *store.PriceTracker
	queue      *notify.Queue
	risk       risk.Sender // nil disables the risk sweeps entirely
	sourceFor  QuoteSourceFactory
	log        zerolog.Logger
}

// New wires the engine. riskSender may be nil when no risk API key is
// configured; the stop-loss sweep is unaffected.
func New(cfg *config.Config, portfolios *store.PortfolioStore, prices *store.PriceTracker, queue *notify.Queue, riskSender risk.Sender, log zerolog.Logger) *Watcher {
	var fh *finnhub.Client
	if cfg.FinnhubAPIKey != "" {
		fh = finnhub.NewClient(cfg.FinnhubAPIKey)
	}

	return &Watcher{
		cfg:        cfg,
		portfolios: portfolios,
		prices:     prices,
		queue:      queue,
		risk:       riskSender,
		sourceFor:  defaultSourceFactory(fh),
		log:        log,
	}
}

func defaultSourceFactory(fh *finnhub.Client) QuoteSourceFactory {
	return func(backend *models.ExecutionBackend) market.QuoteSource {
		if backend.IsBrokerage() {
			return alpaca.NewProvider(backend.Key, backend.Secret)
		}
		if fh == nil {
			return nil
		}
		return fh
	}
}

// Run drives the three sweeps at their cadences until the context is
// cancelled. Each sweep makes an immediate pass at startup. A sweep that
// outlives its own period simply overlaps the next instance; per-user
// entry locks keep that safe.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup

	sweeps := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context)
	}{
		{"stop_loss", w.cfg.StopSweepInterval, w.SweepStopLoss},
		{"risk_change", w.cfg.RiskSweepInterval, w.SweepRiskTriggers},
		{"volatility", w.cfg.VolatilitySweepInterval, w.SweepVolatility},
	}

	for _, s := range sweeps {
		wg.Add(1)
		go func(name string, interval time.Duration, fn func(context.Context)) {
			defer wg.Done()
			w.runSweepLoop(ctx, name, interval, fn)
		}(s.name, s.interval, s.fn)
	}

	wg.Wait()
}

func (w *Watcher) runSweepLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	fn(ctx) // immediate pass at startup

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Str("sweep", name).Msg("sweep stopped")
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// SweepStopLoss fetches the last price for every open position, records it,
// and dispatches a sell when the price is at or below the stop loss. A
// single symbol's fetch failure never aborts the rest of the sweep.
func (w *Watcher) SweepStopLoss(ctx context.Context) {
	for _, userID := range w.portfolios.UserIDs() {
		entry, ok := w.portfolios.Get(userID)
		if !ok {
			continue
		}
		src := w.sourceFor(entry.Backend())
		if src == nil {
			continue
		}

		for _, pos := range entry.OpenPositions() {
			price, err := src.GetPrice(ctx, pos.Symbol)
			if err != nil {
				w.log.Warn().Err(err).Str("user", userID).Str("symbol", pos.Symbol).Msg("price fetch failed")
				continue
			}
			if price.IsZero() {
				continue
			}

			w.prices.RecordPrice(userID, pos.Symbol, price, time.Now())
			w.log.Info().
				Str("user", userID).
				Str("symbol", pos.Symbol).
				Str("price", price.String()).
				Str("stop_loss", pos.StopLoss.String()).
				Msg("price update")

			if StopLossTriggered(price, pos.StopLoss) {
				// The claim is atomic per position: overlapping
				// sweeps race here and exactly one dispatches.
				if sold, claimed := entry.MarkSold(pos.Symbol); claimed {
					w.dispatchSell(ctx, userID, src, sold, price)
				}
			}
		}
	}
}

// SweepRiskTriggers evaluates the generic price-change trigger: percentage
// move against whatever price was last recorded, day context not required.
func (w *Watcher) SweepRiskTriggers(ctx context.Context) {
	if w.risk == nil {
		return
	}

	for _, userID := range w.portfolios.UserIDs() {
		entry, ok := w.portfolios.Get(userID)
		if !ok {
			continue
		}
		src := w.sourceFor(entry.Backend())
		if src == nil {
			continue
		}

		for _, pos := range entry.OpenPositions() {
			newPrice, err := src.GetPrice(ctx, pos.Symbol)
			if err != nil {
				w.log.Warn().Err(err).Str("user", userID).Str("symbol", pos.Symbol).Msg("price fetch failed")
				continue
			}
			if newPrice.IsZero() {
				continue
			}

			// First observation compares against itself: 0%, never fires.
			oldPrice := newPrice
			if prior, found := w.prices.Lookup(userID, pos.Symbol); found && !prior.Price.IsZero() {
				oldPrice = prior.Price
			}

			w.prices.RecordPrice(userID, pos.Symbol, newPrice, time.Now())

			pct := ChangePercent(newPrice, oldPrice)
			if ExceedsThreshold(pct) {
				w.sendRiskSignal(ctx, userID, pos.Symbol, changeReason(pct), newPrice)
			}
		}
	}
}

// SweepVolatility fetches full day-context quotes and evaluates the
// intraday and opening-gap triggers, seeding or re-seeding snapshots at day
// boundaries.
func (w *Watcher) SweepVolatility(ctx context.Context) {
	if w.risk == nil {
		return
	}

	w.log.Info().Msg("volatility sweep started")

	for _, userID := range w.portfolios.UserIDs() {
		entry, ok := w.portfolios.Get(userID)
		if !ok {
			continue
		}
		src := w.sourceFor(entry.Backend())
		if src == nil {
			continue
		}

		for _, pos := range entry.OpenPositions() {
			q, err := src.GetRiskQuote(ctx, pos.Symbol)
			if err != nil {
				w.log.Warn().Err(err).Str("user", userID).Str("symbol", pos.Symbol).Msg("risk quote fetch failed")
				continue
			}
			if q == nil || q.LastPrice.IsZero() {
				continue
			}

			now := time.Now()
			prior, hadPrior := w.prices.Lookup(userID, pos.Symbol)
			eval := evaluateVolatility(prior, hadPrior, *q, now)
			w.prices.Store(userID, pos.Symbol, eval.Snapshot)

			if eval.Seeded {
				continue
			}

			if eval.FireIntraday {
				w.sendRiskSignal(ctx, userID, pos.Symbol, intradayReason(eval.DailyChange), q.LastPrice)
			}
			if eval.FireGap {
				w.sendRiskSignal(ctx, userID, pos.Symbol, gapReason(eval.GapChange), q.LastPrice)
			}
		}
	}
}
