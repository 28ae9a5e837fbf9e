package watcher

import (
	"context"

	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/market"
	"portfolio_sentinel/internal/models"
	"portfolio_sentinel/internal/notify"
)

// dispatchSell executes the consequence of a fired stop-loss. The position
// is already marked sold by the caller's claim; a failed order submission
// is logged but does not roll that back, and is never retried.
func (w *Watcher) dispatchSell(ctx context.Context, userID string, src market.QuoteSource, pos models.Position, price decimal.Decimal) {
	qty := pos.Quantity
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}

	placer, ok := src.(market.OrderPlacer)
	if !ok {
		w.log.Info().
			Str("user", userID).
			Str("symbol", pos.Symbol).
			Str("qty", qty.String()).
			Msg("simulated sell")
		w.queue.Enqueue(userID, notify.NewStopLoss(pos.Symbol, price, pos.StopLoss))
		return
	}

	order, err := placer.PlaceSellOrder(ctx, pos.Symbol, qty)
	if err != nil {
		w.log.Error().Err(err).
			Str("user", userID).
			Str("symbol", pos.Symbol).
			Msg("sell submission failed; position remains marked sold")
		return
	}
	w.log.Info().
		Str("user", userID).
		Str("symbol", pos.Symbol).
		Str("order_id", order.ID).
		Str("qty", qty.String()).
		Msg("sell order submitted")
}

// sendRiskSignal delivers one recalculation signal and logs the structured
// result. Failures never affect position state.
func (w *Watcher) sendRiskSignal(ctx context.Context, userID, symbol, reason string, price decimal.Decimal) {
	res := w.risk.Send(ctx, userID, symbol, reason, price)
	if res.Delivered {
		w.log.Info().
			Str("user", userID).
			Str("symbol", symbol).
			Str("reason", reason).
			Msg("risk signal delivered")
		return
	}
	w.log.Error().
		Str("user", userID).
		Str("symbol", symbol).
		Str("reason", reason).
		Str("failure", res.Reason).
		Msg("risk signal failed")
}
