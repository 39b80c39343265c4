package ticker

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"tickerfeed/internal/model"
)

// Project matches ticks to the tracked coins and extracts the Bitcoin price
// and the price in fiat. The result follows the order of coins; coins
// without a tick are left out, and when several ticks share a symbol the
// first one is used. Missing or malformed prices become NaN.
func Project(coins []model.TrackedCoin, ticks []model.RawTick, fiat string) []model.ProjectedTicker {
	bySymbol := make(map[string]model.RawTick, len(ticks))
	for _, tick := range ticks {
		if _, ok := bySymbol[tick.Symbol]; !ok {
			bySymbol[tick.Symbol] = tick
		}
	}

	tickers := make([]model.ProjectedTicker, 0, len(coins))
	for _, coin := range coins {
		tick, ok := bySymbol[coin.Key]
		if !ok {
			continue
		}

		fiatPrice, _ := tick.FiatPrice(fiat)
		tickers = append(tickers, model.ProjectedTicker{
			Key:       coin.Key,
			PriceBTC:  parsePrice(tick.PriceBTC),
			PriceFiat: parsePrice(fiatPrice),
		})
	}

	return tickers
}

// parsePrice keeps ±Inf for out-of-range values.
func parsePrice(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}
