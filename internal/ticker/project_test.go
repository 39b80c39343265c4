package ticker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickerfeed/internal/model"
)

func tick(symbol, btc string, fiat map[string]string) model.RawTick {
	return model.RawTick{Symbol: symbol, PriceBTC: btc, FiatPrices: fiat}
}

func TestProject(t *testing.T) {
	coins := []model.TrackedCoin{{Key: "BTC"}, {Key: "XYZ"}, {Key: "ETH"}, {Key: "LTC"}}
	ticks := []model.RawTick{
		tick("LTC", "0.0133", map[string]string{"EUR": "74.5"}),
		tick("BTC", "1.0", map[string]string{"EUR": "5601.88", "USD": "6512.3"}),
		tick("DOGE", "0.0000004", map[string]string{"EUR": "0.002"}),
		tick("ETH", "0.0698", map[string]string{"EUR": "391.4"}),
		tick("BTC", "1.0", map[string]string{"EUR": "1"}),
	}

	tickers := Project(coins, ticks, "eur")

	assert.Equal(t, []model.ProjectedTicker{
		{Key: "BTC", PriceBTC: 1, PriceFiat: 5601.88},
		{Key: "ETH", PriceBTC: 0.0698, PriceFiat: 391.4},
		{Key: "LTC", PriceBTC: 0.0133, PriceFiat: 74.5},
	}, tickers)
}

func TestProject_UnmatchedCoinIsOmitted(t *testing.T) {
	tickers := Project([]model.TrackedCoin{{Key: "XYZ"}}, []model.RawTick{tick("BTC", "1", nil)}, "USD")

	assert.NotNil(t, tickers)
	assert.Empty(t, tickers)
}

func TestProject_MissingFiatPriceIsNaN(t *testing.T) {
	tickers := Project(
		[]model.TrackedCoin{{Key: "BTC"}},
		[]model.RawTick{tick("BTC", "1.0", map[string]string{"USD": "6512.3"})},
		"eur",
	)

	require.Len(t, tickers, 1)
	assert.Equal(t, 1.0, tickers[0].PriceBTC)
	assert.True(t, math.IsNaN(tickers[0].PriceFiat))
}

func TestProject_MalformedPriceIsNaN(t *testing.T) {
	tickers := Project(
		[]model.TrackedCoin{{Key: "BTC"}},
		[]model.RawTick{tick("BTC", "n/a", map[string]string{"USD": " 6512.3 "})},
		"USD",
	)

	require.Len(t, tickers, 1)
	assert.True(t, math.IsNaN(tickers[0].PriceBTC))
	assert.Equal(t, 6512.3, tickers[0].PriceFiat)
}

func TestProject_OutOfRangePriceIsInf(t *testing.T) {
	tickers := Project(
		[]model.TrackedCoin{{Key: "BTC"}},
		[]model.RawTick{tick("BTC", "1e400", map[string]string{"USD": "-1e400"})},
		"USD",
	)

	require.Len(t, tickers, 1)
	assert.True(t, math.IsInf(tickers[0].PriceBTC, 1))
	assert.True(t, math.IsInf(tickers[0].PriceFiat, -1))
}
