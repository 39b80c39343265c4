package model

import (
	"encoding/json"
	"math"
	"strings"
)

// TrackedCoin is a coin the application displays, independent of what the
// market-data service returns.
type TrackedCoin struct {
	Key string
}

// RawTick represents one record of a market-data ticker response.
// Fiat prices are keyed by upper-case currency code and only hold
// currencies from the supported set.
type RawTick struct {
	ID         string
	Name       string
	Symbol     string
	PriceBTC   string
	FiatPrices map[string]string
}

// FiatPrice returns the textual price of the tick in the given currency.
func (t RawTick) FiatPrice(code string) (string, bool) {
	price, ok := t.FiatPrices[strings.ToUpper(code)]
	return price, ok
}

// UnmarshalJSON collects the fixed fields and every "price_<code>" field of a
// supported fiat currency. Non-string values (e.g. null) are ignored.
func (t *RawTick) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = RawTick{FiatPrices: make(map[string]string)}
	for name, value := range fields {
		text, ok := value.(string)
		if !ok {
			continue
		}

		switch {
		case name == "id":
			t.ID = text
		case name == "name":
			t.Name = text
		case name == "symbol":
			t.Symbol = text
		case name == "price_btc":
			t.PriceBTC = text
		case strings.HasPrefix(name, "price_"):
			code := strings.ToUpper(strings.TrimPrefix(name, "price_"))
			if IsSupportedFiat(code) {
				t.FiatPrices[code] = text
			}
		}
	}

	return nil
}

// ProjectedTicker is the price of a tracked coin in Bitcoin and in the
// active display currency.
type ProjectedTicker struct {
	Key       string
	PriceBTC  float64
	PriceFiat float64
}

type projectedTickerJSON struct {
	Key       string   `json:"key"`
	PriceBTC  *float64 `json:"priceBtc"`
	PriceFiat *float64 `json:"priceFiat"`
}

// MarshalJSON encodes NaN prices as null.
func (p ProjectedTicker) MarshalJSON() ([]byte, error) {
	return json.Marshal(projectedTickerJSON{
		Key:       p.Key,
		PriceBTC:  finite(p.PriceBTC),
		PriceFiat: finite(p.PriceFiat),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
