package model

import "strings"

// DefaultCoins is the built-in list of tracked coins.
var DefaultCoins = []TrackedCoin{
	{Key: "BTC"},
	{Key: "ETH"},
	{Key: "BCH"},
	{Key: "LTC"},
	{Key: "XRP"},
	{Key: "DASH"},
	{Key: "ZEC"},
}

// CoinsFromKeys builds a coin list from symbol keys, skipping blanks and
// duplicates. An empty result falls back to DefaultCoins.
func CoinsFromKeys(keys []string) []TrackedCoin {
	seen := make(map[string]struct{}, len(keys))
	coins := make([]TrackedCoin, 0, len(keys))
	for _, key := range keys {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		coins = append(coins, TrackedCoin{Key: key})
	}

	if len(coins) == 0 {
		return append([]TrackedCoin(nil), DefaultCoins...)
	}
	return coins
}
