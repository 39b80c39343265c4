package marketdata

import (
	"errors"
	"fmt"
	"log/slog"
	"tickerfeed/internal/config"
)

// ErrUnknownProvider is returned by NewClient for unsupported provider names.
var ErrUnknownProvider = errors.New("unknown market data provider")

// NewClient creates a new market-data client based on the configured provider.
func NewClient(logger *slog.Logger, cfg config.MarketDataConfig) (Client, error) {
	switch cfg.Provider {
	case "coinmarketcap":
		return NewCoinMarketCapClient(logger, cfg.BaseURL, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
