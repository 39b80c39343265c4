package marketdata

import (
	"context"
	"tickerfeed/internal/model"
)

// TickerQuery holds the parameters of a ticker request.
type TickerQuery struct {
	// Convert is the upper-case fiat code prices are converted to.
	Convert string
	// Limit caps the number of records; zero returns all of them.
	Limit int
}

// Client defines the standard interface for all market-data clients.
type Client interface {
	GetName() string
	GetTickers(ctx context.Context, query TickerQuery) ([]model.RawTick, error)
}
