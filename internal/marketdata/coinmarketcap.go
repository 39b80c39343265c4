package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"tickerfeed/internal/model"
	"time"
)

// DefaultCoinMarketCapURL is the public v1 ticker endpoint.
const DefaultCoinMarketCapURL = "https://api.coinmarketcap.com/v1/ticker/"

// CoinMarketCapClient implements the Client interface for the CoinMarketCap
// v1 ticker API.
type CoinMarketCapClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

// NewCoinMarketCapClient creates a new CoinMarketCapClient. An empty baseURL
// selects the public endpoint; a zero timeout disables the client timeout.
func NewCoinMarketCapClient(logger *slog.Logger, baseURL string, timeout time.Duration) *CoinMarketCapClient {
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	return &CoinMarketCapClient{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *CoinMarketCapClient) GetName() string {
	return "coinmarketcap"
}

// GetTickers fetches the ticker list converted to query.Convert.
func (c *CoinMarketCapClient) GetTickers(ctx context.Context, query TickerQuery) ([]model.RawTick, error) {
	params := url.Values{}
	if query.Convert != "" {
		params.Set("convert", query.Convert)
	}
	params.Set("limit", strconv.Itoa(query.Limit))

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("CoinMarketCapClient: fetching tickers", "convert", query.Convert, "limit", query.Limit)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned non-200 status: %d", resp.StatusCode)
	}

	var ticks []model.RawTick
	if err := json.NewDecoder(resp.Body).Decode(&ticks); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("CoinMarketCapClient: fetched tickers", "count", len(ticks))

	return ticks, nil
}
