package marketdata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickerfeed/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCoinMarketCapClient_GetTickers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "EUR", query.Get("convert"))
		assert.Equal(t, "0", query.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": "bitcoin", "symbol": "BTC", "price_usd": "6512.3", "price_btc": "1.0", "price_eur": "5601.88"},
			{"id": "ethereum", "symbol": "ETH", "price_usd": "455.1", "price_btc": "0.0698", "price_eur": "391.4"}
		]`)
	}))
	defer server.Close()

	client := NewCoinMarketCapClient(testLogger(), server.URL, time.Second)
	ticks, err := client.GetTickers(context.Background(), TickerQuery{Convert: "EUR"})

	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, "BTC", ticks[0].Symbol)
	assert.Equal(t, "1.0", ticks[0].PriceBTC)

	price, ok := ticks[1].FiatPrice("EUR")
	assert.True(t, ok)
	assert.Equal(t, "391.4", price)
}

func TestCoinMarketCapClient_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewCoinMarketCapClient(testLogger(), server.URL, time.Second)
		_, err := client.GetTickers(context.Background(), TickerQuery{Convert: "USD"})
		assert.ErrorContains(t, err, "429")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"error": "not a list"}`)
		}))
		defer server.Close()

		client := NewCoinMarketCapClient(testLogger(), server.URL, time.Second)
		_, err := client.GetTickers(context.Background(), TickerQuery{Convert: "USD"})
		assert.ErrorContains(t, err, "failed to decode response")
	})

	t.Run("cancelled context", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewCoinMarketCapClient(testLogger(), server.URL, 0)
		_, err := client.GetTickers(ctx, TickerQuery{Convert: "USD"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(testLogger(), config.MarketDataConfig{Provider: "coinmarketcap"})
	require.NoError(t, err)
	assert.Equal(t, "coinmarketcap", client.GetName())

	_, err = NewClient(testLogger(), config.MarketDataConfig{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
