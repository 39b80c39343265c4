package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"tickerfeed/internal/model"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Ticker     TickerConfig
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Server     ServerConfig
	Log        LogConfig
}

// TickerConfig defines the refresh cycle settings.
type TickerConfig struct {
	IntervalMS  int      `mapstructure:"interval_ms"`
	DefaultFiat string   `mapstructure:"default_fiat"`
	Coins       []string `mapstructure:"coins"`
}

// MarketDataConfig defines the market-data provider settings.
type MarketDataConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	Limit     int    `mapstructure:"limit"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig defines the logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Interval returns the refresh period.
func (c TickerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Timeout returns the per-request timeout of the market-data client.
func (c MarketDataConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ticker.interval_ms", 180000)
	v.SetDefault("ticker.default_fiat", model.DefaultFiat)
	v.SetDefault("ticker.coins", []string{})
	v.SetDefault("market_data.provider", "coinmarketcap")
	v.SetDefault("market_data.base_url", "https://api.coinmarketcap.com/v1/ticker/")
	v.SetDefault("market_data.timeout_ms", 10000)
	v.SetDefault("market_data.limit", 0)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path is loaded into the environment first when present;
// a missing config.yaml leaves the defaults in place.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}

	err = config.Validate()
	return config, err
}

// Validate checks the values that the refresher and client cannot run without.
func (c Config) Validate() error {
	if c.Ticker.IntervalMS <= 0 {
		return fmt.Errorf("ticker.interval_ms must be positive, got %d", c.Ticker.IntervalMS)
	}
	if _, err := model.NormalizeFiat(c.Ticker.DefaultFiat); err != nil {
		return fmt.Errorf("ticker.default_fiat: %w", err)
	}
	if c.MarketData.Provider == "" {
		return errors.New("market_data.provider is required")
	}
	if c.MarketData.TimeoutMS < 0 {
		return fmt.Errorf("market_data.timeout_ms must not be negative, got %d", c.MarketData.TimeoutMS)
	}
	return nil
}
