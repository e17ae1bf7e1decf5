package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"eth-anchor/internal/anchor"
	"eth-anchor/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
	Venues     VenuesConfig     `mapstructure:"venues"`
	Sampling   SamplingConfig   `mapstructure:"sampling"`
	Anchor     AnchorConfig     `mapstructure:"anchor"`
	CrossCheck CrossCheckConfig `mapstructure:"cross_check"`
	Ratio      RatioConfig      `mapstructure:"ratio"`
	Gate       GateConfig       `mapstructure:"gate"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	TimeZone    string `mapstructure:"time_zone"`
}

// ServerConfig governs the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// VenueConfig captures connectivity for one market-data venue.
type VenueConfig struct {
	Label          string        `mapstructure:"label"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// VenuesConfig names the primary and cross-check venues.
type VenuesConfig struct {
	Advanced VenueConfig `mapstructure:"advanced"`
	Exchange VenueConfig `mapstructure:"exchange"`
}

// SamplingConfig governs the anchor time series.
type SamplingConfig struct {
	Product  string        `mapstructure:"product"`
	Count    int           `mapstructure:"count"`
	Interval time.Duration `mapstructure:"interval"`
}

// AnchorConfig selects the fallback policy per endpoint.
type AnchorConfig struct {
	SnapshotPolicy anchor.FallbackPolicy `mapstructure:"snapshot_policy"`
	SamplePolicy   anchor.FallbackPolicy `mapstructure:"sample_policy"`
}

// CrossCheckConfig tunes the second-venue comparison.
type CrossCheckConfig struct {
	Required    bool    `mapstructure:"required"`
	MinorPct    float64 `mapstructure:"minor_pct"`
	MaterialPct float64 `mapstructure:"material_pct"`
}

// Thresholds converts to the anchor package representation.
func (c CrossCheckConfig) Thresholds() anchor.Thresholds {
	return anchor.Thresholds{MinorPct: c.MinorPct, MaterialPct: c.MaterialPct}
}

// RatioConfig names the two legs of the reported ratio.
type RatioConfig struct {
	Numerator   string `mapstructure:"numerator"`
	Denominator string `mapstructure:"denominator"`
}

// GateConfig protects the simple sampler endpoint. With no token the endpoint
// rejects every request unless Disabled is set.
type GateConfig struct {
	Token    string `mapstructure:"token"`
	Disabled bool   `mapstructure:"disabled"`
}

// AlertingConfig defines alert routing for material discrepancies.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram alert parameters.
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ETHANCHOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ethanchor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.time_zone", "America/Chicago")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("venues.advanced.label", "Coinbase Advanced Trade REST")
	v.SetDefault("venues.advanced.base_url", "https://api.coinbase.com/api/v3/brokerage/market")
	v.SetDefault("venues.advanced.request_timeout", "10s")
	v.SetDefault("venues.advanced.user_agent", "ethanchor/1.0")
	v.SetDefault("venues.exchange.label", "Coinbase Exchange public ticker")
	v.SetDefault("venues.exchange.base_url", "https://api.exchange.coinbase.com")
	v.SetDefault("venues.exchange.request_timeout", "10s")
	v.SetDefault("venues.exchange.user_agent", "ethanchor/1.0")

	v.SetDefault("sampling.product", "ETH-USD")
	v.SetDefault("sampling.count", 3)
	v.SetDefault("sampling.interval", "1s")

	v.SetDefault("anchor.snapshot_policy.kind", string(anchor.PolicyStaleness))
	v.SetDefault("anchor.snapshot_policy.threshold_seconds", 10)
	v.SetDefault("anchor.sample_policy.kind", string(anchor.PolicyAbsence))
	v.SetDefault("anchor.sample_policy.threshold_seconds", 0)

	v.SetDefault("cross_check.required", true)
	v.SetDefault("cross_check.minor_pct", anchor.DefaultThresholds.MinorPct)
	v.SetDefault("cross_check.material_pct", anchor.DefaultThresholds.MaterialPct)

	v.SetDefault("ratio.numerator", "ETH-USD")
	v.SetDefault("ratio.denominator", "BTC-USD")

	v.SetDefault("gate.token", "")
	v.SetDefault("gate.disabled", false)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.bot_token", "")
	v.SetDefault("alerting.telegram.chat_id", "")
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Sampling.Product) == "" {
		return fmt.Errorf("sampling.product must be set")
	}
	if c.Sampling.Count <= 0 {
		return fmt.Errorf("sampling.count must be greater than zero")
	}
	if c.Sampling.Interval < 0 {
		return fmt.Errorf("sampling.interval cannot be negative")
	}
	if err := c.Anchor.SnapshotPolicy.Validate(); err != nil {
		return fmt.Errorf("anchor.snapshot_policy: %w", err)
	}
	if err := c.Anchor.SamplePolicy.Validate(); err != nil {
		return fmt.Errorf("anchor.sample_policy: %w", err)
	}
	if c.CrossCheck.MinorPct < 0 || c.CrossCheck.MaterialPct < 0 {
		return fmt.Errorf("cross_check thresholds cannot be negative")
	}
	if c.CrossCheck.MinorPct > c.CrossCheck.MaterialPct {
		return fmt.Errorf("cross_check.minor_pct must not exceed cross_check.material_pct")
	}
	if c.Ratio.Numerator == "" || c.Ratio.Denominator == "" {
		return fmt.Errorf("ratio.numerator and ratio.denominator must be set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("app.time_zone: %w", err)
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set")
		}
	}
	return nil
}

// Location resolves the zone used for local timestamps.
func (c *Config) Location() (*time.Location, error) {
	if c.App.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.App.TimeZone)
}
