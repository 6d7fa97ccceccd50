// Package config loads the analyzer configuration from YAML.
package config

import (
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/trend"
	"github.com/rxtech-lab/argo-analysis/internal/version"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata/provider"
	"gopkg.in/yaml.v3"
)

// PolygonAPIKeyEnv overrides provider.polygon_api_key when set.
const PolygonAPIKeyEnv = "POLYGON_API_KEY"

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is the root of the configuration file.
type Config struct {
	Version    string           `yaml:"version" json:"version,omitempty" jsonschema:"title=Version,description=Version of argo-analysis the file was written for"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Provider   ProviderConfig   `yaml:"provider" json:"provider"`
	Period     string           `yaml:"period" json:"period" jsonschema:"title=Period,description=Default lookback period,enum=1d,enum=5d,enum=1mo,enum=3mo,enum=6mo,enum=1y,enum=2y,enum=5y,enum=10y,enum=ytd,enum=max"`
	Indicators IndicatorConfig  `yaml:"indicators" json:"indicators"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Pipeline   PipelineConfig   `yaml:"pipeline" json:"pipeline"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Watch      WatchConfig      `yaml:"watch" json:"watch"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	History    HistoryConfig    `yaml:"history" json:"history"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error" validate:"oneof=debug info warn error"`
}

// ProviderConfig selects the market data source.
type ProviderConfig struct {
	Type          string        `yaml:"type" json:"type" jsonschema:"enum=yahoo,enum=polygon,enum=binance,enum=parquet" validate:"required,oneof=yahoo polygon binance parquet"`
	Interval      string        `yaml:"interval" json:"interval" jsonschema:"enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=1d,enum=1w" validate:"omitempty,oneof=1m 5m 15m 30m 1h 1d 1w"`
	PolygonAPIKey string        `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" validate:"required_if=Type polygon"`
	DataPath      string        `yaml:"data_path" json:"data_path,omitempty" jsonschema:"description=Parquet file or glob for the parquet provider" validate:"required_if=Type parquet"`
	YahooBaseURL  string        `yaml:"yahoo_base_url" json:"yahoo_base_url,omitempty" validate:"omitempty,url"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

// IndicatorConfig holds indicator windows and spans.
type IndicatorConfig struct {
	SMAWindows       []int   `yaml:"sma_windows" json:"sma_windows" validate:"required,dive,gte=1"`
	VolatilityWindow int     `yaml:"volatility_window" json:"volatility_window" validate:"gte=2"`
	RSIPeriod        int     `yaml:"rsi_period" json:"rsi_period" validate:"gte=1"`
	MACDFast         int     `yaml:"macd_fast" json:"macd_fast" validate:"gte=1"`
	MACDSlow         int     `yaml:"macd_slow" json:"macd_slow" validate:"gtfield=MACDFast"`
	MACDSignal       int     `yaml:"macd_signal" json:"macd_signal" validate:"gte=1"`
	BollingerPeriod  int     `yaml:"bollinger_period" json:"bollinger_period" validate:"gte=2"`
	BollingerStdDev  float64 `yaml:"bollinger_stddev" json:"bollinger_stddev" validate:"gt=0"`
	DailyReturn      bool    `yaml:"daily_return" json:"daily_return"`
}

// ClassifierConfig holds the RSI thresholds.
type ClassifierConfig struct {
	Overbought float64 `yaml:"overbought" json:"overbought" jsonschema:"minimum=0,maximum=100" validate:"gte=0,lte=100"`
	Oversold   float64 `yaml:"oversold" json:"oversold" jsonschema:"minimum=0,maximum=100" validate:"gte=0,lte=100,ltfield=Overbought"`
}

// PipelineConfig controls the batch runner.
type PipelineConfig struct {
	Concurrency      int           `yaml:"concurrency" json:"concurrency" jsonschema:"minimum=1,maximum=64" validate:"gte=1,lte=64"`
	ThrottleInterval time.Duration `yaml:"throttle_interval" json:"throttle_interval" validate:"gte=0"`
}

// CacheConfig controls the fetch cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" validate:"required_if=Enabled true"`
	Backend string        `yaml:"backend" json:"backend" jsonschema:"enum=memory,enum=redis" validate:"oneof=memory redis"`
	Redis   RedisConfig   `yaml:"redis" json:"redis,omitempty"`
}

// RedisConfig locates the Redis server of the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr,omitempty" validate:"omitempty,hostname_port"`
	Password string `yaml:"password" json:"password,omitempty"`
	DB       int    `yaml:"db" json:"db,omitempty" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gte=0"`
}

// WatchConfig configures periodic re-analysis.
type WatchConfig struct {
	Schedule string   `yaml:"schedule" json:"schedule" jsonschema:"description=Cron expression or descriptor such as @every 15m"`
	Symbols  []string `yaml:"symbols" json:"symbols"`
	Period   string   `yaml:"period" json:"period,omitempty"`
}

// HistoryConfig configures the assessment history database.
type HistoryConfig struct {
	Path string `yaml:"path" json:"path,omitempty" jsonschema:"description=SQLite file recording every watch and serve run; empty disables history"`
}

// OutputConfig configures report files.
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory,omitempty"`
	Format    string `yaml:"format" json:"format" jsonschema:"enum=text,enum=json" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	params := indicator.DefaultParams()
	thresholds := trend.DefaultThresholds()

	return Config{
		Log: LogConfig{Level: "info"},
		Provider: ProviderConfig{
			Type:     string(provider.ProviderYahoo),
			Interval: string(marketdata.DefaultInterval),
			Timeout:  30 * time.Second,
		},
		Period: string(marketdata.DefaultPeriod),
		Indicators: IndicatorConfig{
			SMAWindows:       params.SMAWindows,
			VolatilityWindow: params.VolatilityWindow,
			RSIPeriod:        params.RSIPeriod,
			MACDFast:         params.MACDFast,
			MACDSlow:         params.MACDSlow,
			MACDSignal:       params.MACDSignal,
			BollingerPeriod:  params.BollingerPeriod,
			BollingerStdDev:  params.BollingerStdDev,
			DailyReturn:      params.DailyReturn,
		},
		Classifier: ClassifierConfig{
			Overbought: thresholds.Overbought,
			Oversold:   thresholds.Oversold,
		},
		Pipeline: PipelineConfig{
			Concurrency:      4,
			ThrottleInterval: 0,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     marketdata.DefaultCacheTTL,
			Backend: CacheBackendMemory,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Watch: WatchConfig{
			Schedule: "@every 15m",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over Default, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv(PolygonAPIKeyEnv); key != "" {
		c.Provider.PolygonAPIKey = key
	}
}

// Validate checks struct tags and the cross-field rules.
func (c Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible config version", err)
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := marketdata.ParsePeriod(c.Period); err != nil {
		return err
	}

	if c.Watch.Period != "" {
		if _, err := marketdata.ParsePeriod(c.Watch.Period); err != nil {
			return err
		}
	}

	if c.Cache.Enabled && c.Cache.Backend == CacheBackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "cache.redis.addr is required by the redis cache backend")
	}

	// the trend decision table reads these two averages
	for _, window := range []int{10, 30} {
		if !slices.Contains(c.Indicators.SMAWindows, window) {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "indicators.sma_windows must include %d", window)
		}
	}

	return c.Classifier.Thresholds().Validate()
}

// SourceConfig converts the provider section for provider.NewSource.
func (p ProviderConfig) SourceConfig() provider.Config {
	return provider.Config{
		Type:          provider.ProviderType(p.Type),
		Interval:      marketdata.Interval(p.Interval),
		PolygonAPIKey: p.PolygonAPIKey,
		DataPath:      p.DataPath,
		YahooBaseURL:  p.YahooBaseURL,
		Timeout:       p.Timeout,
	}
}

// ClientConfig converts the redis section for marketdata.NewRedisClient.
func (r RedisConfig) ClientConfig() marketdata.RedisConfig {
	return marketdata.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB}
}

// Params converts the indicator section for indicator.NewEngine.
func (i IndicatorConfig) Params() indicator.Params {
	return indicator.Params{
		SMAWindows:       slices.Clone(i.SMAWindows),
		VolatilityWindow: i.VolatilityWindow,
		RSIPeriod:        i.RSIPeriod,
		MACDFast:         i.MACDFast,
		MACDSlow:         i.MACDSlow,
		MACDSignal:       i.MACDSignal,
		BollingerPeriod:  i.BollingerPeriod,
		BollingerStdDev:  i.BollingerStdDev,
		DailyReturn:      i.DailyReturn,
	}
}

// Thresholds converts the classifier section for trend.NewClassifier.
func (c ClassifierConfig) Thresholds() trend.Thresholds {
	return trend.Thresholds{Overbought: c.Overbought, Oversold: c.Oversold}
}

// DefaultPeriod returns the parsed top-level period.
func (c Config) DefaultPeriod() marketdata.Period {
	period, err := marketdata.ParsePeriod(c.Period)
	if err != nil {
		return marketdata.DefaultPeriod
	}

	return period
}

// WatchPeriod returns the period of the watch job, falling back to the top-level period.
func (c Config) WatchPeriod() marketdata.Period {
	if c.Watch.Period == "" {
		return c.DefaultPeriod()
	}

	period, err := marketdata.ParsePeriod(c.Watch.Period)
	if err != nil {
		return c.DefaultPeriod()
	}

	return period
}
