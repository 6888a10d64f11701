package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading  TradingConfig  `yaml:"trading"`
	Backtest BacktestConfig `yaml:"backtest"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// TradingConfig controla el loop de paper trading.
type TradingConfig struct {
	Symbols         []string `yaml:"symbols"`
	Strategy        string   `yaml:"strategy"`
	InitialCapital  float64  `yaml:"initial_capital"`
	InvestmentPct   float64  `yaml:"investment_pct"`   // % del capital por operación
	IntervalSeconds int      `yaml:"interval_seconds"` // segundos entre ciclos
	LookbackDays    int      `yaml:"lookback_days"`    // historial entregado a la estrategia
	PidFile         string   `yaml:"pid_file"`
}

// BacktestConfig controla los defaults del subcomando backtest.
type BacktestConfig struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	Interval        string  `yaml:"interval"` // timeframe de las velas: 1d, 4h, 1h...
	SyntheticData   bool    `yaml:"synthetic_data"`
	ForceCloseFinal bool    `yaml:"force_close_final"`
}

// APIConfig contiene el base URL y las credenciales del exchange. La key
// y el secret solo se leen de variables de entorno, nunca del YAML.
type APIConfig struct {
	BinanceBase string `yaml:"binance_base"`
	Key         string `yaml:"-"`
	Secret      string `yaml:"-"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el .env si existe.
// Un archivo inexistente no es error: se usan los defaults. Las variables
// de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// se sigue con defaults
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TradingInterval devuelve el intervalo de ciclo como time.Duration.
func (c *Config) TradingInterval() time.Duration {
	return time.Duration(c.Trading.IntervalSeconds) * time.Second
}

// Validate comprueba rangos y campos obligatorios. Devuelve
// *domain.ConfigurationError en el primer campo inválido.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return &domain.ConfigurationError{Field: "trading.symbols", Reason: "at least one symbol required"}
	}
	for _, s := range c.Trading.Symbols {
		if s == "" {
			return &domain.ConfigurationError{Field: "trading.symbols", Reason: "empty symbol"}
		}
	}
	if c.Trading.InitialCapital <= 0 {
		return &domain.ConfigurationError{Field: "trading.initial_capital", Reason: "must be positive"}
	}
	if c.Trading.InvestmentPct <= 0 || c.Trading.InvestmentPct > 100 {
		return &domain.ConfigurationError{Field: "trading.investment_pct", Reason: "must be in (0, 100]"}
	}
	if c.Trading.IntervalSeconds <= 0 {
		return &domain.ConfigurationError{Field: "trading.interval_seconds", Reason: "must be positive"}
	}
	if c.Backtest.InitialCapital <= 0 {
		return &domain.ConfigurationError{Field: "backtest.initial_capital", Reason: "must be positive"}
	}
	if c.Log.Level != "debug" && c.Log.Level != "info" && c.Log.Level != "warn" && c.Log.Level != "error" {
		return &domain.ConfigurationError{Field: "log.level", Reason: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return &domain.ConfigurationError{Field: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		cfg.API.Secret = v
	}
	if v := os.Getenv("TRADEBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if len(cfg.Trading.Symbols) == 0 {
		cfg.Trading.Symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	}
	if cfg.Trading.Strategy == "" {
		cfg.Trading.Strategy = "sma_cross_9_21"
	}
	if cfg.Trading.InitialCapital <= 0 {
		cfg.Trading.InitialCapital = 1000
	}
	if cfg.Trading.InvestmentPct <= 0 {
		cfg.Trading.InvestmentPct = 10
	}
	if cfg.Trading.IntervalSeconds <= 0 {
		cfg.Trading.IntervalSeconds = 300
	}
	if cfg.Trading.LookbackDays <= 0 {
		cfg.Trading.LookbackDays = 60
	}
	if cfg.Trading.PidFile == "" {
		cfg.Trading.PidFile = "tradebot.pid"
	}
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 1000
	}
	if cfg.Backtest.Interval == "" {
		cfg.Backtest.Interval = "1d"
	}
	if cfg.API.BinanceBase == "" {
		cfg.API.BinanceBase = "https://api.binance.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tradebot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
