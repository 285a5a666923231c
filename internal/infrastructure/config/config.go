package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STOCKLEDGER_DATABASE_PASSWORD
const EnvPrefix = "STOCKLEDGER"

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Telemetry   TelemetryConfig
	Reservation ReservationConfig
	Ledger      LedgerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. When disabled, idempotency
// keys are kept in process memory.
type RedisConfig struct {
	Enabled   bool
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// JWTConfig holds bearer token settings. With auth disabled every request
// runs as the anonymous actor.
type JWTConfig struct {
	Enabled bool
	Secret  string
	Issuer  string
	TTL     time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64
	IdempotencyTTL  time.Duration
	TrustedProxies  []string
	CORSOrigins     []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // development only
	LogsEnabled       bool // export zap logs over OTLP
	DBTraceEnabled    bool

	// Pyroscope continuous profiling, independent of the OTLP switch above
	ProfilingEnabled           bool
	ProfilingServerAddress     string // e.g. "http://localhost:4040"
	ProfilingBasicAuthUser     string
	ProfilingBasicAuthPassword string
	ProfilingSpanProfiles      bool // label CPU samples with the active span ID
	ProfilingContentionRate    int  // mutex and block sampling rate, 0 disables
}

// ReservationConfig controls reservation defaults and the expiry sweeper
type ReservationConfig struct {
	DefaultDurationDays int
	SweepEnabled        bool
	SweepInterval       time.Duration
}

// LedgerConfig holds the tax rates used for purchase order money
type LedgerConfig struct {
	GSTRate        decimal.Decimal
	PriceExcFactor decimal.Decimal
}

// Load loads configuration from an optional .env file, config.toml and
// environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOCKLEDGER_ prefix
// 2. .env (only fills variables not already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stockledger")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Addr:      v.GetString("redis.addr"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		JWT: JWTConfig{
			Enabled: v.GetBool("jwt.enabled"),
			Secret:  v.GetString("jwt.secret"),
			Issuer:  v.GetString("jwt.issuer"),
			TTL:     v.GetDuration("jwt.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			IdempotencyTTL:  v.GetDuration("http.idempotency_ttl"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
			CORSOrigins:     v.GetStringSlice("http.cors_origins"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),

			ProfilingEnabled:           v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress:     v.GetString("telemetry.profiling_server_address"),
			ProfilingBasicAuthUser:     v.GetString("telemetry.profiling_basic_auth_user"),
			ProfilingBasicAuthPassword: v.GetString("telemetry.profiling_basic_auth_password"),
			ProfilingSpanProfiles:      v.GetBool("telemetry.profiling_span_profiles"),
			ProfilingContentionRate:    v.GetInt("telemetry.profiling_contention_rate"),
		},
		Reservation: ReservationConfig{
			DefaultDurationDays: v.GetInt("reservation.default_duration_days"),
			SweepEnabled:        v.GetBool("reservation.sweep_enabled"),
			SweepInterval:       v.GetDuration("reservation.sweep_interval"),
		},
	}

	ledger, err := loadLedger(v)
	if err != nil {
		return nil, err
	}
	cfg.Ledger = ledger

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadLedger reads rates as strings so they parse exactly into decimals
func loadLedger(v *viper.Viper) (LedgerConfig, error) {
	var out LedgerConfig
	for key, dst := range map[string]*decimal.Decimal{
		"ledger.gst_rate":         &out.GSTRate,
		"ledger.price_exc_factor": &out.PriceExcFactor,
	} {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return out, fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return out, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stockledger"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "stockledger"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "stockledger:"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "stockledger"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 8 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.IdempotencyTTL == 0 {
		cfg.HTTP.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ProfilingServerAddress == "" {
		cfg.Telemetry.ProfilingServerAddress = "http://localhost:4040"
	}
	if cfg.Reservation.DefaultDurationDays == 0 {
		cfg.Reservation.DefaultDurationDays = 7
	}
	if cfg.Reservation.SweepInterval == 0 {
		cfg.Reservation.SweepInterval = 5 * time.Minute
	}
	if cfg.Ledger.GSTRate.IsZero() {
		cfg.Ledger.GSTRate = decimal.RequireFromString("0.10")
	}
	if cfg.Ledger.PriceExcFactor.IsZero() {
		cfg.Ledger.PriceExcFactor = decimal.RequireFromString("0.90")
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	port, err := strconv.Atoi(c.App.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("app.port must be between 1 and 65535, got %q", c.App.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.JWT.Enabled && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters when jwt is enabled")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}

	if c.Reservation.DefaultDurationDays < 1 {
		return fmt.Errorf("reservation.default_duration_days must be at least 1")
	}
	if c.Reservation.SweepInterval <= 0 {
		return fmt.Errorf("reservation.sweep_interval must be positive")
	}
	if c.HTTP.IdempotencyTTL <= 0 {
		return fmt.Errorf("http.idempotency_ttl must be positive")
	}
	if c.Telemetry.ProfilingContentionRate < 0 {
		return fmt.Errorf("telemetry.profiling_contention_rate cannot be negative")
	}
	if c.Telemetry.ProfilingEnabled {
		addr := c.Telemetry.ProfilingServerAddress
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			return fmt.Errorf("telemetry.profiling_server_address must be an http(s) URL, got %q", addr)
		}
	}

	one := decimal.NewFromInt(1)
	if c.Ledger.GSTRate.IsNegative() || c.Ledger.GSTRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("ledger.gst_rate must be in [0, 1), got %s", c.Ledger.GSTRate)
	}
	if !c.Ledger.PriceExcFactor.IsPositive() || c.Ledger.PriceExcFactor.GreaterThan(one) {
		return fmt.Errorf("ledger.price_exc_factor must be in (0, 1], got %s", c.Ledger.PriceExcFactor)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if !c.JWT.Enabled {
			return fmt.Errorf("jwt.enabled must be true in production")
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
