package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the application-wide configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig — HTTP server settings.
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig — allowed browser origins.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig — PostgreSQL settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig — Redis settings (confirmation sequence + rate limiting).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BookingConfig — availability and pricing policy.
type BookingConfig struct {
	// LimitedThreshold is the booked/capacity ratio at which a slot starts
	// reporting LIMITED. Policy knob, not a constant.
	LimitedThreshold float64 `mapstructure:"limited_threshold"`
	// EquipmentFee and TaxRate are decimal strings so money never passes
	// through float parsing.
	EquipmentFee string `mapstructure:"equipment_fee"`
	TaxRate      string `mapstructure:"tax_rate"`
	Location     string `mapstructure:"location"`
	// ExposeRemaining includes exact remaining-capacity counts in slot
	// availability responses. Off by default to avoid overexposing counts.
	ExposeRemaining bool `mapstructure:"expose_remaining"`
	// RateLimitPerMinute caps reservation creations per client IP.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
}

// EquipmentFeeDecimal returns the parsed equipment fee. Validate has already
// rejected unparseable values by the time anyone calls this.
func (c *BookingConfig) EquipmentFeeDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.EquipmentFee)
}

// TaxRateDecimal returns the parsed tax rate.
func (c *BookingConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.TaxRate)
}

// LogConfig — logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
// Precedence: environment variables > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "haevn")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("booking.limited_threshold", 0.8)
	v.SetDefault("booking.equipment_fee", "15.00")
	v.SetDefault("booking.tax_rate", "0.10")
	v.SetDefault("booking.location", "Haevn Surf Park - Wave Pool 2")
	v.SetDefault("booking.expose_remaining", false)
	v.SetDefault("booking.rate_limit_per_minute", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("HAEVN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file: run on defaults plus environment.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the booking core cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be within 1-65535")
	}
	if c.Booking.LimitedThreshold <= 0 || c.Booking.LimitedThreshold > 1 {
		return fmt.Errorf("config: booking.limited_threshold must be in (0, 1]")
	}

	fee, err := decimal.NewFromString(c.Booking.EquipmentFee)
	if err != nil {
		return fmt.Errorf("config: booking.equipment_fee is not a decimal: %w", err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("config: booking.equipment_fee must not be negative")
	}

	rate, err := decimal.NewFromString(c.Booking.TaxRate)
	if err != nil {
		return fmt.Errorf("config: booking.tax_rate is not a decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("config: booking.tax_rate must not be negative")
	}

	return nil
}
