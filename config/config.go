package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds the upstream processor contract: base URL, the
// platform's master credentials, and the internal callback base URL handed to
// the processor so settlement notifications funnel back into this system.
type GatewayConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	MerchantID      string        `mapstructure:"merchant_id"` // Platform account at the upstream processor
	APIKey          string        `mapstructure:"api_key"`     // Master payin signing secret
	PayoutKey       string        `mapstructure:"payout_key"`  // Master payout signing secret
	CallbackBaseURL string        `mapstructure:"callback_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// PayinCallbackURL is the internal endpoint the processor notifies for payins.
func (g GatewayConfig) PayinCallbackURL() string {
	return strings.TrimRight(g.CallbackBaseURL, "/") + "/api/v1/callback/payin"
}

// PayoutCallbackURL is the internal endpoint the processor notifies for payouts.
func (g GatewayConfig) PayoutCallbackURL() string {
	return strings.TrimRight(g.CallbackBaseURL, "/") + "/api/v1/callback/payout"
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// AlertsConfig controls administrative alert thresholds. Amounts are decimal
// strings so they compare exactly against transaction amounts.
type AlertsConfig struct {
	LargePayinThreshold  string        `mapstructure:"large_payin_threshold"`
	LargePayoutThreshold string        `mapstructure:"large_payout_threshold"`
	HealthProbeInterval  time.Duration `mapstructure:"health_probe_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: EPG_.
// Nested keys use underscore: EPG_DATABASE_HOST, EPG_GATEWAY_API_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "elopay_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.merchant_id", "")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.payout_key", "")
	v.SetDefault("gateway.callback_base_url", "")
	v.SetDefault("gateway.timeout", "8s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "elopay-gateway")
	v.SetDefault("alerts.large_payin_threshold", "50000.00")
	v.SetDefault("alerts.large_payout_threshold", "50000.00")
	v.SetDefault("alerts.health_probe_interval", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: EPG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("EPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
