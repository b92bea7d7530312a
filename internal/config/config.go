package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default values applied when a key is missing or not a positive number.
const (
	DefaultHost                     = "127.0.0.1"
	DefaultPort                     = 7410
	DefaultDBDriver                 = "sqlite"
	DefaultDBDSN                    = "./monitor.sqlite"
	DefaultLogLevel                 = "info"
	DefaultRetentionDays            = 30
	DefaultEvaluatorIntervalSeconds = 15
	DefaultRetentionIntervalSeconds = 3600
	DefaultRecoveryTTLSeconds       = 900
	DefaultTokenTTL                 = time.Hour
	DefaultEmailFromName            = "Chief Monitor"

	envPrefix = "MONITOR"
)

// Config is the full process configuration.
type Config struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	APIKey    string          `mapstructure:"api_key"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Retention RetentionConfig `mapstructure:"retention"`
	Evaluator EvaluatorConfig `mapstructure:"evaluator"`
	Recovery  RecoveryConfig  `mapstructure:"recovery"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Email     EmailConfig     `mapstructure:"email"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig selects the storage driver: "sqlite" (file path DSN) or "postgres" (URL DSN).
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RetentionConfig struct {
	Days            int `mapstructure:"days"`
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type EvaluatorConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// RecoveryConfig controls how long an unattended RECOVERY alert stays open.
type RecoveryConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// AuthConfig enables operator sign-in when Secret is set.
type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether bearer-token auth is active.
func (a AuthConfig) Enabled() bool { return strings.TrimSpace(a.Secret) != "" }

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds SendGrid credentials. Email is disabled unless both key and sender are set.
type EmailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	SendGridHost   string `mapstructure:"sendgrid_host"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
}

// EvaluatorInterval is the heartbeat sweep period.
func (c *Config) EvaluatorInterval() time.Duration {
	return time.Duration(c.Evaluator.IntervalSeconds) * time.Second
}

// RetentionInterval is the prune sweep period.
func (c *Config) RetentionInterval() time.Duration {
	return time.Duration(c.Retention.IntervalSeconds) * time.Second
}

// RecoveryTTL is the age after which open RECOVERY alerts are auto-closed.
func (c *Config) RecoveryTTL() time.Duration {
	return time.Duration(c.Recovery.TTLSeconds) * time.Second
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// New returns a viper instance with defaults and MONITOR_* environment overrides.
// If path is empty, configs/config.yml is used when present.
func New(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("db.driver", DefaultDBDriver)
	v.SetDefault("db.dsn", DefaultDBDSN)
	v.SetDefault("retention.days", DefaultRetentionDays)
	v.SetDefault("retention.interval_seconds", DefaultRetentionIntervalSeconds)
	v.SetDefault("evaluator.interval_seconds", DefaultEvaluatorIntervalSeconds)
	v.SetDefault("recovery.ttl_seconds", DefaultRecoveryTTLSeconds)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("email.sendgrid_api_key", "")
	v.SetDefault("email.sendgrid_host", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", DefaultEmailFromName)
}

// Load reads the config file (if any), applies env overrides and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	applyFallbacks(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// applyFallbacks replaces non-positive numeric settings with their defaults.
func applyFallbacks(cfg *Config) {
	positive := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	positive(&cfg.Port, DefaultPort)
	positive(&cfg.Retention.Days, DefaultRetentionDays)
	positive(&cfg.Retention.IntervalSeconds, DefaultRetentionIntervalSeconds)
	positive(&cfg.Evaluator.IntervalSeconds, DefaultEvaluatorIntervalSeconds)
	positive(&cfg.Recovery.TTLSeconds, DefaultRecoveryTTLSeconds)
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DefaultDBDriver
	}
	if strings.TrimSpace(cfg.Email.FromName) == "" {
		cfg.Email.FromName = DefaultEmailFromName
	}
}

func validate(cfg *Config) error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port %d is out of range [1, 65535]", cfg.Port)
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver %q unknown: want sqlite|postgres", cfg.DB.Driver)
	}
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		return errors.New("db.dsn must not be empty")
	}
	if cfg.Auth.Enabled() && cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword == "" {
		return errors.New("auth.admin_password is required when auth.admin_username is set")
	}
	return nil
}
