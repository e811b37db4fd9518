// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/portfolio-site/contact-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Email-delivery providers.
const (
	ProviderEmailJS = "emailjs"
	ProviderResend  = "resend"
)

// Storage backends for the last-submission timestamp.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// SQLiteConfig holds the location of the single-node timestamp database.
type SQLiteConfig struct {
	Path string `mapstructure:"PATH" yaml:"path"`
}

// EmailJSConfig identifies the EmailJS service, template and account used to
// deliver contact messages.
type EmailJSConfig struct {
	ServiceID  string `mapstructure:"SERVICE_ID" yaml:"service_id"`
	TemplateID string `mapstructure:"TEMPLATE_ID" yaml:"template_id"`
	PublicKey  string `mapstructure:"PUBLIC_KEY" yaml:"public_key"`
	PrivateKey string `mapstructure:"PRIVATE_KEY" yaml:"private_key"`
	BaseURL    string `mapstructure:"BASE_URL" yaml:"base_url"`
	// TimeoutSeconds bounds a single send request.
	TimeoutSeconds int `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// EmailConfig holds configuration for sending contact messages through Resend.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ToAddress    string `mapstructure:"TO_ADDRESS" yaml:"to_address"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// ContactConfig tunes the contact form pipeline.
type ContactConfig struct {
	Provider        string `mapstructure:"PROVIDER" yaml:"provider"`
	Store           string `mapstructure:"STORE" yaml:"store"`
	StorageKey      string `mapstructure:"STORAGE_KEY" yaml:"storage_key"`
	CooldownSeconds int    `mapstructure:"COOLDOWN_SECONDS" yaml:"cooldown_seconds"`
	// TimeZone is used to render the human-readable submission time.
	TimeZone string `mapstructure:"TIME_ZONE" yaml:"time_zone"`
	// SessionIdleMinutes is how long a visitor session survives without requests.
	SessionIdleMinutes int `mapstructure:"SESSION_IDLE_MINUTES" yaml:"session_idle_minutes"`
}

// Cooldown returns the enforced interval between two successful submissions.
func (c ContactConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// SessionIdleTTL returns how long idle visitor sessions are kept.
func (c ContactConfig) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// Location resolves TimeZone, falling back to the local zone.
func (c ContactConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Config aggregates all application configuration sections.
type Config struct {
	Server  ServerConfig  `mapstructure:"SERVER" yaml:"server"`
	Redis   RedisConfig   `mapstructure:"REDIS" yaml:"redis"`
	SQLite  SQLiteConfig  `mapstructure:"SQLITE" yaml:"sqlite"`
	EmailJS EmailJSConfig `mapstructure:"EMAILJS" yaml:"emailjs"`
	Email   EmailConfig   `mapstructure:"EMAIL" yaml:"email"`
	Contact ContactConfig `mapstructure:"CONTACT" yaml:"contact"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// setDefaults registers the default value of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("SQLITE.PATH", "contact.db")
	v.SetDefault("EMAILJS.BASE_URL", "https://api.emailjs.com")
	v.SetDefault("EMAILJS.TIMEOUT_SECONDS", 10)
	v.SetDefault("EMAIL.FROM_NAME", "Portfolio Contact Form")
	v.SetDefault("CONTACT.PROVIDER", ProviderEmailJS)
	v.SetDefault("CONTACT.STORE", StoreMemory)
	v.SetDefault("CONTACT.STORAGE_KEY", "contactFormLastSubmission")
	v.SetDefault("CONTACT.COOLDOWN_SECONDS", 60)
	v.SetDefault("CONTACT.TIME_ZONE", "")
	v.SetDefault("CONTACT.SESSION_IDLE_MINUTES", 30)
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_FILE) and
// the environment, then validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"REDIS.POOL_SIZE", "REDIS_POOL_SIZE"},
		// SQLite config
		{"SQLITE.PATH", "SQLITE_PATH"},
		// EmailJS config
		{"EMAILJS.SERVICE_ID", "EMAILJS_SERVICE_ID"},
		{"EMAILJS.TEMPLATE_ID", "EMAILJS_TEMPLATE_ID"},
		{"EMAILJS.PUBLIC_KEY", "EMAILJS_PUBLIC_KEY"},
		{"EMAILJS.PRIVATE_KEY", "EMAILJS_PRIVATE_KEY"},
		{"EMAILJS.BASE_URL", "EMAILJS_BASE_URL"},
		{"EMAILJS.TIMEOUT_SECONDS", "EMAILJS_TIMEOUT_SECONDS"},
		// Email (Resend) config
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.TO_ADDRESS", "EMAIL_TO_ADDRESS"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		// Contact form config
		{"CONTACT.PROVIDER", "CONTACT_PROVIDER"},
		{"CONTACT.STORE", "CONTACT_STORE"},
		{"CONTACT.STORAGE_KEY", "CONTACT_STORAGE_KEY"},
		{"CONTACT.COOLDOWN_SECONDS", "CONTACT_COOLDOWN_SECONDS"},
		{"CONTACT.TIME_ZONE", "CONTACT_TIME_ZONE"},
		{"CONTACT.SESSION_IDLE_MINUTES", "CONTACT_SESSION_IDLE_MINUTES"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Infow("Config file loaded", "file", file)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"provider", cfg.Contact.Provider,
		"store", cfg.Contact.Store,
		"cooldown_seconds", cfg.Contact.CooldownSeconds,
	)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Contact.CooldownSeconds <= 0 {
		return fmt.Errorf("contact cooldown seconds must be positive")
	}
	if cfg.Contact.StorageKey == "" {
		return fmt.Errorf("contact storage key is required")
	}
	if cfg.Contact.SessionIdleMinutes <= 0 {
		return fmt.Errorf("contact session idle minutes must be positive")
	}
	if cfg.Contact.TimeZone != "" {
		if _, err := time.LoadLocation(cfg.Contact.TimeZone); err != nil {
			return fmt.Errorf("invalid contact time zone '%s': %w", cfg.Contact.TimeZone, err)
		}
	}

	switch cfg.Contact.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis store")
		}
	case StoreSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown contact store %q", cfg.Contact.Store)
	}

	switch cfg.Contact.Provider {
	case ProviderEmailJS:
		return validateEmailJS(&cfg.EmailJS)
	case ProviderResend:
		return validateResend(&cfg.Email)
	default:
		return fmt.Errorf("unknown contact provider %q", cfg.Contact.Provider)
	}
}

func validateEmailJS(c *EmailJSConfig) error {
	if c.ServiceID == "" {
		return fmt.Errorf("emailjs service id is required")
	}
	if c.TemplateID == "" {
		return fmt.Errorf("emailjs template id is required")
	}
	if c.PublicKey == "" {
		return fmt.Errorf("emailjs public key is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid emailjs base url '%s': %w", c.BaseURL, err)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("emailjs timeout must be positive")
	}
	return nil
}

func validateResend(c *EmailConfig) error {
	if c.FromAddress == "" {
		return fmt.Errorf("email from address is required")
	}
	if c.ToAddress == "" {
		return fmt.Errorf("email to address is required")
	}
	if c.ResendAPIKey == "" {
		return fmt.Errorf("resend API key is required")
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
