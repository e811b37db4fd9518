package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/portfolio-site/contact-backend/config"
	"gopkg.in/yaml.v3"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("ERROR: %s must be an integer, got %q", key, raw)
	}
	return value, nil
}

func validateRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("ERROR: %s environment variable is not set in your .env file. Please set it and try again", key)
	}
	return value, nil
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		fmt.Println("ERROR: .env file not found!")
		fmt.Println("Please create a .env file by copying .env.example and filling in the required values:")
		fmt.Println("cp .env.example .env")
		os.Exit(1)
	}
	exitOnError(godotenv.Load())

	var cfg config.Config
	var err error

	// Server configuration
	cfg.Server.Environment = config.Environment(getEnvOrDefault("SERVER_ENVIRONMENT", string(config.EnvDevelopment)))
	cfg.Server.Port = getEnvOrDefault("PORT", "8080")
	cfg.Server.AllowedOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "*"), ",")
	cfg.Server.Version = getEnvOrDefault("VERSION", "dev")

	// Contact pipeline
	cfg.Contact.Provider = getEnvOrDefault("CONTACT_PROVIDER", config.ProviderEmailJS)
	cfg.Contact.Store = getEnvOrDefault("CONTACT_STORE", config.StoreMemory)
	cfg.Contact.StorageKey = getEnvOrDefault("CONTACT_STORAGE_KEY", "contactFormLastSubmission")
	cfg.Contact.TimeZone = os.Getenv("CONTACT_TIME_ZONE")
	cfg.Contact.CooldownSeconds, err = getIntEnvOrDefault("CONTACT_COOLDOWN_SECONDS", 60)
	exitOnError(err)
	cfg.Contact.SessionIdleMinutes, err = getIntEnvOrDefault("CONTACT_SESSION_IDLE_MINUTES", 30)
	exitOnError(err)

	switch cfg.Contact.Provider {
	case config.ProviderEmailJS:
		cfg.EmailJS.ServiceID, err = validateRequiredEnv("EMAILJS_SERVICE_ID")
		exitOnError(err)
		cfg.EmailJS.TemplateID, err = validateRequiredEnv("EMAILJS_TEMPLATE_ID")
		exitOnError(err)
		cfg.EmailJS.PublicKey, err = validateRequiredEnv("EMAILJS_PUBLIC_KEY")
		exitOnError(err)
		cfg.EmailJS.PrivateKey = os.Getenv("EMAILJS_PRIVATE_KEY")
		cfg.EmailJS.BaseURL = getEnvOrDefault("EMAILJS_BASE_URL", "https://api.emailjs.com")
		cfg.EmailJS.TimeoutSeconds = 10
	case config.ProviderResend:
		cfg.Email.FromAddress, err = validateRequiredEnv("EMAIL_FROM_ADDRESS")
		exitOnError(err)
		cfg.Email.ToAddress, err = validateRequiredEnv("EMAIL_TO_ADDRESS")
		exitOnError(err)
		cfg.Email.ResendAPIKey, err = validateRequiredEnv("RESEND_API_KEY")
		exitOnError(err)
		cfg.Email.FromName = getEnvOrDefault("EMAIL_FROM_NAME", "Portfolio Contact Form")
	default:
		exitOnError(fmt.Errorf("ERROR: unknown CONTACT_PROVIDER %q", cfg.Contact.Provider))
	}

	switch cfg.Contact.Store {
	case config.StoreRedis:
		cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", "redis:6379")
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.UseTLS = os.Getenv("REDIS_USE_TLS") == "true"
		cfg.Redis.PoolSize, err = getIntEnvOrDefault("REDIS_POOL_SIZE", 10)
		exitOnError(err)
	case config.StoreSQLite:
		cfg.SQLite.Path = getEnvOrDefault("SQLITE_PATH", "contact.db")
	}

	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Printf("Error marshaling YAML: %v\n", err)
		os.Exit(1)
	}

	// Get the environment name from command line args or use default
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}

	if err := os.MkdirAll("config", 0755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join("config", fmt.Sprintf("config.%s.yaml", env))
	if err := os.WriteFile(filename, yamlData, 0600); err != nil {
		fmt.Printf("Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %s\n", filename)
}
