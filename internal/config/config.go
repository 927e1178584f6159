package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
	DBDSN      string `yaml:"db_dsn"`

	// JWT
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTAccessExpiry  time.Duration `yaml:"jwt_access_expiry"`
	JWTRefreshExpiry time.Duration `yaml:"jwt_refresh_expiry"`

	// AI provider: groq (OpenAI-compatible) or ollama
	AIProvider  string        `yaml:"ai_provider"`
	GroqAPIKey  string        `yaml:"groq_api_key"`
	GroqAPIURL  string        `yaml:"groq_api_url"`
	GroqModel   string        `yaml:"groq_model"`
	OllamaURL   string        `yaml:"ollama_url"`
	OllamaModel string        `yaml:"ollama_model"`
	AITimeout   time.Duration `yaml:"ai_timeout"`

	// Notifications
	TelegramAPIURL   string `yaml:"telegram_api_url"`
	NotifyRatePerMin int    `yaml:"notify_rate_per_min"`

	// Monitoring
	AutoCheckEnabled        bool          `yaml:"auto_check_enabled"`
	AutoCheckSchedule       string        `yaml:"auto_check_schedule"`
	ServiceCheckTimeout     time.Duration `yaml:"service_check_timeout"`
	PerformanceCheckTimeout time.Duration `yaml:"performance_check_timeout"`

	// Session revocation store; empty keeps it in memory
	RedisURL string `yaml:"redis_url"`

	AdminEmails string `yaml:"admin_emails"`

	// Server
	Port             string `yaml:"port"`
	CORSOrigins      string `yaml:"cors_origins"`
	SentryDSN        string `yaml:"sentry_dsn"`
	AppEnv           string `yaml:"app_env"`
	LogRetentionDays int    `yaml:"log_retention_days"`
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DBDriver:  "postgres",
		DBHost:    "localhost",
		DBPort:    "5432",
		DBUser:    "postgres",
		DBName:    "logwise",
		DBSSLMode: "disable",

		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,

		AIProvider:  "groq",
		GroqAPIURL:  "https://api.groq.com/openai/v1/chat/completions",
		GroqModel:   "llama-3.3-70b-versatile",
		OllamaURL:   "http://localhost:11434",
		OllamaModel: "llama3.1",

		TelegramAPIURL:   "https://api.telegram.org",
		NotifyRatePerMin: 20,

		AutoCheckEnabled:        true,
		AutoCheckSchedule:       "@every 1m",
		ServiceCheckTimeout:     5 * time.Second,
		PerformanceCheckTimeout: 10 * time.Second,

		Port:             "8080",
		CORSOrigins:      "*",
		LogRetentionDays: 30,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBDriver = strings.ToLower(getEnv("DB_DRIVER", c.DBDriver))
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)
	c.DBDSN = getEnv("DB_DSN", c.DBDSN)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTAccessExpiry = parseDuration(os.Getenv("JWT_ACCESS_EXPIRY"), c.JWTAccessExpiry)
	c.JWTRefreshExpiry = parseDuration(os.Getenv("JWT_REFRESH_EXPIRY"), c.JWTRefreshExpiry)

	c.AIProvider = strings.ToLower(getEnv("AI_PROVIDER", c.AIProvider))
	c.GroqAPIKey = getEnv("GROQ_API_KEY", c.GroqAPIKey)
	c.GroqAPIURL = getEnv("GROQ_API_URL", c.GroqAPIURL)
	c.GroqModel = getEnv("GROQ_MODEL", c.GroqModel)
	c.OllamaURL = getEnv("OLLAMA_URL", c.OllamaURL)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)
	c.AITimeout = parseDuration(os.Getenv("AI_TIMEOUT"), c.AITimeout)

	c.TelegramAPIURL = getEnv("TELEGRAM_API_URL", c.TelegramAPIURL)
	c.NotifyRatePerMin = parseInt(os.Getenv("NOTIFY_RATE_PER_MIN"), c.NotifyRatePerMin)

	c.AutoCheckEnabled = parseBool(os.Getenv("AUTO_CHECK_ENABLED"), c.AutoCheckEnabled)
	c.AutoCheckSchedule = getEnv("AUTO_CHECK_SCHEDULE", c.AutoCheckSchedule)
	c.ServiceCheckTimeout = parseDuration(os.Getenv("SERVICE_CHECK_TIMEOUT"), c.ServiceCheckTimeout)
	c.PerformanceCheckTimeout = parseDuration(os.Getenv("PERFORMANCE_CHECK_TIMEOUT"), c.PerformanceCheckTimeout)

	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.AdminEmails = getEnv("ADMIN_EMAILS", c.AdminEmails)

	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.SentryDSN = getEnv("SENTRY_DSN", c.SentryDSN)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogRetentionDays = parseInt(os.Getenv("LOG_RETENTION_DAYS"), c.LogRetentionDays)
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DBDSN == "" && c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.AIProvider {
	case "groq", "ollama":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return c.DBName + ".db"
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

// AdminEmailList returns ADMIN_EMAILS split on commas, lower-cased.
func (c *Config) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
