package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Google   GoogleConfig
	SMTP     SMTPConfig
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
	// CORSOrigins is a comma-separated list of origins allowed to issue
	// state-changing requests (also used by the origin guard).
	CORSOrigins string `mapstructure:"corsorigins"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig holds the secrets and TTLs of the authentication core.
type AuthConfig struct {
	JWTSecret           string `mapstructure:"jwtsecret"`
	AccessTokenTTL      time.Duration
	RefreshTokenTTLDays int    `mapstructure:"refreshtokenttldays"`
	FrontendBaseURL     string `mapstructure:"frontendbaseurl"`
	APIBaseURL          string `mapstructure:"apibaseurl"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

// IsProduction reports whether the server runs in production mode.
// It controls cookie security flags and whether registration responses
// may carry the plaintext verification token.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load creates a new Config object from environment variables.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into process environment for BindEnv to work with file-based envs
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}

	// Bind structured keys to environment variables
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.corsorigins", "CORS_ORIGINS")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("auth.jwtsecret", "JWT_SECRET")
	_ = viper.BindEnv("auth.refreshtokenttldays", "REFRESH_TOKEN_TTL_DAYS")
	_ = viper.BindEnv("auth.frontendbaseurl", "FRONTEND_BASE_URL")
	_ = viper.BindEnv("auth.apibaseurl", "API_BASE_URL")
	_ = viper.BindEnv("google.clientid", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.clientsecret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirecturl", "GOOGLE_REDIRECT_URL")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("smtp.enabled", "SMTP_ENABLED")

	if err := viper.ReadInConfig(); err != nil {
		// We can still proceed if all config is set via environment variables.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("❌ Error reading config file: %s", err)
		} else {
			log.Printf("⚠️ .env file not found, relying on environment variables")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	// --- Set default values ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = "http://localhost:5173,http://localhost:3000,http://localhost"
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET environment variable is not set")
	}
	cfg.Auth.AccessTokenTTL = 10 * time.Minute
	if cfg.Auth.RefreshTokenTTLDays < 7 || cfg.Auth.RefreshTokenTTLDays > 30 {
		cfg.Auth.RefreshTokenTTLDays = 30
	}
	if cfg.Auth.FrontendBaseURL == "" {
		cfg.Auth.FrontendBaseURL = "http://localhost:5173"
	}
	if cfg.Auth.APIBaseURL == "" {
		cfg.Auth.APIBaseURL = "http://localhost:" + cfg.Server.Port
	}

	log.Println("✅ Configuration loaded successfully")
	return &cfg
}
