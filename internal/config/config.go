// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from an optional YAML
// file and environment variables. Environment variables always win.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	// LogLevel controls logging verbosity (4=info, 5=debug)
	LogLevel    int
	Environment Environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address string
}

// DatabaseConfig holds MySQL database connection parameters.
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MigrationsPath string
	// RunMigrations applies pending schema migrations at startup
	RunMigrations bool
}

// AuthConfig holds Google OAuth and session configuration.
//
// ClientID, ClientSecret and SessionSecret have no defaults on purpose:
// production secrets are always supplied externally.
type AuthConfig struct {
	// ProviderURL is the OIDC issuer used for endpoint discovery
	ProviderURL string

	// Google OAuth client credentials
	ClientID     string
	ClientSecret string

	// RedirectURL is the registered OAuth callback URL
	RedirectURL string

	// Session configuration
	SessionSecret  string
	CookieName     string
	CookieDomain   string
	CookieSameSite string
}

// fileConfig mirrors Config for the optional YAML configuration file.
type fileConfig struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		User           string `yaml:"user"`
		Password       string `yaml:"password"`
		Database       string `yaml:"database"`
		MigrationsPath string `yaml:"migrations_path"`
		RunMigrations  *bool  `yaml:"run_migrations"`
	} `yaml:"database"`
	Auth struct {
		ProviderURL    string `yaml:"provider_url"`
		ClientID       string `yaml:"client_id"`
		ClientSecret   string `yaml:"client_secret"`
		RedirectURL    string `yaml:"redirect_url"`
		SessionSecret  string `yaml:"session_secret"`
		CookieName     string `yaml:"cookie_name"`
		CookieDomain   string `yaml:"cookie_domain"`
		CookieSameSite string `yaml:"cookie_samesite"`
	} `yaml:"auth"`
	Environment string `yaml:"environment"`
}

// Load reads configuration from the file named by PORTAL_CONFIG (if set)
// and from environment variables, then validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address: ":3000",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           3306,
			User:           "portal",
			Password:       "portal",
			Database:       "colegio",
			MigrationsPath: "migrations",
			RunMigrations:  true,
		},
		Auth: AuthConfig{
			ProviderURL:    "https://accounts.google.com",
			RedirectURL:    "http://localhost:3000/auth/google/callback",
			CookieName:     "portal_session",
			CookieSameSite: "lax",
		},
		LogLevel:    4, // info level
		Environment: EnvDevelopment,
	}

	if path := os.Getenv("PORTAL_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if !cfg.Environment.IsValid() {
		return nil, fmt.Errorf("invalid environment %q", cfg.Environment)
	}
	if cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" {
		return nil, fmt.Errorf("google client credentials are required (PORTAL_GOOGLE_CLIENT_ID, PORTAL_GOOGLE_CLIENT_SECRET)")
	}
	if cfg.Auth.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required (PORTAL_SESSION_SECRET)")
	}

	return cfg, nil
}

// applyFile overlays values from a YAML configuration file.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path is operator-supplied configuration
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&cfg.Server.Address, fc.Server.Address)
	setString(&cfg.Database.Host, fc.Database.Host)
	if fc.Database.Port != 0 {
		cfg.Database.Port = fc.Database.Port
	}
	setString(&cfg.Database.User, fc.Database.User)
	setString(&cfg.Database.Password, fc.Database.Password)
	setString(&cfg.Database.Database, fc.Database.Database)
	setString(&cfg.Database.MigrationsPath, fc.Database.MigrationsPath)
	if fc.Database.RunMigrations != nil {
		cfg.Database.RunMigrations = *fc.Database.RunMigrations
	}
	setString(&cfg.Auth.ProviderURL, fc.Auth.ProviderURL)
	setString(&cfg.Auth.ClientID, fc.Auth.ClientID)
	setString(&cfg.Auth.ClientSecret, fc.Auth.ClientSecret)
	setString(&cfg.Auth.RedirectURL, fc.Auth.RedirectURL)
	setString(&cfg.Auth.SessionSecret, fc.Auth.SessionSecret)
	setString(&cfg.Auth.CookieName, fc.Auth.CookieName)
	setString(&cfg.Auth.CookieDomain, fc.Auth.CookieDomain)
	setString(&cfg.Auth.CookieSameSite, fc.Auth.CookieSameSite)
	if fc.Environment != "" {
		cfg.Environment = Environment(fc.Environment)
	}

	return nil
}

// applyEnv overlays values from PORTAL_* environment variables.
func applyEnv(cfg *Config) {
	cfg.Server.Address = getEnv("PORTAL_SERVER_ADDRESS", cfg.Server.Address)
	cfg.Database.Host = getEnv("PORTAL_DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("PORTAL_DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("PORTAL_DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("PORTAL_DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("PORTAL_DB_NAME", cfg.Database.Database)
	cfg.Database.MigrationsPath = getEnv("PORTAL_DB_MIGRATIONS_PATH", cfg.Database.MigrationsPath)
	cfg.Auth.ProviderURL = getEnv("PORTAL_OIDC_PROVIDER_URL", cfg.Auth.ProviderURL)
	cfg.Auth.ClientID = getEnv("PORTAL_GOOGLE_CLIENT_ID", cfg.Auth.ClientID)
	cfg.Auth.ClientSecret = getEnv("PORTAL_GOOGLE_CLIENT_SECRET", cfg.Auth.ClientSecret)
	cfg.Auth.RedirectURL = getEnv("PORTAL_OAUTH_REDIRECT_URL", cfg.Auth.RedirectURL)
	cfg.Auth.SessionSecret = getEnv("PORTAL_SESSION_SECRET", cfg.Auth.SessionSecret)
	cfg.Auth.CookieName = getEnv("PORTAL_COOKIE_NAME", cfg.Auth.CookieName)
	cfg.Auth.CookieDomain = getEnv("PORTAL_COOKIE_DOMAIN", cfg.Auth.CookieDomain)
	cfg.Auth.CookieSameSite = getEnv("PORTAL_COOKIE_SAMESITE", cfg.Auth.CookieSameSite)
	cfg.Environment = Environment(getEnv("PORTAL_ENV", string(cfg.Environment)))
	cfg.LogLevel = getEnvInt("PORTAL_LOG_LEVEL", cfg.LogLevel)
}

// setString assigns value to dst unless value is empty.
func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of the environment variable key, or defaultValue.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
