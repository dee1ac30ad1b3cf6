package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Values load in three layers:
// built-in defaults, then an optional YAML file named by CONFIG_FILE, then
// environment variable overrides.
type Config struct {
	Port           string   `yaml:"port"`
	DBPath         string   `yaml:"dbPath"`
	LogLevel       string   `yaml:"logLevel"`
	JWTSecret      string   `yaml:"jwtSecret"`
	JWTExpiresDays int      `yaml:"jwtExpiresDays"`
	CookieName     string   `yaml:"cookieName"`
	ClientOrigin   string   `yaml:"clientOrigin"`
	SecureCookies  bool     `yaml:"secureCookies"`
	AdminEmails    []string `yaml:"adminEmails"`
	GuessesPerMin  int      `yaml:"guessesPerMin"`
}

func defaultConfig() Config {
	return Config{
		Port:           "5175",
		DBPath:         "./data/app.db",
		LogLevel:       "info",
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "brainteaser_token",
		ClientOrigin:   "http://localhost:5173",
		GuessesPerMin:  20,
	}
}

// loadConfig builds the effective configuration.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideStr(&cfg.Port, "PORT")
	overrideStr(&cfg.DBPath, "DB_PATH")
	overrideStr(&cfg.LogLevel, "LOG_LEVEL")
	overrideStr(&cfg.JWTSecret, "JWT_SECRET")
	overrideInt(&cfg.JWTExpiresDays, "JWT_EXPIRES_DAYS")
	overrideStr(&cfg.CookieName, "COOKIE_NAME")
	overrideStr(&cfg.ClientOrigin, "CLIENT_ORIGIN")
	overrideInt(&cfg.GuessesPerMin, "GUESSES_PER_MIN")
	if v := os.Getenv("NODE_ENV"); v == "production" {
		cfg.SecureCookies = true
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		cfg.AdminEmails = nil
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.AdminEmails = append(cfg.AdminEmails, a)
			}
		}
	}
	return cfg, nil
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
