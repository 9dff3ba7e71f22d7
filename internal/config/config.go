package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Simplici0/roofquote/internal/geo"
)

const (
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultAppEnv          = "dev"
	defaultSuggestDebounce = "300ms"
	defaultLookupTimeout   = "10s"
	defaultIdleTimeout     = "30m"
	defaultUserAgent       = "roofquote/1.0"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string

	OSRMBaseURL       string
	NominatimBaseURL  string
	GeocoderUserAgent string
	SuggestDebounce   time.Duration
	LookupTimeout     time.Duration
	// IdleTimeout bounds how long per-visitor state stays in memory.
	IdleTimeout time.Duration
}

// IsDev reports whether the app runs outside production.
func (c Config) IsDev() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env != "prod" && env != "production" && env != "release"
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: production injects real env vars.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("dotenv_load_failed err=%v", err)
	}

	cfg := Config{
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		Port:              getEnv("PORT", defaultPort),
		OSRMBaseURL:       getEnv("OSRM_BASE_URL", geo.DefaultOSRMBaseURL),
		NominatimBaseURL:  getEnv("NOMINATIM_BASE_URL", geo.DefaultNominatimBaseURL),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", defaultUserAgent),
	}

	var err error
	cfg.SuggestDebounce, err = parseDurationEnv("SUGGEST_DEBOUNCE", defaultSuggestDebounce)
	if err != nil {
		return Config{}, err
	}
	cfg.LookupTimeout, err = parseDurationEnv("LOOKUP_TIMEOUT", defaultLookupTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.IdleTimeout, err = parseDurationEnv("SESSION_IDLE_TIMEOUT", defaultIdleTimeout)
	if err != nil {
		return Config{}, err
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required when APP_ENV=%s", cfg.AppEnv)
		}
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg, nil
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", name, value)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
