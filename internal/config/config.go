package config

import (
	"fmt"
	"time"
)

// Config holds all client configuration.
type Config struct {
	// Generation API settings
	APIURL          string
	GenerateTimeout time.Duration
	StreamProgress  bool

	// Conversation API settings
	ConversationURL string
	RequestTimeout  time.Duration
	AutosaveDelay   time.Duration

	// Geolocation settings
	GeocodeURL     string
	GeocodeTimeout time.Duration

	// Local files
	PreferencesPath string

	// Display settings
	MaxProgressLines int
	Verbose          bool
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		// Generation defaults
		APIURL:          envOr("MINIQUEST_API_URL", "http://localhost:8000"),
		GenerateTimeout: 120 * time.Second,
		StreamProgress:  true,

		// Conversation defaults
		ConversationURL: envOr("MINIQUEST_CONVERSATION_URL", "http://localhost:8000"),
		RequestTimeout:  15 * time.Second,
		AutosaveDelay:   2 * time.Second,

		// Geolocation defaults
		GeocodeURL:     envOr("MINIQUEST_GEOCODE_URL", "http://ip-api.com"),
		GeocodeTimeout: 5 * time.Second,

		PreferencesPath: expandHome("~/.miniquest/preferences.yaml"),

		MaxProgressLines: 12,
		Verbose:          false,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL cannot be empty")
	}
	if c.ConversationURL == "" {
		return fmt.Errorf("conversation URL cannot be empty")
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave delay must be positive")
	}
	if c.MaxProgressLines < 1 {
		return fmt.Errorf("max progress lines must be at least 1")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return fallback
}

// expandHome expands the ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		return getHomeDir() + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory.
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing.
var GetEnv = func(key string) string {
	// Will be replaced with os.Getenv in main
	return ""
}
