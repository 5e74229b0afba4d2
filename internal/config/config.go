package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// Environment variable names recognized by Load.
const (
	EnvClientID     = "TICKTICK_CLIENT_ID"
	EnvClientSecret = "TICKTICK_CLIENT_SECRET"
	EnvAccessToken  = "TICKTICK_ACCESS_TOKEN"
	EnvRefreshToken = "TICKTICK_REFRESH_TOKEN"
	EnvBaseURL      = "TICKTICK_BASE_URL"
	EnvTokenURL     = "TICKTICK_TOKEN_URL"
)

// Config holds the TickTick API configuration for one server process.
type Config struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	BaseURL      string
	TokenURL     string
}

// Load reads configuration from the environment. If envFile is
// non-empty it is loaded first; variables already set in the process
// environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		// A .env in the working directory is optional.
		_ = godotenv.Load()
	}

	cfg := &Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		AccessToken:  os.Getenv(EnvAccessToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
		BaseURL:      os.Getenv(EnvBaseURL),
		TokenURL:     os.Getenv(EnvTokenURL),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = ticktick.DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = ticktick.DefaultTokenURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. An access token is
// required; refresh credentials are optional but must come as a
// complete set.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.AccessToken, validation.Required.Error(
			fmt.Sprintf("%s is required; run 'ticktick-mcp auth' to obtain tokens", EnvAccessToken))),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.TokenURL, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.RefreshToken != "" && (c.ClientID == "" || c.ClientSecret == "") {
		return fmt.Errorf("invalid configuration: %s and %s are required when %s is set",
			EnvClientID, EnvClientSecret, EnvRefreshToken)
	}
	return nil
}

// Credentials converts the configuration into client credentials.
func (c *Config) Credentials() ticktick.Credentials {
	return ticktick.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
}
