package server

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BaseURL is the public base of manifest and canvas URIs.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8080"`
}

// PublicBase returns BaseURL without a trailing slash.
func (c Config) PublicBase() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// Validate checks that the base URL is absolute.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must be http(s), got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url has no host: %q", c.BaseURL)
	}
	return nil
}
