package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BackendConfig locates the storefront REST API. Loaded with the BACKEND_ prefix.
type BackendConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	// Timeout bounds each backend call. Zero means no timeout.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`

	// CredentialCookies names the browser cookies forwarded to the backend.
	CredentialCookies []string `env:"CREDENTIAL_COOKIES" envDefault:"token" envSeparator:","`

	// JMESPath expressions that locate the user record in each response.
	CurrentUserPath string `env:"CURRENT_USER_PATH" envDefault:"data"`
	LoginUserPath   string `env:"LOGIN_USER_PATH"   envDefault:"user || data.user"`
	SignupUserPath  string `env:"SIGNUP_USER_PATH"  envDefault:"user || data.user || @"`
}

// Sanitize trims values and drops empty cookie names.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout < 0 {
		b.Timeout = 0
	}
	names := b.CredentialCookies[:0]
	for _, n := range b.CredentialCookies {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	b.CredentialCookies = names
	b.CurrentUserPath = strings.TrimSpace(b.CurrentUserPath)
	b.LoginUserPath = strings.TrimSpace(b.LoginUserPath)
	b.SignupUserPath = strings.TrimSpace(b.SignupUserPath)
}

// Validate requires an absolute http(s) base URL.
func (b *BackendConfig) Validate() error {
	u, err := url.Parse(b.BaseURL)
	if err != nil {
		return fmt.Errorf("BACKEND_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL %q must be an absolute http(s) URL", b.BaseURL)
	}
	return nil
}
