package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
)

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// Err joins all errors, or returns nil.
func (v *ValidationResult) Err() error {
	if v.IsValid() {
		return nil
	}
	errs := make([]error, len(v.Errors))
	for i, e := range v.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (v *ValidationResult) addError(path, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) addWarning(path, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate checks c and returns every problem found.
func Validate(c *Config) *ValidationResult {
	result := &ValidationResult{}

	if c.RedirectURL == "" {
		result.addError("redirectUrl", "redirect URL is required")
	} else {
		validateAbsoluteURL(result, "redirectUrl", c.RedirectURL)
	}
	if c.ClientID == "" {
		result.addError("clientId", "client id is required")
	}
	if c.ClientSecret == "" {
		result.addError("clientSecret", "client secret is required")
	}

	validateAbsoluteURL(result, "host", c.PlatformHost)
	if c.APIHost != "" {
		validateAbsoluteURL(result, "apiHost", c.APIHost)
	}
	if c.ProxyTarget != "" {
		validateAbsoluteURL(result, "proxyTarget", c.ProxyTarget)
	}

	if c.Port < 1 || c.Port > 65535 {
		result.addError("port", "port %d out of range 1-65535", c.Port)
	}
	if _, err := appcontext.ParseEncoding(string(c.ContextEncoding)); err != nil {
		result.addError("contextEncoding", "%v", err)
	}
	if c.UpstreamTimeout <= 0 {
		result.addError("upstreamTimeout", "upstream timeout must be positive")
	}
	if c.AuthRate < 0 {
		result.addError("authRate", "rate must not be negative")
	}
	if c.AuthBurst < 0 {
		result.addError("authBurst", "burst must not be negative")
	}

	if c.ContextSecret == "" && c.ClientSecret != "" {
		result.addWarning("contextSecret", "not set, using the client secret for context decryption")
	}
	if strings.HasPrefix(c.RedirectURL, "http://") {
		result.addWarning("redirectUrl", "redirect URL is not https")
	}

	return result
}

func validateAbsoluteURL(result *ValidationResult, path, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		result.addError(path, "invalid URL: %v", err)
		return
	}
	if !u.IsAbs() || u.Host == "" {
		result.addError(path, "URL must be absolute, got %q", raw)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		result.addError(path, "URL scheme must be http or https, got %q", u.Scheme)
	}
}
