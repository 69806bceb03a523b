package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// EndpointValidator checks the base URLs the catalog client talks to.
type EndpointValidator struct {
	// AllowLocalhost permits loopback hosts, e.g. a self-hosted mirror.
	AllowLocalhost bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost: true,
		MaxLength:      2048,
	}
}

// ValidateAndNormalize returns input without surrounding space or trailing
// slashes. A missing scheme defaults to https.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return "", fmt.Errorf("base URL must not carry a query or fragment")
	}
	if strings.Contains(parsedURL.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	hostname := parsedURL.Hostname()
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return "", fmt.Errorf("localhost URLs are not permitted")
	}
	if hostname == "0.0.0.0" || hostname == "255.255.255.255" {
		return "", fmt.Errorf("unroutable host %s", hostname)
	}

	return strings.TrimRight(parsedURL.String(), "/"), nil
}

func isLocalhost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}
