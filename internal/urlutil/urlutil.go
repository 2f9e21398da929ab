// Package urlutil validates and normalizes user-supplied website addresses.
package urlutil

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// Rejection reasons returned by Normalize. Callers match with errors.Is.
var (
	ErrEmptyInput        = errors.New("URL is required")
	ErrUnsupportedScheme = errors.New("only http:// and https:// URLs are supported")
	ErrMalformedURL      = errors.New("invalid URL format")
	ErrMissingHostname   = errors.New("invalid domain name")
	ErrInvalidDomain     = errors.New("invalid domain: use a domain with a TLD (e.g. example.com)")
)

var (
	schemeRe = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
	httpsRe  = regexp.MustCompile(`(?i)^https?://`)
	ipv4Re   = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
)

// Normalize turns raw input into an absolute, protocol-qualified URL.
//
// Surrounding whitespace is trimmed, https:// is prepended when no scheme is
// given, and the hostname must be localhost, an IPv4 literal, or contain a
// dot that is not at the end (a heuristic TLD check). The returned string is
// the canonical form of the parsed URL; bare hosts gain a trailing slash so
// "example.com" normalizes to "https://example.com/".
//
// Pure and deterministic; safe to call repeatedly.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyInput
	}

	if schemeRe.MatchString(trimmed) {
		if !httpsRe.MatchString(trimmed) {
			return "", ErrUnsupportedScheme
		}
	} else {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrMalformedURL
	}

	host := parsed.Hostname()
	if host == "" {
		return "", ErrMissingHostname
	}

	if !validHost(host) {
		return "", ErrInvalidDomain
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed.String(), nil
}

func validHost(host string) bool {
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	if ipv4Re.MatchString(host) {
		return true
	}
	return strings.Contains(host, ".") && !strings.HasSuffix(host, ".")
}
