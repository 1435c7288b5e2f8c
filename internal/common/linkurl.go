package common

import (
	"net/url"
	"strings"
)

// NormalizeLinkURL validates a user-entered link and returns its canonical
// absolute form. A bare host string ("example.org/page") is auto-prefixed
// with https. An empty input is allowed and returned unchanged, since the
// link field is optional.
func NormalizeLinkURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	candidate := trimmed
	if !strings.Contains(trimmed, "://") {
		candidate = "https://" + trimmed
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", ErrInvalidLink
	}
	if !u.IsAbs() || u.Host == "" {
		return "", ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidLink
	}
	// Reject hosts without a dot or port, e.g. "notaurl"
	if !strings.Contains(u.Host, ".") && !strings.Contains(u.Host, ":") && u.Host != "localhost" {
		return "", ErrInvalidLink
	}

	return u.String(), nil
}
