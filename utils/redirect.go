package utils

import (
	"net/url"
	"strings"
)

// LocalRedirectPath returns raw when it is a path on this site, else fallback.
// Absolute URLs, scheme-relative URLs and backslash tricks are rejected so a
// next parameter cannot send users off-site.
func LocalRedirectPath(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return raw
}
