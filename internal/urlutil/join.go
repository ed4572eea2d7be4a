// Package urlutil builds URLs from configured hosts, which may or may not
// carry a trailing slash.
package urlutil

import (
	"net/url"
	"strings"
)

// JoinPath appends p to base with exactly one slash between them. base is
// not parsed, so an empty base yields a root-relative path.
func JoinPath(base, p string) string {
	if p == "" {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// Host returns the host[:port] of raw, or raw itself when it does not parse
// as an absolute URL.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
