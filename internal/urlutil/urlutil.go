// Package urlutil provides URL and path-name helpers shared by storage
// engines when building playback URLs and on-disk names.
package urlutil

import (
	"strings"
)

// NormalizeBaseURL normalizes a public base URL:
//   - adds http:// when no scheme is present
//   - strips the trailing slash for clean path joining
//
// Examples:
//
//	"cdn.example.com"         -> "http://cdn.example.com"
//	"https://cdn.example.com/" -> "https://cdn.example.com"
func NormalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	baseURL = strings.TrimSpace(baseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimSuffix(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring a single slash between them.
func JoinPath(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

// IsRemoteURL reports whether u is an http(s) or protocol-relative URL.
func IsRemoteURL(u string) bool {
	return strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "//")
}

// Slugify reduces s to a lowercase, URL- and filename-safe slug: runs of
// characters outside [a-z0-9] collapse to single hyphens, with no leading or
// trailing hyphen. Returns "" when nothing survives.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
